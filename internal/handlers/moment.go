package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/services"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

type MomentHandler struct {
	log        *logger.Logger
	moments    repos.MomentRepo
	embeddings services.EmbeddingService
	summaries  services.SummaryService
	scoreCache *services.ScoreCache
}

func NewMomentHandler(
	log *logger.Logger,
	moments repos.MomentRepo,
	embeddings services.EmbeddingService,
	summaries services.SummaryService,
	scoreCache *services.ScoreCache,
) *MomentHandler {
	return &MomentHandler{
		log:        log.With("handler", "MomentHandler"),
		moments:    moments,
		embeddings: embeddings,
		summaries:  summaries,
		scoreCache: scoreCache,
	}
}

type createMomentRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type" binding:"required"`
	MediaURL  string `json:"media_url"`
}

// POST /api/moments
func (h *MomentHandler) CreateMoment(c *gin.Context) {
	var req createMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil || userID == uuid.Nil {
		respondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	mediaType := strings.TrimSpace(req.MediaType)
	if mediaType != types.MomentTypeImage && mediaType != types.MomentTypeVideo {
		respondError(c, http.StatusBadRequest, "invalid_media_type", fmt.Errorf("media_type must be %q or %q", types.MomentTypeImage, types.MomentTypeVideo))
		return
	}

	moment := &types.Moment{
		UserID:    userID,
		Caption:   strings.TrimSpace(req.Caption),
		MediaType: mediaType,
		MediaURL:  strings.TrimSpace(req.MediaURL),
	}
	created, err := h.moments.Create(c.Request.Context(), nil, moment)
	if err != nil || created == nil {
		h.log.Error("CreateMoment failed", "error", err, "user_id", userID)
		respondError(c, http.StatusInternalServerError, "create_moment_failed", err)
		return
	}

	// Derived data is maintenance, decoupled from the serving path. Detached
	// context: an aborted request must not cancel useful cache writes.
	go func(momentID uuid.UUID, caption string) {
		ctx := context.Background()
		h.embeddings.UpsertMomentEmbedding(ctx, momentID, caption)
		h.summaries.SummarizeMoment(ctx, momentID)
	}(created.ID, created.Caption)

	c.JSON(http.StatusCreated, created)
}

// DELETE /api/moments/:id
func (h *MomentHandler) DeleteMoment(c *gin.Context) {
	momentID, err := uuid.Parse(c.Param("id"))
	if err != nil || momentID == uuid.Nil {
		respondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}

	ctx := c.Request.Context()
	if err := h.moments.Delete(ctx, nil, momentID); err != nil {
		h.log.Error("DeleteMoment failed", "error", err, "moment_id", momentID)
		respondError(c, http.StatusInternalServerError, "delete_moment_failed", err)
		return
	}

	// DB cascades clean the derived rows; the vector point and cached scores
	// live outside postgres and need explicit eviction.
	h.embeddings.DeleteMomentEmbedding(ctx, momentID)
	h.scoreCache.EvictMoment(momentID)

	respondOK(c, gin.H{"deleted": momentID})
}
