package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/services"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

type UserHandler struct {
	log        *logger.Logger
	users      repos.UserRepo
	moments    repos.MomentRepo
	embeddings services.EmbeddingService
	profiles   services.InterestProfileService
}

func NewUserHandler(
	log *logger.Logger,
	users repos.UserRepo,
	moments repos.MomentRepo,
	embeddings services.EmbeddingService,
	profiles services.InterestProfileService,
) *UserHandler {
	return &UserHandler{
		log:        log.With("handler", "UserHandler"),
		users:      users,
		moments:    moments,
		embeddings: embeddings,
		profiles:   profiles,
	}
}

type createUserRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Bio         string `json:"bio"`
}

// POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := &types.User{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Bio:         strings.TrimSpace(req.Bio),
	}
	created, err := h.users.Create(c.Request.Context(), nil, user)
	if err != nil || created == nil {
		h.log.Error("CreateUser failed", "error", err)
		respondError(c, http.StatusInternalServerError, "create_user_failed", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// POST /api/users/:id/refresh-profile
//
// Fire-and-forget regeneration of the interest profile and user embedding.
// Responds 202 immediately; failures are logged, never surfaced.
func (h *UserHandler) RefreshProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil || userID == uuid.Nil {
		respondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}

	go func(userID uuid.UUID) {
		ctx := context.Background()
		h.profiles.GenerateAndStoreInterestProfile(ctx, userID)

		user, err := h.users.GetByID(ctx, nil, userID)
		if err != nil || user == nil {
			return
		}
		captions, err := h.moments.GetRecentCaptions(ctx, nil, userID, 10)
		if err != nil {
			h.log.Error("RefreshProfile caption lookup failed", "error", err, "user_id", userID)
			return
		}
		h.embeddings.UpsertUserEmbedding(ctx, userID, user.Bio, captions)
	}(userID)

	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing", "user_id": userID})
}
