package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/services"
)

type AdminHandler struct {
	log        *logger.Logger
	scoreCache *services.ScoreCache
}

func NewAdminHandler(log *logger.Logger, scoreCache *services.ScoreCache) *AdminHandler {
	return &AdminHandler{
		log:        log.With("handler", "AdminHandler"),
		scoreCache: scoreCache,
	}
}

// POST /api/admin/score-cache/clear?user_id=
//
// With user_id clears one user's cached scores, without it clears everything.
func (h *AdminHandler) ClearScoreCache(c *gin.Context) {
	raw := c.Query("user_id")
	if raw == "" {
		h.scoreCache.ClearAll()
		h.log.Info("Score cache cleared for all users")
		respondOK(c, gin.H{"cleared": "all"})
		return
	}

	userID, err := uuid.Parse(raw)
	if err != nil || userID == uuid.Nil {
		respondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	h.scoreCache.ClearUser(userID)
	h.log.Info("Score cache cleared", "user_id", userID)
	respondOK(c, gin.H{"cleared": userID})
}
