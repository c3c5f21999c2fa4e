package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	candidatePool   = 200
)

type FeedHandler struct {
	log     *logger.Logger
	moments repos.MomentRepo
	ranking services.RankingService
}

func NewFeedHandler(log *logger.Logger, moments repos.MomentRepo, ranking services.RankingService) *FeedHandler {
	return &FeedHandler{
		log:     log.With("handler", "FeedHandler"),
		moments: moments,
		ranking: ranking,
	}
}

func parsePaging(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

// GET /api/feed?user_id=&offset=&limit=
//
// Ranking is fail-open: any internal degradation still answers 200 with the
// best ordering available, worst case chronological.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil || userID == uuid.Nil {
		respondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	offset, limit := parsePaging(c)

	ctx := c.Request.Context()
	pool, err := h.moments.ListRecentExcludingUser(ctx, nil, userID, candidatePool)
	if err != nil {
		h.log.Error("GetFeed failed (load pool)", "error", err, "user_id", userID)
		respondError(c, http.StatusInternalServerError, "load_moments_failed", err)
		return
	}

	ranked := h.ranking.GetRecommendedPosts(ctx, userID, pool)

	// One weighted order per request; pages slice it so every moment shows
	// exactly once across a scroll session.
	weighted := make([]services.WeightedMoment, 0, len(ranked))
	for _, r := range ranked {
		w := r.CombinedScore
		if w <= 0 {
			w = services.RecencyWeight(r.Moment.CreatedAt, nowUTC())
		}
		weighted = append(weighted, services.WeightedMoment{Moment: r.Moment, Weight: w})
	}
	ordered := services.WeightedShuffle(weighted)
	page := services.PageSlice(ordered, offset, limit)

	respondOK(c, gin.H{
		"moments": page,
		"offset":  offset,
		"limit":   limit,
		"total":   len(ordered),
	})
}

// GET /api/explore?offset=&limit=
//
// Discovery surface: recency-weighted shuffle over the global pool, no
// personalized ranking.
func (h *FeedHandler) GetExplore(c *gin.Context) {
	offset, limit := parsePaging(c)

	ctx := c.Request.Context()
	pool, err := h.moments.ListRecent(ctx, nil, candidatePool)
	if err != nil {
		h.log.Error("GetExplore failed (load pool)", "error", err)
		respondError(c, http.StatusInternalServerError, "load_moments_failed", err)
		return
	}

	now := nowUTC()
	weighted := make([]services.WeightedMoment, 0, len(pool))
	for _, m := range pool {
		weighted = append(weighted, services.WeightedMoment{
			Moment: m,
			Weight: services.RecencyWeight(m.CreatedAt, now),
		})
	}
	ordered := services.WeightedShuffle(weighted)
	page := services.PageSlice(ordered, offset, limit)

	respondOK(c, gin.H{
		"moments": page,
		"offset":  offset,
		"limit":   limit,
		"total":   len(ordered),
	})
}
