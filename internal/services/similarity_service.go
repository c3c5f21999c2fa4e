package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/vectorstore"
)

// SimilarMoment is one nearest-neighbor hit against a user's embedding.
// Similarity is raw cosine in [-1, 1]; the ranking layer maps it to [0, 1].
type SimilarMoment struct {
	MomentID   uuid.UUID
	Similarity float64
}

// SimilarityService retrieves moments near a user's embedding. An empty
// result means "signal unavailable", not "no matches"; the caller decides
// whether to fall back.
type SimilarityService interface {
	FindSimilarMoments(ctx context.Context, userID uuid.UUID, limit int, excludeIDs []uuid.UUID) []SimilarMoment
}

type similarityService struct {
	log        *logger.Logger
	embeddings EmbeddingService
	vectors    vectorstore.VectorStore
}

func NewSimilarityService(baseLog *logger.Logger, embeddings EmbeddingService, vectors vectorstore.VectorStore) SimilarityService {
	return &similarityService{
		log:        baseLog.With("service", "SimilarityService"),
		embeddings: embeddings,
		vectors:    vectors,
	}
}

func (s *similarityService) FindSimilarMoments(ctx context.Context, userID uuid.UUID, limit int, excludeIDs []uuid.UUID) []SimilarMoment {
	if userID == uuid.Nil || limit <= 0 {
		return nil
	}

	query := s.embeddings.GetUserEmbedding(ctx, userID)
	if len(query) == 0 {
		return nil
	}

	matches, err := s.vectors.QuerySimilar(ctx, query, limit, excludeIDs)
	if err != nil {
		s.log.Warn("Similarity query failed", "error", err, "user_id", userID)
		return nil
	}

	out := make([]SimilarMoment, 0, len(matches))
	for _, m := range matches {
		out = append(out, SimilarMoment{MomentID: m.MomentID, Similarity: m.Score})
	}
	return out
}
