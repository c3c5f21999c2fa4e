package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/types"
	"github.com/glimpse-social/glimpse-backend/internal/vectorstore"
)

// EmbeddingService owns the per-moment and per-user vector cache. Hash
// short-circuits keep unchanged content from ever reaching the embedding
// service twice; failed calls leave stored rows untouched.
type EmbeddingService interface {
	UpsertMomentEmbedding(ctx context.Context, momentID uuid.UUID, caption string) bool
	UpsertUserEmbedding(ctx context.Context, userID uuid.UUID, bio string, recentCaptions []string) bool
	HasUserEmbedding(ctx context.Context, userID uuid.UUID) bool
	GetUserEmbedding(ctx context.Context, userID uuid.UUID) []float32
	DeleteMomentEmbedding(ctx context.Context, momentID uuid.UUID)
}

type embeddingService struct {
	db      *gorm.DB
	log     *logger.Logger
	moments repos.MomentEmbeddingRepo
	users   repos.UserEmbeddingRepo
	vectors vectorstore.VectorStore
	ai      OpenAIClient
}

func NewEmbeddingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	moments repos.MomentEmbeddingRepo,
	users repos.UserEmbeddingRepo,
	vectors vectorstore.VectorStore,
	ai OpenAIClient,
) EmbeddingService {
	return &embeddingService{
		db:      db,
		log:     baseLog.With("service", "EmbeddingService"),
		moments: moments,
		users:   users,
		vectors: vectors,
		ai:      ai,
	}
}

func (s *embeddingService) UpsertMomentEmbedding(ctx context.Context, momentID uuid.UUID, caption string) bool {
	if momentID == uuid.Nil || strings.TrimSpace(caption) == "" {
		return false
	}

	hash := contentHash(caption)
	existing, err := s.moments.GetByMomentID(ctx, nil, momentID)
	if err != nil {
		s.log.Error("Moment embedding lookup failed", "error", err, "moment_id", momentID)
		return false
	}
	if existing != nil && existing.ContentHash == hash {
		return true
	}

	vec := s.embedOne(ctx, caption)
	if vec == nil {
		return false
	}

	encoded, err := encodeVector(vec)
	if err != nil {
		s.log.Error("Moment embedding encode failed", "error", err, "moment_id", momentID)
		return false
	}
	row := &types.MomentEmbedding{
		MomentID:    momentID,
		Embedding:   encoded,
		ContentHash: hash,
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.moments.Upsert(ctx, nil, row); err != nil {
		s.log.Error("Moment embedding upsert failed", "error", err, "moment_id", momentID)
		return false
	}

	// Mirror into the nearest-neighbor index. A failed mirror is logged and
	// retried the next time the caption changes; similarity just under-covers
	// until then.
	if err := s.vectors.UpsertMomentVector(ctx, momentID, vec); err != nil {
		s.log.Warn("Vector index upsert failed", "error", err, "moment_id", momentID)
	}
	return true
}

func (s *embeddingService) UpsertUserEmbedding(ctx context.Context, userID uuid.UUID, bio string, recentCaptions []string) bool {
	if userID == uuid.Nil {
		return false
	}
	text := profileText(bio, recentCaptions)
	if text == "" {
		return false
	}

	hash := contentHash(text)
	existing, err := s.users.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("User embedding lookup failed", "error", err, "user_id", userID)
		return false
	}
	if existing != nil && existing.ProfileHash == hash {
		return true
	}

	vec := s.embedOne(ctx, text)
	if vec == nil {
		return false
	}

	encoded, err := encodeVector(vec)
	if err != nil {
		s.log.Error("User embedding encode failed", "error", err, "user_id", userID)
		return false
	}
	row := &types.UserEmbedding{
		UserID:      userID,
		Embedding:   encoded,
		ProfileHash: hash,
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.users.Upsert(ctx, nil, row); err != nil {
		s.log.Error("User embedding upsert failed", "error", err, "user_id", userID)
		return false
	}
	return true
}

func (s *embeddingService) HasUserEmbedding(ctx context.Context, userID uuid.UUID) bool {
	row, err := s.users.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("User embedding lookup failed", "error", err, "user_id", userID)
		return false
	}
	return row != nil && len(decodeVector(row.Embedding)) > 0
}

func (s *embeddingService) GetUserEmbedding(ctx context.Context, userID uuid.UUID) []float32 {
	row, err := s.users.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("User embedding lookup failed", "error", err, "user_id", userID)
		return nil
	}
	if row == nil {
		return nil
	}
	return decodeVector(row.Embedding)
}

func (s *embeddingService) DeleteMomentEmbedding(ctx context.Context, momentID uuid.UUID) {
	if momentID == uuid.Nil {
		return
	}
	if err := s.moments.DeleteByMomentID(ctx, nil, momentID); err != nil {
		s.log.Error("Moment embedding delete failed", "error", err, "moment_id", momentID)
	}
	if err := s.vectors.DeleteMomentVector(ctx, momentID); err != nil {
		s.log.Warn("Vector index delete failed", "error", err, "moment_id", momentID)
	}
}

// embedOne returns nil on any failure; stale data beats corrupt data.
func (s *embeddingService) embedOne(ctx context.Context, text string) []float32 {
	vecs, err := s.ai.Embed(ctx, []string{text})
	if err != nil {
		s.log.Warn("Embedding call failed", "error", err)
		return nil
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		s.log.Warn("Embedding call returned empty vector")
		return nil
	}
	return vecs[0]
}
