package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/vectorstore"
)

func TestFindSimilarMomentsMapsMatches(t *testing.T) {
	hit := uuid.New()
	vectors := &fakeVectorStore{
		queryFn: func(query []float32, topK int, _ []uuid.UUID) ([]vectorstore.Match, error) {
			if len(query) != 3 {
				t.Fatalf("query vector length %d", len(query))
			}
			if topK != 40 {
				t.Fatalf("topK = %d, want 40", topK)
			}
			return []vectorstore.Match{{MomentID: hit, Score: 0.72}}, nil
		},
	}
	svc := NewSimilarityService(logger.NewNop(), &fakeEmbeddingService{hasUser: true}, vectors)

	got := svc.FindSimilarMoments(context.Background(), uuid.New(), 40, nil)
	if len(got) != 1 || got[0].MomentID != hit || got[0].Similarity != 0.72 {
		t.Fatalf("got %v", got)
	}
}

func TestFindSimilarMomentsUnavailableSignals(t *testing.T) {
	vectors := &fakeVectorStore{
		queryFn: func(_ []float32, _ int, _ []uuid.UUID) ([]vectorstore.Match, error) {
			return nil, errors.New("index offline")
		},
	}

	// Missing user embedding.
	svc := NewSimilarityService(logger.NewNop(), &fakeEmbeddingService{hasUser: false}, vectors)
	if got := svc.FindSimilarMoments(context.Background(), uuid.New(), 10, nil); got != nil {
		t.Fatalf("missing embedding returned %v", got)
	}

	// Index failure with a present embedding.
	svc = NewSimilarityService(logger.NewNop(), &fakeEmbeddingService{hasUser: true}, vectors)
	if got := svc.FindSimilarMoments(context.Background(), uuid.New(), 10, nil); got != nil {
		t.Fatalf("index failure returned %v", got)
	}

	// Degenerate arguments.
	if got := svc.FindSimilarMoments(context.Background(), uuid.Nil, 10, nil); got != nil {
		t.Fatal("nil user id must return nil")
	}
	if got := svc.FindSimilarMoments(context.Background(), uuid.New(), 0, nil); got != nil {
		t.Fatal("non-positive limit must return nil")
	}
}
