package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/utils"
)

const maxErrorBodyBytes = 1024

// Match is one nearest-neighbor hit. Score is cosine similarity in [-1, 1],
// higher is closer.
type Match struct {
	MomentID uuid.UUID
	Score    float64
}

// VectorStore is the nearest-neighbor index over moment embeddings.
type VectorStore interface {
	UpsertMomentVector(ctx context.Context, momentID uuid.UUID, vector []float32) error
	// QuerySimilar returns up to topK moments ordered by descending cosine
	// similarity, skipping excludeIDs.
	QuerySimilar(ctx context.Context, query []float32, topK int, excludeIDs []uuid.UUID) ([]Match, error)
	DeleteMomentVector(ctx context.Context, momentID uuid.UUID) error
}

type qdrantStore struct {
	log        *logger.Logger
	baseURL    string
	collection string
	vectorDim  int
	http       *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type qdrantSearchResultItem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

func NewQdrantStore(log *logger.Logger) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	url := strings.TrimRight(strings.TrimSpace(utils.GetEnv("QDRANT_URL", "http://localhost:6333", log)), "/")
	collection := strings.TrimSpace(utils.GetEnv("QDRANT_COLLECTION", "moments", log))
	vectorDim := utils.GetEnvAsInt("QDRANT_VECTOR_DIM", 1536, log)

	s := &qdrantStore{
		log:        log.With("service", "QdrantStore"),
		baseURL:    url,
		collection: collection,
		vectorDim:  vectorDim,
		http:       &http.Client{Timeout: 10 * time.Second},
	}

	if err := s.ensureCollection(context.Background()); err != nil {
		return nil, err
	}

	s.log.Info("Qdrant vector store ready",
		"url", s.baseURL,
		"collection", s.collection,
		"vector_dim", s.vectorDim,
	)
	return s, nil
}

func (s *qdrantStore) ensureCollection(ctx context.Context) error {
	var exists struct {
		Exists bool `json:"exists"`
	}
	if err := s.doJSON(ctx, http.MethodGet, s.collectionPath("/exists"), nil, &exists); err != nil {
		return fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if exists.Exists {
		return nil
	}
	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.vectorDim,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut, s.collectionPath(""), req, nil); err != nil {
		return fmt.Errorf("qdrant collection create failed: %w", err)
	}
	return nil
}

func (s *qdrantStore) UpsertMomentVector(ctx context.Context, momentID uuid.UUID, vector []float32) error {
	if momentID == uuid.Nil {
		return fmt.Errorf("moment id required")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector for moment %q has no values", momentID)
	}
	if s.vectorDim > 0 && len(vector) != s.vectorDim {
		return fmt.Errorf("vector for moment %q dimension mismatch: expected=%d got=%d", momentID, s.vectorDim, len(vector))
	}
	req := map[string]any{
		"points": []map[string]any{
			{
				"id":     momentID.String(),
				"vector": vector,
			},
		},
	}
	return s.doJSON(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil)
}

func (s *qdrantStore) QuerySimilar(ctx context.Context, query []float32, topK int, excludeIDs []uuid.UUID) ([]Match, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("query vector required")
	}
	if s.vectorDim > 0 && len(query) != s.vectorDim {
		return nil, fmt.Errorf("query vector dimension mismatch: expected=%d got=%d", s.vectorDim, len(query))
	}
	if topK <= 0 {
		topK = 10
	}

	req := map[string]any{
		"vector":       query,
		"limit":        topK,
		"with_payload": false,
		"with_vector":  false,
	}
	if len(excludeIDs) > 0 {
		pointIDs := make([]string, 0, len(excludeIDs))
		for _, id := range excludeIDs {
			if id != uuid.Nil {
				pointIDs = append(pointIDs, id.String())
			}
		}
		if len(pointIDs) > 0 {
			req["filter"] = map[string]any{
				"must_not": []map[string]any{
					{"has_id": pointIDs},
				},
			}
		}
	}

	var rawResults []qdrantSearchResultItem
	if err := s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &rawResults); err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(rawResults))
	for _, item := range rawResults {
		id, err := uuid.Parse(item.ID)
		if err != nil || id == uuid.Nil {
			continue
		}
		out = append(out, Match{MomentID: id, Score: item.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (s *qdrantStore) DeleteMomentVector(ctx context.Context, momentID uuid.UUID) error {
	if momentID == uuid.Nil {
		return nil
	}
	req := map[string]any{"points": []string{momentID.String()}}
	return s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), req, nil)
}

func (s *qdrantStore) collectionPath(suffix string) string {
	return "/collections/" + s.collection + suffix
}

func (s *qdrantStore) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(raw)
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return fmt.Errorf("qdrant http %d: %s", resp.StatusCode, snippet)
	}
	if out == nil {
		return nil
	}
	var env qdrantEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("qdrant decode error: %w", err)
	}
	if len(env.Result) == 0 {
		return nil
	}
	return json.Unmarshal(env.Result, out)
}
