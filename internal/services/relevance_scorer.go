package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

const (
	// scoreBatchSize bounds prompt length and amortizes call overhead.
	scoreBatchSize = 10
	// scoreBatchParallelism bounds concurrent scoring calls per request.
	scoreBatchParallelism = 3
	// neutralScore neither promotes nor penalizes un-scoreable content, so
	// under scorer failure the ranking degrades toward pure recency.
	neutralScore = 0.5

	scorerSystemPrompt = "You rate how well social media posts match a user's interests. Respond only with the requested JSON."
)

// MomentScore is one scored candidate. Score is always in [0, 1].
type MomentScore struct {
	MomentID uuid.UUID
	Score    float64
}

// RelevanceScorer asks the language-model service to score candidate moments
// against a user's textual interest profile. Results are cached per
// (user, moment) with a TTL; failures degrade to the neutral score and are
// cached too so a misbehaving batch does not retry inside the TTL window.
type RelevanceScorer interface {
	ScoreMomentsForUser(ctx context.Context, userID uuid.UUID, interestText string, candidates []*types.Moment) []MomentScore
}

type relevanceScorer struct {
	log       *logger.Logger
	cache     *ScoreCache
	summaries SummaryService
	ai        OpenAIClient
}

func NewRelevanceScorer(baseLog *logger.Logger, cache *ScoreCache, summaries SummaryService, ai OpenAIClient) RelevanceScorer {
	return &relevanceScorer{
		log:       baseLog.With("service", "RelevanceScorer"),
		cache:     cache,
		summaries: summaries,
		ai:        ai,
	}
}

func (s *relevanceScorer) ScoreMomentsForUser(ctx context.Context, userID uuid.UUID, interestText string, candidates []*types.Moment) []MomentScore {
	if len(candidates) == 0 {
		return []MomentScore{}
	}

	scores := make(map[uuid.UUID]float64, len(candidates))
	var unscored []*types.Moment
	for _, m := range candidates {
		if m == nil || m.ID == uuid.Nil {
			continue
		}
		if cached, ok := s.cache.Get(userID, m.ID); ok {
			scores[m.ID] = cached
			continue
		}
		unscored = append(unscored, m)
	}

	if len(unscored) > 0 {
		ids := make([]uuid.UUID, 0, len(unscored))
		for _, m := range unscored {
			ids = append(ids, m.ID)
		}
		summaries := s.summaries.GetSummaries(ctx, ids)

		batches := make([][]*types.Moment, 0, (len(unscored)+scoreBatchSize-1)/scoreBatchSize)
		for start := 0; start < len(unscored); start += scoreBatchSize {
			end := start + scoreBatchSize
			if end > len(unscored) {
				end = len(unscored)
			}
			batches = append(batches, unscored[start:end])
		}

		// Batches are independent transactions: one failing or timing out
		// must not block or fail its siblings.
		results := make([]map[uuid.UUID]float64, len(batches))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(scoreBatchParallelism)
		for i, batch := range batches {
			i, batch := i, batch
			g.Go(func() error {
				results[i] = s.scoreBatch(gctx, interestText, batch, summaries)
				return nil
			})
		}
		_ = g.Wait()

		for _, batchScores := range results {
			for id, score := range batchScores {
				scores[id] = score
				s.cache.Put(userID, id, score)
			}
		}
	}

	out := make([]MomentScore, 0, len(candidates))
	for _, m := range candidates {
		if m == nil || m.ID == uuid.Nil {
			continue
		}
		score, ok := scores[m.ID]
		if !ok {
			score = neutralScore
		}
		out = append(out, MomentScore{MomentID: m.ID, Score: score})
	}
	return out
}

// scoreBatch always returns a score for every moment in the batch.
func (s *relevanceScorer) scoreBatch(ctx context.Context, interestText string, batch []*types.Moment, summaries map[uuid.UUID]string) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(batch))
	for _, m := range batch {
		out[m.ID] = neutralScore
	}

	prompt := buildScoringPrompt(interestText, batch, summaries)
	resp, err := s.ai.GenerateJSON(ctx, scorerSystemPrompt, prompt, "moment_scores", scoringSchema())
	if err != nil {
		s.log.Warn("Scoring batch failed, using neutral scores", "error", err, "batch_size", len(batch))
		return out
	}

	parsed := parseScores(resp)
	matched := 0
	for _, m := range batch {
		if score, ok := parsed[m.ID]; ok {
			out[m.ID] = clampScore(score)
			matched++
		}
	}
	if matched < len(batch) {
		s.log.Warn("Scoring response missing candidates, defaulting them",
			"requested", len(batch),
			"matched", matched,
		)
	}
	return out
}

func buildScoringPrompt(interestText string, batch []*types.Moment, summaries map[uuid.UUID]string) string {
	var b strings.Builder
	b.WriteString("User interests: ")
	b.WriteString(strings.TrimSpace(interestText))
	b.WriteString("\n\nRate each post from 0.0 (no match) to 1.0 (perfect match) for this user.\nPosts:\n")
	for _, m := range batch {
		text := summaries[m.ID]
		if text == "" {
			text = m.Caption
		}
		fmt.Fprintf(&b, "- id: %s\n  text: %s\n", m.ID, strings.TrimSpace(text))
	}
	return b.String()
}

func scoringSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":    map[string]any{"type": "string"},
						"score": map[string]any{"type": "number"},
					},
					"required":             []string{"id", "score"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"scores"},
		"additionalProperties": false,
	}
}

// parseScores tolerates whatever shape came back; anything that does not
// validate is simply absent from the result and defaults upstream.
func parseScores(resp map[string]any) map[uuid.UUID]float64 {
	out := map[uuid.UUID]float64{}
	rawScores, ok := resp["scores"].([]any)
	if !ok {
		return out
	}
	for _, raw := range rawScores {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		idStr, ok := item["id"].(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(strings.TrimSpace(idStr))
		if err != nil || id == uuid.Nil {
			continue
		}
		score, ok := item["score"].(float64)
		if !ok {
			continue
		}
		out[id] = score
	}
	return out
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
