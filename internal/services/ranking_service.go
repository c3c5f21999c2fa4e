package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

const (
	// fusionDecayHours is the recency half-life inside combined ranking.
	fusionDecayHours = 48.0
	// Fixed fusion policy: relevance dominates, recency keeps feeds fresh.
	relevanceWeight = 0.6
	recencyWeight   = 0.4

	// DefaultMinVectorCoverage is the share of the candidate pool that
	// similarity results must cover before the vector tier is trusted.
	// A policy knob, not a derived constant.
	DefaultMinVectorCoverage = 0.3
)

// RankedMoment is the per-request scoring of one candidate. Never persisted.
type RankedMoment struct {
	Moment         *types.Moment
	RelevanceScore float64
	RecencyScore   float64
	CombinedScore  float64
}

type rankTier int

const (
	tierVectorRanked rankTier = iota
	tierScoredRanked
	tierChronological
)

func (t rankTier) String() string {
	switch t {
	case tierVectorRanked:
		return "vector_ranked"
	case tierScoredRanked:
		return "scored_ranked"
	default:
		return "chronological"
	}
}

// RankingService turns a chronological candidate pool into a personalized
// ranking. Signals degrade strictly: vector similarity, then cached LLM
// scoring, then the input order unchanged. It never returns an error to its
// caller; ranking quality is a UX concern, not a safety concern.
type RankingService interface {
	GetRecommendedPosts(ctx context.Context, userID uuid.UUID, candidates []*types.Moment) []RankedMoment
}

type rankingService struct {
	log         *logger.Logger
	embeddings  EmbeddingService
	similarity  SimilarityService
	profiles    InterestProfileService
	scorer      RelevanceScorer
	minCoverage float64
	now         func() time.Time
}

func NewRankingService(
	baseLog *logger.Logger,
	embeddings EmbeddingService,
	similarity SimilarityService,
	profiles InterestProfileService,
	scorer RelevanceScorer,
	minCoverage float64,
) RankingService {
	if minCoverage <= 0 || minCoverage > 1 {
		minCoverage = DefaultMinVectorCoverage
	}
	return &rankingService{
		log:         baseLog.With("service", "RankingService"),
		embeddings:  embeddings,
		similarity:  similarity,
		profiles:    profiles,
		scorer:      scorer,
		minCoverage: minCoverage,
		now:         time.Now,
	}
}

func (s *rankingService) GetRecommendedPosts(ctx context.Context, userID uuid.UUID, candidates []*types.Moment) []RankedMoment {
	if len(candidates) <= 1 {
		out := make([]RankedMoment, 0, len(candidates))
		for _, m := range candidates {
			out = append(out, RankedMoment{Moment: m})
		}
		return out
	}

	// The tier decision happens once per request. A failed tier falls through
	// to the next cheaper one and is never retried mid-request.
	tier, relevance := s.resolveRelevance(ctx, userID, candidates)
	s.log.Debug("Ranking tier selected", "user_id", userID, "tier", tier.String(), "pool", len(candidates))

	if tier == tierChronological {
		out := make([]RankedMoment, 0, len(candidates))
		for _, m := range candidates {
			out = append(out, RankedMoment{Moment: m})
		}
		return out
	}

	now := s.now()
	out := make([]RankedMoment, 0, len(candidates))
	for _, m := range candidates {
		rel := relevance[m.ID]
		rec, combined := fuseScore(rel, m.CreatedAt, now)
		out = append(out, RankedMoment{
			Moment:         m,
			RelevanceScore: rel,
			RecencyScore:   rec,
			CombinedScore:  combined,
		})
	}
	// Stable: ties keep the pool's chronological order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CombinedScore > out[j].CombinedScore
	})
	return out
}

// resolveRelevance picks the best available signal and returns a relevance
// score in [0, 1] per candidate.
func (s *rankingService) resolveRelevance(ctx context.Context, userID uuid.UUID, candidates []*types.Moment) (rankTier, map[uuid.UUID]float64) {
	if s.embeddings.HasUserEmbedding(ctx, userID) {
		if relevance, ok := s.vectorRelevance(ctx, userID, candidates); ok {
			return tierVectorRanked, relevance
		}
	}

	if interests, ok := s.profiles.GetStoredInterests(ctx, userID); ok {
		scores := s.scorer.ScoreMomentsForUser(ctx, userID, interests, candidates)
		relevance := make(map[uuid.UUID]float64, len(scores))
		for _, sc := range scores {
			relevance[sc.MomentID] = sc.Score
		}
		return tierScoredRanked, relevance
	}

	return tierChronological, nil
}

func (s *rankingService) vectorRelevance(ctx context.Context, userID uuid.UUID, candidates []*types.Moment) (map[uuid.UUID]float64, bool) {
	inPool := make(map[uuid.UUID]bool, len(candidates))
	for _, m := range candidates {
		inPool[m.ID] = true
	}

	// Ask for more neighbors than the pool holds: the index spans all
	// moments, not just this pool, and misses dilute coverage.
	sims := s.similarity.FindSimilarMoments(ctx, userID, len(candidates)*2, nil)
	if len(sims) == 0 {
		return nil, false
	}

	relevance := make(map[uuid.UUID]float64, len(candidates))
	covered := 0
	for _, sim := range sims {
		if !inPool[sim.MomentID] {
			continue
		}
		// Cosine [-1, 1] to [0, 1].
		relevance[sim.MomentID] = (sim.Similarity + 1) / 2
		covered++
	}

	coverage := float64(covered) / float64(len(candidates))
	if coverage < s.minCoverage {
		// Accepting here would rank a small matched subset highly while
		// leaving the bulk of the pool unordered.
		s.log.Debug("Vector coverage below threshold, falling back",
			"user_id", userID,
			"coverage", coverage,
			"threshold", s.minCoverage,
		)
		return nil, false
	}

	// Candidates the index did not return get the neutral midpoint.
	for _, m := range candidates {
		if _, ok := relevance[m.ID]; !ok {
			relevance[m.ID] = neutralScore
		}
	}
	return relevance, true
}

// fuseScore combines one relevance score with content age into the canonical
// ranking score. Monotonic in both inputs.
func fuseScore(relevance float64, createdAt time.Time, now time.Time) (recency, combined float64) {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	recency = math.Exp(-ageHours / fusionDecayHours)
	combined = relevance*relevanceWeight + recency*recencyWeight
	return recency, combined
}
