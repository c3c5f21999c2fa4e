package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glimpse-social/glimpse-backend/internal/types"
	"github.com/glimpse-social/glimpse-backend/internal/vectorstore"
)

// ---- external clients ----

// fakeAIClient is safe for concurrent use; the scorer fans batches out in
// parallel.
type fakeAIClient struct {
	mu            sync.Mutex
	embedCalls    int
	embedFn       func(inputs []string) ([][]float32, error)
	textCalls     int
	textFn        func(system, user string) (string, error)
	jsonCalls     int
	jsonFn        func(system, user string) (map[string]any, error)
	lastUserInput string
}

func (f *fakeAIClient) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	f.embedCalls++
	fn := f.embedFn
	f.mu.Unlock()
	if fn != nil {
		return fn(inputs)
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeAIClient) GenerateText(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.textCalls++
	f.lastUserInput = user
	fn := f.textFn
	f.mu.Unlock()
	if fn != nil {
		return fn(system, user)
	}
	return "generated text", nil
}

func (f *fakeAIClient) GenerateJSON(_ context.Context, system, user string, _ string, _ map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.jsonCalls++
	f.lastUserInput = user
	fn := f.jsonFn
	f.mu.Unlock()
	if fn != nil {
		return fn(system, user)
	}
	return map[string]any{"scores": []any{}}, nil
}

type fakeVectorStore struct {
	upserts int
	deletes int
	queryFn func(query []float32, topK int, excludeIDs []uuid.UUID) ([]vectorstore.Match, error)
}

func (f *fakeVectorStore) UpsertMomentVector(_ context.Context, _ uuid.UUID, _ []float32) error {
	f.upserts++
	return nil
}

func (f *fakeVectorStore) QuerySimilar(_ context.Context, query []float32, topK int, excludeIDs []uuid.UUID) ([]vectorstore.Match, error) {
	if f.queryFn != nil {
		return f.queryFn(query, topK, excludeIDs)
	}
	return nil, nil
}

func (f *fakeVectorStore) DeleteMomentVector(_ context.Context, _ uuid.UUID) error {
	f.deletes++
	return nil
}

// ---- repos ----

type fakeMomentEmbeddingRepo struct {
	rows    map[uuid.UUID]*types.MomentEmbedding
	upserts int
	fail    bool
}

func newFakeMomentEmbeddingRepo() *fakeMomentEmbeddingRepo {
	return &fakeMomentEmbeddingRepo{rows: map[uuid.UUID]*types.MomentEmbedding{}}
}

func (f *fakeMomentEmbeddingRepo) GetByMomentID(_ context.Context, _ *gorm.DB, momentID uuid.UUID) (*types.MomentEmbedding, error) {
	if f.fail {
		return nil, errors.New("db down")
	}
	return f.rows[momentID], nil
}

func (f *fakeMomentEmbeddingRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.MomentEmbedding) error {
	if f.fail {
		return errors.New("db down")
	}
	f.upserts++
	f.rows[row.MomentID] = row
	return nil
}

func (f *fakeMomentEmbeddingRepo) DeleteByMomentID(_ context.Context, _ *gorm.DB, momentID uuid.UUID) error {
	delete(f.rows, momentID)
	return nil
}

type fakeUserEmbeddingRepo struct {
	rows    map[uuid.UUID]*types.UserEmbedding
	upserts int
}

func newFakeUserEmbeddingRepo() *fakeUserEmbeddingRepo {
	return &fakeUserEmbeddingRepo{rows: map[uuid.UUID]*types.UserEmbedding{}}
}

func (f *fakeUserEmbeddingRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.UserEmbedding, error) {
	return f.rows[userID], nil
}

func (f *fakeUserEmbeddingRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.UserEmbedding) error {
	f.upserts++
	f.rows[row.UserID] = row
	return nil
}

type fakeInterestProfileRepo struct {
	rows    map[uuid.UUID]*types.InterestProfile
	upserts int
}

func newFakeInterestProfileRepo() *fakeInterestProfileRepo {
	return &fakeInterestProfileRepo{rows: map[uuid.UUID]*types.InterestProfile{}}
}

func (f *fakeInterestProfileRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.InterestProfile, error) {
	return f.rows[userID], nil
}

func (f *fakeInterestProfileRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.InterestProfile) error {
	f.upserts++
	f.rows[row.UserID] = row
	return nil
}

type fakeMomentSummaryRepo struct {
	rows    map[uuid.UUID]*types.MomentSummary
	upserts int
}

func newFakeMomentSummaryRepo() *fakeMomentSummaryRepo {
	return &fakeMomentSummaryRepo{rows: map[uuid.UUID]*types.MomentSummary{}}
}

func (f *fakeMomentSummaryRepo) GetByMomentID(_ context.Context, _ *gorm.DB, momentID uuid.UUID) (*types.MomentSummary, error) {
	return f.rows[momentID], nil
}

func (f *fakeMomentSummaryRepo) GetByMomentIDs(_ context.Context, _ *gorm.DB, momentIDs []uuid.UUID) ([]*types.MomentSummary, error) {
	var out []*types.MomentSummary
	for _, id := range momentIDs {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeMomentSummaryRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.MomentSummary) error {
	f.upserts++
	f.rows[row.MomentID] = row
	return nil
}

type fakeUserRepo struct {
	rows map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.User, error) {
	return f.rows[id], nil
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *types.User) (*types.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.rows[user.ID] = user
	return user, nil
}

type fakeMomentRepo struct {
	moments  map[uuid.UUID]*types.Moment
	captions map[uuid.UUID][]string
}

func newFakeMomentRepo() *fakeMomentRepo {
	return &fakeMomentRepo{
		moments:  map[uuid.UUID]*types.Moment{},
		captions: map[uuid.UUID][]string{},
	}
}

func (f *fakeMomentRepo) Create(_ context.Context, _ *gorm.DB, moment *types.Moment) (*types.Moment, error) {
	if moment.ID == uuid.Nil {
		moment.ID = uuid.New()
	}
	f.moments[moment.ID] = moment
	return moment, nil
}

func (f *fakeMomentRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Moment, error) {
	return f.moments[id], nil
}

func (f *fakeMomentRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Moment, error) {
	var out []*types.Moment
	for _, id := range ids {
		if m, ok := f.moments[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMomentRepo) ListRecent(_ context.Context, _ *gorm.DB, _ int) ([]*types.Moment, error) {
	var out []*types.Moment
	for _, m := range f.moments {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMomentRepo) ListRecentExcludingUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, _ int) ([]*types.Moment, error) {
	var out []*types.Moment
	for _, m := range f.moments {
		if m.UserID != userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMomentRepo) GetRecentCaptions(_ context.Context, _ *gorm.DB, userID uuid.UUID, n int) ([]string, error) {
	captions := f.captions[userID]
	if len(captions) > n {
		captions = captions[:n]
	}
	return captions, nil
}

func (f *fakeMomentRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(f.moments, id)
	return nil
}

// ---- service-level fakes for ranking tests ----

type fakeEmbeddingService struct {
	hasUser bool
}

func (f *fakeEmbeddingService) UpsertMomentEmbedding(_ context.Context, _ uuid.UUID, _ string) bool {
	return false
}
func (f *fakeEmbeddingService) UpsertUserEmbedding(_ context.Context, _ uuid.UUID, _ string, _ []string) bool {
	return false
}
func (f *fakeEmbeddingService) HasUserEmbedding(_ context.Context, _ uuid.UUID) bool {
	return f.hasUser
}
func (f *fakeEmbeddingService) GetUserEmbedding(_ context.Context, _ uuid.UUID) []float32 {
	if !f.hasUser {
		return nil
	}
	return []float32{1, 0, 0}
}
func (f *fakeEmbeddingService) DeleteMomentEmbedding(_ context.Context, _ uuid.UUID) {}

type fakeSimilarityService struct {
	results []SimilarMoment
}

func (f *fakeSimilarityService) FindSimilarMoments(_ context.Context, _ uuid.UUID, _ int, _ []uuid.UUID) []SimilarMoment {
	return f.results
}

type fakeInterestProfileService struct {
	interests string
	ok        bool
}

func (f *fakeInterestProfileService) GenerateAndStoreInterestProfile(_ context.Context, _ uuid.UUID) {
}
func (f *fakeInterestProfileService) GetStoredInterests(_ context.Context, _ uuid.UUID) (string, bool) {
	return f.interests, f.ok
}

type fakeRelevanceScorer struct {
	scores map[uuid.UUID]float64
	calls  int
}

func (f *fakeRelevanceScorer) ScoreMomentsForUser(_ context.Context, _ uuid.UUID, _ string, candidates []*types.Moment) []MomentScore {
	f.calls++
	out := make([]MomentScore, 0, len(candidates))
	for _, m := range candidates {
		score, ok := f.scores[m.ID]
		if !ok {
			score = neutralScore
		}
		out = append(out, MomentScore{MomentID: m.ID, Score: score})
	}
	return out
}

type fakeSummaryService struct {
	summaries map[uuid.UUID]string
}

func (f *fakeSummaryService) SummarizeMoment(_ context.Context, _ uuid.UUID) {}
func (f *fakeSummaryService) GetSummaries(_ context.Context, momentIDs []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	for _, id := range momentIDs {
		if s, ok := f.summaries[id]; ok {
			out[id] = s
		}
	}
	return out
}
