package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

const (
	recentCaptionsForProfile = 10

	interestProfileSystemPrompt = "You study a user's bio and recent photo captions, then describe what they are interested in."
	interestProfileUserPrompt   = "Summarize this user's interests in at most 60 words. Write a plain comma-separated list of topics and themes, no preamble.\n\n"
)

// InterestProfileService maintains the textual interest summary used when
// vector ranking is unavailable. Generation runs on the maintenance path;
// serving only ever reads stored text.
type InterestProfileService interface {
	GenerateAndStoreInterestProfile(ctx context.Context, userID uuid.UUID)
	GetStoredInterests(ctx context.Context, userID uuid.UUID) (string, bool)
}

type interestProfileService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.InterestProfileRepo
	users    repos.UserRepo
	moments  repos.MomentRepo
	ai       OpenAIClient
}

func NewInterestProfileService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profiles repos.InterestProfileRepo,
	users repos.UserRepo,
	moments repos.MomentRepo,
	ai OpenAIClient,
) InterestProfileService {
	return &interestProfileService{
		db:       db,
		log:      baseLog.With("service", "InterestProfileService"),
		profiles: profiles,
		users:    users,
		moments:  moments,
		ai:       ai,
	}
}

func (s *interestProfileService) GenerateAndStoreInterestProfile(ctx context.Context, userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}

	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		s.log.Error("Interest profile user lookup failed", "error", err, "user_id", userID)
		return
	}
	if user == nil {
		return
	}

	captions, err := s.moments.GetRecentCaptions(ctx, nil, userID, recentCaptionsForProfile)
	if err != nil {
		s.log.Error("Interest profile caption lookup failed", "error", err, "user_id", userID)
		return
	}

	text := profileText(user.Bio, captions)
	if text == "" {
		// No bio and no captions: nothing to profile, ranking falls back to
		// chronological for this user.
		return
	}

	hash := contentHash(text)
	existing, err := s.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("Interest profile lookup failed", "error", err, "user_id", userID)
		return
	}
	if existing != nil && existing.ProfileHash == hash {
		return
	}

	summary, err := s.ai.GenerateText(ctx, interestProfileSystemPrompt, interestProfileUserPrompt+text)
	if err != nil {
		s.log.Warn("Interest profile generation failed", "error", err, "user_id", userID)
		return
	}

	row := &types.InterestProfile{
		UserID:       userID,
		InterestText: summary,
		ProfileHash:  hash,
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.profiles.Upsert(ctx, nil, row); err != nil {
		s.log.Error("Interest profile upsert failed", "error", err, "user_id", userID)
		return
	}
	s.log.Debug("Interest profile refreshed", "user_id", userID)
}

func (s *interestProfileService) GetStoredInterests(ctx context.Context, userID uuid.UUID) (string, bool) {
	row, err := s.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("Interest profile lookup failed", "error", err, "user_id", userID)
		return "", false
	}
	if row == nil || row.InterestText == "" {
		return "", false
	}
	return row.InterestText, true
}
