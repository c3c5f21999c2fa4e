package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

const (
	summarySystemPrompt = "You compress photo and video captions into short thematic digests."
	summaryUserPrompt   = "Write a one-sentence digest of the themes in this caption. No preamble.\n\nCaption: "
)

// SummaryService precomputes thematic digests that keep scoring prompts
// short. A summary is never regenerated while the caption hash is unchanged.
type SummaryService interface {
	SummarizeMoment(ctx context.Context, momentID uuid.UUID)
	GetSummaries(ctx context.Context, momentIDs []uuid.UUID) map[uuid.UUID]string
}

type summaryService struct {
	db        *gorm.DB
	log       *logger.Logger
	summaries repos.MomentSummaryRepo
	moments   repos.MomentRepo
	ai        OpenAIClient
}

func NewSummaryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	summaries repos.MomentSummaryRepo,
	moments repos.MomentRepo,
	ai OpenAIClient,
) SummaryService {
	return &summaryService{
		db:        db,
		log:       baseLog.With("service", "SummaryService"),
		summaries: summaries,
		moments:   moments,
		ai:        ai,
	}
}

func (s *summaryService) SummarizeMoment(ctx context.Context, momentID uuid.UUID) {
	if momentID == uuid.Nil {
		return
	}
	moment, err := s.moments.GetByID(ctx, nil, momentID)
	if err != nil {
		s.log.Error("Summary moment lookup failed", "error", err, "moment_id", momentID)
		return
	}
	if moment == nil || strings.TrimSpace(moment.Caption) == "" {
		return
	}

	hash := contentHash(moment.Caption)
	existing, err := s.summaries.GetByMomentID(ctx, nil, momentID)
	if err != nil {
		s.log.Error("Summary lookup failed", "error", err, "moment_id", momentID)
		return
	}
	if existing != nil && existing.CaptionHash == hash {
		return
	}

	digest, err := s.ai.GenerateText(ctx, summarySystemPrompt, summaryUserPrompt+moment.Caption)
	if err != nil {
		s.log.Warn("Summary generation failed", "error", err, "moment_id", momentID)
		return
	}

	row := &types.MomentSummary{
		MomentID:    momentID,
		SummaryText: digest,
		CaptionHash: hash,
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.summaries.Upsert(ctx, nil, row); err != nil {
		s.log.Error("Summary upsert failed", "error", err, "moment_id", momentID)
	}
}

func (s *summaryService) GetSummaries(ctx context.Context, momentIDs []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	if len(momentIDs) == 0 {
		return out
	}
	rows, err := s.summaries.GetByMomentIDs(ctx, nil, momentIDs)
	if err != nil {
		s.log.Error("Summary batch lookup failed", "error", err)
		return out
	}
	for _, row := range rows {
		if row != nil && row.SummaryText != "" {
			out[row.MomentID] = row.SummaryText
		}
	}
	return out
}
