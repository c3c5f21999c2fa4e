package types

import (
	"time"

	"github.com/google/uuid"
)

// MomentSummary is a precomputed thematic digest of a caption, used to keep
// scoring prompts short. Never recomputed while CaptionHash is unchanged.
type MomentSummary struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MomentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"moment_id"`
	Moment      *Moment   `gorm:"constraint:OnDelete:CASCADE;foreignKey:MomentID;references:ID" json:"moment,omitempty"`
	SummaryText string    `gorm:"not null;column:summary_text" json:"summary_text"`
	CaptionHash string    `gorm:"not null;column:caption_hash" json:"caption_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MomentSummary) TableName() string { return "moment_summary" }
