package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MomentEmbedding holds one vector per moment, keyed by a hash of the caption
// so unchanged content never hits the embedding service again.
type MomentEmbedding struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MomentID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"moment_id"`
	Moment      *Moment        `gorm:"constraint:OnDelete:CASCADE;foreignKey:MomentID;references:ID" json:"moment,omitempty"`
	Embedding   datatypes.JSON `gorm:"type:jsonb;column:embedding" json:"embedding"`
	ContentHash string         `gorm:"not null;column:content_hash" json:"content_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MomentEmbedding) TableName() string { return "moment_embedding" }
