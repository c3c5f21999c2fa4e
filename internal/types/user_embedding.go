package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserEmbedding is the vector form of a user's taste, derived from bio plus
// recent captions. ProfileHash keys the recompute-skip.
type UserEmbedding struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Embedding   datatypes.JSON `gorm:"type:jsonb;column:embedding" json:"embedding"`
	ProfileHash string         `gorm:"not null;column:profile_hash" json:"profile_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserEmbedding) TableName() string { return "user_embedding" }
