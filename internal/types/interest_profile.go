package types

import (
	"time"

	"github.com/google/uuid"
)

// InterestProfile is the textual analogue of UserEmbedding, used when vector
// search is unavailable or under-covers the candidate pool.
type InterestProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	InterestText string    `gorm:"not null;column:interest_text" json:"interest_text"`
	ProfileHash  string    `gorm:"not null;column:profile_hash" json:"profile_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (InterestProfile) TableName() string { return "interest_profile" }
