package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	MomentTypeImage = "image"
	MomentTypeVideo = "video"
)

type Moment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Caption   string    `gorm:"column:caption" json:"caption"`
	MediaType string    `gorm:"not null;column:media_type" json:"media_type"`
	MediaURL  string    `gorm:"column:media_url" json:"media_url"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Moment) TableName() string { return "moment" }
