package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// StartupIdea is an initiator's pitch record. Admins review it before it
// becomes visible to co-builders; once active it progresses through the
// three-episode lifecycle.
type StartupIdea struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Title            string             `gorm:"column:title;not null"`
	Pitch            string             `gorm:"column:pitch;type:text;not null"`
	Box              *string            `gorm:"column:box"`
	ReviewStatus     enums.ReviewStatus `gorm:"column:review_status;type:review_status;not null;default:'pending'"`
	Status           enums.IdeaStatus   `gorm:"column:status;type:idea_status;not null;default:'active'"`
	CurrentEpisode   enums.Episode      `gorm:"column:current_episode;type:idea_episode;not null;default:'development'"`
	RolesNeeded      []string           `gorm:"column:roles_needed;type:jsonb;serializer:json"`
	EquityPercentage decimal.Decimal    `gorm:"column:equity_percentage;type:numeric(5,2);not null;default:0"`
	AdminNotes       *string            `gorm:"column:admin_notes;type:text"`
	CompletedAt      *time.Time         `gorm:"column:completed_at"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
