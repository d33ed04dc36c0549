package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// LearningJourney tracks one guided journey per (user, journey_type).
type LearningJourney struct {
	ID           uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_learning_journeys_user_type"`
	JourneyType  enums.JourneyType           `gorm:"column:journey_type;type:journey_type;not null;uniqueIndex:idx_learning_journeys_user_type"`
	CurrentPhase int                         `gorm:"column:current_phase;not null;default:0"`
	Status       enums.LearningJourneyStatus `gorm:"column:status;type:learning_journey_status;not null;default:'not_started'"`
	AdminNotes   *string                     `gorm:"column:admin_notes;type:text"`
	StartedAt    *time.Time                  `gorm:"column:started_at"`
	SubmittedAt  *time.Time                  `gorm:"column:submitted_at"`
	DecidedAt    *time.Time                  `gorm:"column:decided_at"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
