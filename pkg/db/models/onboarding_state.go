package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// OnboardingState tracks a user's position in the onboarding wizard. One row
// per user, created lazily on first visit. current_step only ever advances.
type OnboardingState struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	PrimaryRole         *enums.PrimaryRole  `gorm:"column:primary_role;type:primary_role"`
	CurrentStep         int                 `gorm:"column:current_step;not null;default:1"`
	OnboardingCompleted bool                `gorm:"column:onboarding_completed;not null;default:false"`
	JourneyStatus       enums.JourneyStatus `gorm:"column:journey_status;type:journey_status;not null;default:'in_progress'"`
	UserStatus          *enums.UserStatus   `gorm:"column:user_status;type:user_status"`
	BoostType           *enums.BoostType    `gorm:"column:boost_type;type:boost_type"`
	ScaleType           *enums.ScaleType    `gorm:"column:scale_type;type:scale_type"`
	SubmittedAt         *time.Time          `gorm:"column:submitted_at"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
