package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// StartupApplication links a co-builder applicant to a StartupIdea.
type StartupApplication struct {
	ID           uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	IdeaID       uuid.UUID               `gorm:"column:idea_id;type:uuid;not null;uniqueIndex:idx_applications_idea_applicant"`
	ApplicantID  uuid.UUID               `gorm:"column:applicant_id;type:uuid;not null;uniqueIndex:idx_applications_idea_applicant"`
	Role         *string                 `gorm:"column:role"`
	CoverMessage string                  `gorm:"column:cover_message;type:text;not null;default:''"`
	Status       enums.ApplicationStatus `gorm:"column:status;type:application_status;not null;default:'pending'"`
	DecidedAt    *time.Time              `gorm:"column:decided_at"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
