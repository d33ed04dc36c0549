package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// TrainingOpportunity is submitted by a user and reviewed by an admin.
type TrainingOpportunity struct {
	ID           uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Title        string                     `gorm:"column:title;not null"`
	Description  string                     `gorm:"column:description;type:text;not null;default:''"`
	Link         *string                    `gorm:"column:link"`
	ReviewStatus enums.TrainingReviewStatus `gorm:"column:review_status;type:training_review_status;not null;default:'pending'"`
	AdminNotes   *string                    `gorm:"column:admin_notes;type:text"`
	DecidedAt    *time.Time                 `gorm:"column:decided_at"`
	CreatedAt    time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
