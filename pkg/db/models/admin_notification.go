package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// AdminNotification is an append-only event record for the operator queue.
// SubjectUserID points at the user the event concerns.
type AdminNotification struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectUserID uuid.UUID              `gorm:"column:subject_user_id;type:uuid;not null;index"`
	Type          enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title         string                 `gorm:"column:title;type:text;not null"`
	Message       string                 `gorm:"column:message;type:text;not null"`
	Payload       json.RawMessage        `gorm:"column:payload;type:jsonb"`
	ReadAt        *time.Time             `gorm:"column:read_at;type:timestamptz"`
	CreatedAt     time.Time              `gorm:"column:created_at;type:timestamptz;default:now()"`
}
