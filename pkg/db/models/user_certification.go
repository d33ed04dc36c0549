package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// UserCertification records an admin-approved journey completion. One row
// per (user_id, certification_type); approvals upsert.
type UserCertification struct {
	ID                uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_certifications_user_type"`
	CertificationType enums.CertificationType `gorm:"column:certification_type;type:certification_type;not null;uniqueIndex:idx_certifications_user_type"`
	DisplayLabel      string                  `gorm:"column:display_label;not null"`
	JourneyID         *uuid.UUID              `gorm:"column:journey_id;type:uuid"`
	Verified          bool                    `gorm:"column:verified;not null;default:false"`
	GrantedBy         *uuid.UUID              `gorm:"column:granted_by;type:uuid"`
	GrantedAt         time.Time               `gorm:"column:granted_at;autoCreateTime"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
