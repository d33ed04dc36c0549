package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// Document tracks an object in the journey-documents bucket.
type Document struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Bucket    string               `gorm:"column:bucket;not null"`
	ObjectKey string               `gorm:"column:object_key;not null;uniqueIndex"`
	FileName  string               `gorm:"column:file_name;not null"`
	MimeType  string               `gorm:"column:mime_type;not null"`
	SizeBytes int64                `gorm:"column:size_bytes;not null;default:0"`
	Status    enums.DocumentStatus `gorm:"column:status;type:document_status;not null;default:'pending'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
