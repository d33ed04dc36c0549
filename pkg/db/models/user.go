package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	Phone        *string    `gorm:"column:phone"`
	Bio          *string    `gorm:"column:bio;type:text"`
	Location     *string    `gorm:"column:location"`
	LinkedinURL  *string    `gorm:"column:linkedin_url"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	IsDeleted    bool       `gorm:"column:is_deleted;not null;default:false"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	SystemRole   *string    `gorm:"column:system_role"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
