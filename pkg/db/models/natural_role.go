package models

import (
	"time"

	"github.com/google/uuid"
)

// NaturalRole captures a co-builder's self-declared value-creation capability
// plus the four validation checks. is_ready is maintained by the onboarding
// service: true iff all four checks are true.
type NaturalRole struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`

	PromiseCheck     bool    `gorm:"column:promise_check;not null;default:false"`
	PromiseDetail    *string `gorm:"column:promise_detail;type:text"`
	PromiseNeedsHelp bool    `gorm:"column:promise_needs_help;not null;default:false"`

	PracticeCheck     bool    `gorm:"column:practice_check;not null;default:false"`
	PracticeDetail    *string `gorm:"column:practice_detail;type:text"`
	PracticeNeedsHelp bool    `gorm:"column:practice_needs_help;not null;default:false"`

	TrainingCheck     bool    `gorm:"column:training_check;not null;default:false"`
	TrainingDetail    *string `gorm:"column:training_detail;type:text"`
	TrainingNeedsHelp bool    `gorm:"column:training_needs_help;not null;default:false"`

	ConsultingCheck     bool    `gorm:"column:consulting_check;not null;default:false"`
	ConsultingDetail    *string `gorm:"column:consulting_detail;type:text"`
	ConsultingNeedsHelp bool    `gorm:"column:consulting_needs_help;not null;default:false"`

	IsReady   bool      `gorm:"column:is_ready;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AllChecksTrue reports whether every validation check passed.
func (n NaturalRole) AllChecksTrue() bool {
	return n.PromiseCheck && n.PracticeCheck && n.TrainingCheck && n.ConsultingCheck
}
