package models

import (
	"time"

	"github.com/google/uuid"
)

// EntrepreneurialOnboarding mirrors NaturalRole for the entrepreneur path:
// five experience categories, each with has/description/count/needs-help.
type EntrepreneurialOnboarding struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`

	HasProject         bool    `gorm:"column:has_project;not null;default:false"`
	ProjectDescription *string `gorm:"column:project_description;type:text"`
	ProjectCount       int     `gorm:"column:project_count;not null;default:0"`
	ProjectNeedsHelp   bool    `gorm:"column:project_needs_help;not null;default:false"`

	HasProduct         bool    `gorm:"column:has_product;not null;default:false"`
	ProductDescription *string `gorm:"column:product_description;type:text"`
	ProductCount       int     `gorm:"column:product_count;not null;default:0"`
	ProductNeedsHelp   bool    `gorm:"column:product_needs_help;not null;default:false"`

	HasTeam         bool    `gorm:"column:has_team;not null;default:false"`
	TeamDescription *string `gorm:"column:team_description;type:text"`
	TeamCount       int     `gorm:"column:team_count;not null;default:0"`
	TeamNeedsHelp   bool    `gorm:"column:team_needs_help;not null;default:false"`

	HasBusiness         bool    `gorm:"column:has_business;not null;default:false"`
	BusinessDescription *string `gorm:"column:business_description;type:text"`
	BusinessCount       int     `gorm:"column:business_count;not null;default:0"`
	BusinessNeedsHelp   bool    `gorm:"column:business_needs_help;not null;default:false"`

	HasBoard         bool    `gorm:"column:has_board;not null;default:false"`
	BoardDescription *string `gorm:"column:board_description;type:text"`
	BoardCount       int     `gorm:"column:board_count;not null;default:0"`
	BoardNeedsHelp   bool    `gorm:"column:board_needs_help;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
