package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// IdeaJourneyProgress records answers for one phase of one episode of a
// startup idea. Upserts key on (startup_id, episode, phase_number) so client
// auto-save is idempotent.
type IdeaJourneyProgress struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StartupID   uuid.UUID         `gorm:"column:startup_id;type:uuid;not null;uniqueIndex:idx_idea_progress_key"`
	Episode     enums.Episode     `gorm:"column:episode;type:idea_episode;not null;uniqueIndex:idx_idea_progress_key"`
	PhaseNumber int               `gorm:"column:phase_number;not null;uniqueIndex:idx_idea_progress_key"`
	Responses   map[string]string `gorm:"column:responses;type:jsonb;serializer:json"`
	IsCompleted bool              `gorm:"column:is_completed;not null;default:false"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
