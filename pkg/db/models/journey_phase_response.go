package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/b4platform/b4-backend/pkg/db/types"
)

// JourneyPhaseResponse holds a user's free-form answers for one phase of a
// learning journey. One row per (journey_id, phase_number).
type JourneyPhaseResponse struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	JourneyID      uuid.UUID         `gorm:"column:journey_id;type:uuid;not null;uniqueIndex:idx_phase_responses_journey_phase"`
	PhaseNumber    int               `gorm:"column:phase_number;not null;uniqueIndex:idx_phase_responses_journey_phase"`
	Responses      map[string]string `gorm:"column:responses;type:jsonb;serializer:json"`
	CompletedTasks []string          `gorm:"column:completed_tasks;type:jsonb;serializer:json"`
	DocumentIDs    dbtypes.UUIDArray `gorm:"column:document_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	IsCompleted    bool              `gorm:"column:is_completed;not null;default:false"`
	CompletedAt    *time.Time        `gorm:"column:completed_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
