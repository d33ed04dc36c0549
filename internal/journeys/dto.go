package journeys

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/flows"
)

// CreateJourneyRequest starts a new learning journey.
type CreateJourneyRequest struct {
	JourneyType string `json:"journey_type" validate:"required,oneof=skill_ptc idea_ptc scaling_path"`
}

// SavePhaseRequest carries one auto-save or explicit save of phase answers.
type SavePhaseRequest struct {
	Responses      map[string]string `json:"responses" validate:"required"`
	CompletedTasks []string          `json:"completed_tasks"`
	DocumentIDs    []uuid.UUID       `json:"document_ids"`
}

// JourneyDTO is the transport shape of a learning journey.
type JourneyDTO struct {
	ID           uuid.UUID                   `json:"id"`
	JourneyType  enums.JourneyType           `json:"journey_type"`
	CurrentPhase int                         `json:"current_phase"`
	PhaseCount   int                         `json:"phase_count"`
	Status       enums.LearningJourneyStatus `json:"status"`
	AdminNotes   *string                     `json:"admin_notes,omitempty"`
	StartedAt    *time.Time                  `json:"started_at,omitempty"`
	SubmittedAt  *time.Time                  `json:"submitted_at,omitempty"`
	DecidedAt    *time.Time                  `json:"decided_at,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
}

// PhaseDTO merges the static phase definition with whatever the user saved.
type PhaseDTO struct {
	PhaseNumber    int               `json:"phase_number"`
	Name           string            `json:"name"`
	Tasks          []flows.Task      `json:"tasks"`
	Responses      map[string]string `json:"responses"`
	CompletedTasks []string          `json:"completed_tasks"`
	DocumentIDs    []uuid.UUID       `json:"document_ids"`
	IsCompleted    bool              `json:"is_completed"`
	Unlocked       bool              `json:"unlocked"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// JourneyDetailDTO is a journey plus its full phase ladder.
type JourneyDetailDTO struct {
	JourneyDTO
	Phases []PhaseDTO `json:"phases"`
}

func journeyDTO(journey *models.LearningJourney) JourneyDTO {
	return JourneyDTO{
		ID:           journey.ID,
		JourneyType:  journey.JourneyType,
		CurrentPhase: journey.CurrentPhase,
		PhaseCount:   flows.JourneyPhaseCount(journey.JourneyType),
		Status:       journey.Status,
		AdminNotes:   journey.AdminNotes,
		StartedAt:    journey.StartedAt,
		SubmittedAt:  journey.SubmittedAt,
		DecidedAt:    journey.DecidedAt,
		CreatedAt:    journey.CreatedAt,
	}
}

// phaseLadder walks the definitions in order and merges saved rows in. A
// phase is unlocked when it is first or its predecessor is completed.
func phaseLadder(journeyType enums.JourneyType, saved []models.JourneyPhaseResponse) []PhaseDTO {
	byNumber := make(map[int]models.JourneyPhaseResponse, len(saved))
	for _, row := range saved {
		byNumber[row.PhaseNumber] = row
	}

	definitions := flows.JourneyPhases(journeyType)
	ladder := make([]PhaseDTO, 0, len(definitions))
	previousCompleted := true
	for _, definition := range definitions {
		dto := PhaseDTO{
			PhaseNumber: definition.Number,
			Name:        definition.Name,
			Tasks:       definition.Tasks,
			Responses:   map[string]string{},
			Unlocked:    previousCompleted,
		}
		if row, ok := byNumber[definition.Number]; ok {
			if row.Responses != nil {
				dto.Responses = row.Responses
			}
			dto.CompletedTasks = row.CompletedTasks
			dto.DocumentIDs = []uuid.UUID(row.DocumentIDs)
			dto.IsCompleted = row.IsCompleted
			dto.CompletedAt = row.CompletedAt
		}
		previousCompleted = dto.IsCompleted
		ladder = append(ladder, dto)
	}
	return ladder
}
