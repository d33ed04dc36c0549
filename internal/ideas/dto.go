package ideas

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/flows"
)

// CreateIdeaRequest registers a new startup idea. It lands in the admin
// review queue before co-builders can see it.
type CreateIdeaRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Pitch            string   `json:"pitch" validate:"required,max=10000"`
	Box              string   `json:"box" validate:"omitempty,max=200"`
	RolesNeeded      []string `json:"roles_needed" validate:"omitempty,dive,max=100"`
	EquityPercentage string   `json:"equity_percentage" validate:"omitempty"`
}

// UpdateIdeaRequest edits an idea. Nil fields are left untouched.
type UpdateIdeaRequest struct {
	Title            *string   `json:"title" validate:"omitempty,max=200"`
	Pitch            *string   `json:"pitch" validate:"omitempty,max=10000"`
	Box              *string   `json:"box" validate:"omitempty,max=200"`
	RolesNeeded      *[]string `json:"roles_needed" validate:"omitempty,dive,max=100"`
	EquityPercentage *string   `json:"equity_percentage"`
	Status           *string   `json:"status" validate:"omitempty,oneof=active paused archived"`
}

// ApplyRequest is a co-builder's application to join an idea.
type ApplyRequest struct {
	Role         string `json:"role" validate:"omitempty,max=100"`
	CoverMessage string `json:"cover_message" validate:"required,max=5000"`
}

// SaveProgressRequest carries an episode phase auto-save.
type SaveProgressRequest struct {
	Responses map[string]string `json:"responses" validate:"required"`
}

// BrowseParams paginates the co-builder idea feed.
type BrowseParams struct {
	Limit  int
	Cursor string
}

// IdeaDTO is the transport shape of a startup idea.
type IdeaDTO struct {
	ID               uuid.UUID          `json:"id"`
	InitiatorID      uuid.UUID          `json:"initiator_id"`
	Title            string             `json:"title"`
	Pitch            string             `json:"pitch"`
	Box              *string            `json:"box,omitempty"`
	ReviewStatus     enums.ReviewStatus `json:"review_status"`
	Status           enums.IdeaStatus   `json:"status"`
	CurrentEpisode   enums.Episode      `json:"current_episode"`
	RolesNeeded      []string           `json:"roles_needed"`
	EquityPercentage decimal.Decimal    `json:"equity_percentage"`
	AdminNotes       *string            `json:"admin_notes,omitempty"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// BrowseResult wraps a feed page and the cursor for the next one.
type BrowseResult struct {
	Items  []IdeaDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

// ApplicationDTO is the transport shape of a startup application.
type ApplicationDTO struct {
	ID           uuid.UUID               `json:"id"`
	IdeaID       uuid.UUID               `json:"idea_id"`
	ApplicantID  uuid.UUID               `json:"applicant_id"`
	Role         *string                 `json:"role,omitempty"`
	CoverMessage string                  `json:"cover_message"`
	Status       enums.ApplicationStatus `json:"status"`
	DecidedAt    *time.Time              `json:"decided_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// EpisodePhaseDTO merges the static episode phase definition with saved
// answers for one startup idea.
type EpisodePhaseDTO struct {
	PhaseNumber int               `json:"phase_number"`
	Name        string            `json:"name"`
	Tasks       []flows.Task      `json:"tasks"`
	Responses   map[string]string `json:"responses"`
	IsCompleted bool              `json:"is_completed"`
	Unlocked    bool              `json:"unlocked"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// EpisodeDTO is one episode's phase ladder for an idea.
type EpisodeDTO struct {
	IdeaID         uuid.UUID         `json:"idea_id"`
	Episode        enums.Episode     `json:"episode"`
	CurrentEpisode enums.Episode     `json:"current_episode"`
	Terminal       bool              `json:"terminal"`
	Phases         []EpisodePhaseDTO `json:"phases"`
}

func ideaDTO(idea *models.StartupIdea) IdeaDTO {
	return IdeaDTO{
		ID:               idea.ID,
		InitiatorID:      idea.UserID,
		Title:            idea.Title,
		Pitch:            idea.Pitch,
		Box:              idea.Box,
		ReviewStatus:     idea.ReviewStatus,
		Status:           idea.Status,
		CurrentEpisode:   idea.CurrentEpisode,
		RolesNeeded:      idea.RolesNeeded,
		EquityPercentage: idea.EquityPercentage,
		AdminNotes:       idea.AdminNotes,
		CompletedAt:      idea.CompletedAt,
		CreatedAt:        idea.CreatedAt,
	}
}

func applicationDTO(application *models.StartupApplication) ApplicationDTO {
	return ApplicationDTO{
		ID:           application.ID,
		IdeaID:       application.IdeaID,
		ApplicantID:  application.ApplicantID,
		Role:         application.Role,
		CoverMessage: application.CoverMessage,
		Status:       application.Status,
		DecidedAt:    application.DecidedAt,
		CreatedAt:    application.CreatedAt,
	}
}

func episodeLadder(episode enums.Episode, saved []models.IdeaJourneyProgress) []EpisodePhaseDTO {
	byNumber := make(map[int]models.IdeaJourneyProgress, len(saved))
	for _, row := range saved {
		byNumber[row.PhaseNumber] = row
	}

	definitions := flows.EpisodePhases(episode)
	ladder := make([]EpisodePhaseDTO, 0, len(definitions))
	previousCompleted := true
	for _, definition := range definitions {
		dto := EpisodePhaseDTO{
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
			dto.IsCompleted = row.IsCompleted
			dto.CompletedAt = row.CompletedAt
		}
		previousCompleted = dto.IsCompleted
		ladder = append(ladder, dto)
	}
	return ladder
}
