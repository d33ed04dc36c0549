package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// DecideOnboardingRequest approves or rejects a submitted onboarding.
// NotificationID, when set, marks the originating queue item read.
type DecideOnboardingRequest struct {
	Approve        bool       `json:"approve"`
	Notes          string     `json:"notes" validate:"omitempty,max=5000"`
	NotificationID *uuid.UUID `json:"notification_id"`
}

// DecideJourneyRequest approves or rejects a submitted learning journey.
// Rejections must carry notes; the member needs to know what to fix.
type DecideJourneyRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" validate:"omitempty,max=5000"`
}

// DecideIdeaRequest moves an idea to approved, rejected or under_review.
type DecideIdeaRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected under_review"`
	Notes    string `json:"notes" validate:"omitempty,max=5000"`
}

// DecideTrainingRequest approves or declines a training opportunity.
type DecideTrainingRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" validate:"omitempty,max=5000"`
}

// OnboardingReviewDTO is one onboarding submission in the admin queue.
type OnboardingReviewDTO struct {
	UserID        uuid.UUID           `json:"user_id"`
	PrimaryRole   *enums.PrimaryRole  `json:"primary_role,omitempty"`
	CurrentStep   int                 `json:"current_step"`
	JourneyStatus enums.JourneyStatus `json:"journey_status"`
	UserStatus    *enums.UserStatus   `json:"user_status,omitempty"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
}

// JourneyReviewDTO is one submitted learning journey in the admin queue.
type JourneyReviewDTO struct {
	ID          uuid.UUID                   `json:"id"`
	UserID      uuid.UUID                   `json:"user_id"`
	JourneyType enums.JourneyType           `json:"journey_type"`
	Status      enums.LearningJourneyStatus `json:"status"`
	AdminNotes  *string                     `json:"admin_notes,omitempty"`
	SubmittedAt *time.Time                  `json:"submitted_at,omitempty"`
	DecidedAt   *time.Time                  `json:"decided_at,omitempty"`
}

// IdeaReviewDTO is one startup idea awaiting a review decision.
type IdeaReviewDTO struct {
	ID           uuid.UUID          `json:"id"`
	InitiatorID  uuid.UUID          `json:"initiator_id"`
	Title        string             `json:"title"`
	Pitch        string             `json:"pitch"`
	ReviewStatus enums.ReviewStatus `json:"review_status"`
	AdminNotes   *string            `json:"admin_notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// TrainingReviewDTO is one training opportunity awaiting a decision.
type TrainingReviewDTO struct {
	ID           uuid.UUID                  `json:"id"`
	UserID       uuid.UUID                  `json:"user_id"`
	Title        string                     `json:"title"`
	ReviewStatus enums.TrainingReviewStatus `json:"review_status"`
	AdminNotes   *string                    `json:"admin_notes,omitempty"`
	DecidedAt    *time.Time                 `json:"decided_at,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// PendingQueueDTO bundles every review queue for the admin dashboard.
type PendingQueueDTO struct {
	Onboarding []OnboardingReviewDTO `json:"onboarding"`
	Journeys   []JourneyReviewDTO    `json:"journeys"`
	Ideas      []IdeaReviewDTO       `json:"ideas"`
	Trainings  []TrainingReviewDTO   `json:"trainings"`
}

func onboardingReviewDTO(state *models.OnboardingState) OnboardingReviewDTO {
	return OnboardingReviewDTO{
		UserID:        state.UserID,
		PrimaryRole:   state.PrimaryRole,
		CurrentStep:   state.CurrentStep,
		JourneyStatus: state.JourneyStatus,
		UserStatus:    state.UserStatus,
		SubmittedAt:   state.SubmittedAt,
	}
}

func journeyReviewDTO(journey *models.LearningJourney) JourneyReviewDTO {
	return JourneyReviewDTO{
		ID:          journey.ID,
		UserID:      journey.UserID,
		JourneyType: journey.JourneyType,
		Status:      journey.Status,
		AdminNotes:  journey.AdminNotes,
		SubmittedAt: journey.SubmittedAt,
		DecidedAt:   journey.DecidedAt,
	}
}

func ideaReviewDTO(idea *models.StartupIdea) IdeaReviewDTO {
	return IdeaReviewDTO{
		ID:           idea.ID,
		InitiatorID:  idea.UserID,
		Title:        idea.Title,
		Pitch:        idea.Pitch,
		ReviewStatus: idea.ReviewStatus,
		AdminNotes:   idea.AdminNotes,
		CreatedAt:    idea.CreatedAt,
	}
}

func trainingReviewDTO(training *models.TrainingOpportunity) TrainingReviewDTO {
	return TrainingReviewDTO{
		ID:           training.ID,
		UserID:       training.UserID,
		Title:        training.Title,
		ReviewStatus: training.ReviewStatus,
		AdminNotes:   training.AdminNotes,
		DecidedAt:    training.DecidedAt,
		CreatedAt:    training.CreatedAt,
	}
}
