package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// OnboardingSubmittedEvent signals that a user completed the wizard and asked for review.
type OnboardingSubmittedEvent struct {
	UserID      uuid.UUID         `json:"user_id"`
	PrimaryRole enums.PrimaryRole `json:"primary_role"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// OnboardingDecidedEvent is emitted when an admin approves or rejects an onboarding.
type OnboardingDecidedEvent struct {
	UserID      uuid.UUID           `json:"user_id"`
	PrimaryRole enums.PrimaryRole   `json:"primary_role"`
	Status      enums.JourneyStatus `json:"status"`
	ReviewedBy  uuid.UUID           `json:"reviewed_by"`
	Notes       string              `json:"notes,omitempty"`
}

// JourneyStartedEvent is emitted when a learning journey moves out of not_started.
type JourneyStartedEvent struct {
	JourneyID   uuid.UUID         `json:"journey_id"`
	UserID      uuid.UUID         `json:"user_id"`
	JourneyType enums.JourneyType `json:"journey_type"`
}

// JourneyPhaseSavedEvent captures a phase response upsert.
type JourneyPhaseSavedEvent struct {
	JourneyID   uuid.UUID         `json:"journey_id"`
	UserID      uuid.UUID         `json:"user_id"`
	JourneyType enums.JourneyType `json:"journey_type"`
	PhaseNumber int               `json:"phase_number"`
	IsCompleted bool              `json:"is_completed"`
}

// JourneySubmittedEvent signals that all phases are complete and the journey awaits review.
type JourneySubmittedEvent struct {
	JourneyID   uuid.UUID         `json:"journey_id"`
	UserID      uuid.UUID         `json:"user_id"`
	JourneyType enums.JourneyType `json:"journey_type"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// JourneyDecidedEvent is emitted when an admin approves or rejects a submitted journey.
type JourneyDecidedEvent struct {
	JourneyID   uuid.UUID                   `json:"journey_id"`
	UserID      uuid.UUID                   `json:"user_id"`
	JourneyType enums.JourneyType           `json:"journey_type"`
	Status      enums.LearningJourneyStatus `json:"status"`
	ReviewedBy  uuid.UUID                   `json:"reviewed_by"`
	Notes       string                      `json:"notes,omitempty"`
}

// CertificationGrantedEvent surfaces the credential created by a journey approval.
type CertificationGrantedEvent struct {
	UserID            uuid.UUID               `json:"user_id"`
	CertificationType enums.CertificationType `json:"certification_type"`
	DisplayLabel      string                  `json:"display_label"`
	GrantedBy         uuid.UUID               `json:"granted_by"`
}

// IdeaSubmittedEvent is emitted when an initiator publishes a startup idea for review.
type IdeaSubmittedEvent struct {
	IdeaID      uuid.UUID `json:"idea_id"`
	InitiatorID uuid.UUID `json:"initiator_id"`
	Title       string    `json:"title"`
}

// IdeaDecidedEvent carries the admin decision for an idea.
type IdeaDecidedEvent struct {
	IdeaID      uuid.UUID          `json:"idea_id"`
	InitiatorID uuid.UUID          `json:"initiator_id"`
	Status      enums.ReviewStatus `json:"status"`
	ReviewedBy  uuid.UUID          `json:"reviewed_by"`
	Notes       string             `json:"notes,omitempty"`
}

// EpisodeAdvancedEvent records that an idea finished all phases of an episode.
type EpisodeAdvancedEvent struct {
	IdeaID      uuid.UUID     `json:"idea_id"`
	InitiatorID uuid.UUID     `json:"initiator_id"`
	FromEpisode enums.Episode `json:"from_episode"`
	ToEpisode   enums.Episode `json:"to_episode"`
}

// ApplicationSubmittedEvent is emitted when a co-builder applies to an idea.
type ApplicationSubmittedEvent struct {
	ApplicationID uuid.UUID `json:"application_id"`
	IdeaID        uuid.UUID `json:"idea_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	InitiatorID   uuid.UUID `json:"initiator_id"`
}

// ApplicationDecidedEvent carries the initiator decision on an application.
type ApplicationDecidedEvent struct {
	ApplicationID uuid.UUID               `json:"application_id"`
	IdeaID        uuid.UUID               `json:"idea_id"`
	ApplicantID   uuid.UUID               `json:"applicant_id"`
	Status        enums.ApplicationStatus `json:"status"`
}

// TrainingSubmittedEvent is emitted when a consultant posts a training opportunity.
type TrainingSubmittedEvent struct {
	TrainingID uuid.UUID `json:"training_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Title      string    `json:"title"`
}

// TrainingDecidedEvent carries the admin decision on a training opportunity.
type TrainingDecidedEvent struct {
	TrainingID uuid.UUID                  `json:"training_id"`
	AuthorID   uuid.UUID                  `json:"author_id"`
	Status     enums.TrainingReviewStatus `json:"status"`
	ReviewedBy uuid.UUID                  `json:"reviewed_by"`
}

// AccountDeletedEvent is emitted after a soft or hard account deletion.
type AccountDeletedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Hard      bool      `json:"hard"`
	DeletedAt time.Time `json:"deleted_at"`
}
