package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOnboarding   OutboxAggregateType = "onboarding"
	AggregateJourney      OutboxAggregateType = "journey"
	AggregateIdea         OutboxAggregateType = "idea"
	AggregateApplication  OutboxAggregateType = "application"
	AggregateTraining     OutboxAggregateType = "training"
	AggregateUser         OutboxAggregateType = "user"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOnboarding,
	AggregateJourney,
	AggregateIdea,
	AggregateApplication,
	AggregateTraining,
	AggregateUser,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOnboardingSubmitted  OutboxEventType = "onboarding_submitted"
	EventOnboardingDecided    OutboxEventType = "onboarding_decided"
	EventJourneyStarted       OutboxEventType = "journey_started"
	EventJourneyPhaseSaved    OutboxEventType = "journey_phase_saved"
	EventJourneySubmitted     OutboxEventType = "journey_submitted"
	EventJourneyDecided       OutboxEventType = "journey_decided"
	EventCertificationGranted OutboxEventType = "certification_granted"
	EventIdeaSubmitted        OutboxEventType = "idea_submitted"
	EventIdeaDecided          OutboxEventType = "idea_decided"
	EventEpisodeAdvanced      OutboxEventType = "episode_advanced"
	EventApplicationSubmitted OutboxEventType = "application_submitted"
	EventApplicationDecided   OutboxEventType = "application_decided"
	EventTrainingSubmitted    OutboxEventType = "training_submitted"
	EventTrainingDecided      OutboxEventType = "training_decided"
	EventAccountDeleted       OutboxEventType = "account_deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOnboardingSubmitted,
	EventOnboardingDecided,
	EventJourneyStarted,
	EventJourneyPhaseSaved,
	EventJourneySubmitted,
	EventJourneyDecided,
	EventCertificationGranted,
	EventIdeaSubmitted,
	EventIdeaDecided,
	EventEpisodeAdvanced,
	EventApplicationSubmitted,
	EventApplicationDecided,
	EventTrainingSubmitted,
	EventTrainingDecided,
	EventAccountDeleted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
