package enums

import "fmt"

// LearningJourneyStatus maps to the learning_journey_status enum in Postgres.
type LearningJourneyStatus string

const (
	LearningJourneyStatusNotStarted      LearningJourneyStatus = "not_started"
	LearningJourneyStatusInProgress      LearningJourneyStatus = "in_progress"
	LearningJourneyStatusPendingApproval LearningJourneyStatus = "pending_approval"
	LearningJourneyStatusApproved        LearningJourneyStatus = "approved"
	LearningJourneyStatusRejected        LearningJourneyStatus = "rejected"
)

var validLearningJourneyStatuses = []LearningJourneyStatus{
	LearningJourneyStatusNotStarted,
	LearningJourneyStatusInProgress,
	LearningJourneyStatusPendingApproval,
	LearningJourneyStatusApproved,
	LearningJourneyStatusRejected,
}

// String implements fmt.Stringer.
func (l LearningJourneyStatus) String() string {
	return string(l)
}

// IsValid reports whether the value matches the canonical enum.
func (l LearningJourneyStatus) IsValid() bool {
	for _, candidate := range validLearningJourneyStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLearningJourneyStatus converts raw input into LearningJourneyStatus.
func ParseLearningJourneyStatus(value string) (LearningJourneyStatus, error) {
	for _, candidate := range validLearningJourneyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid learning journey status %q", value)
}
