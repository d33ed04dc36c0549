package enums

import "fmt"

// JourneyStatus maps to the journey_status enum on onboarding_states.
type JourneyStatus string

const (
	JourneyStatusInProgress             JourneyStatus = "in_progress"
	JourneyStatusPendingApproval        JourneyStatus = "pending_approval"
	JourneyStatusApproved               JourneyStatus = "approved"
	JourneyStatusRejected               JourneyStatus = "rejected"
	JourneyStatusEntrepreneurApproved   JourneyStatus = "entrepreneur_approved"
	JourneyStatusEntrepreneurInProgress JourneyStatus = "entrepreneur_in_progress"
)

var validJourneyStatuses = []JourneyStatus{
	JourneyStatusInProgress,
	JourneyStatusPendingApproval,
	JourneyStatusApproved,
	JourneyStatusRejected,
	JourneyStatusEntrepreneurApproved,
	JourneyStatusEntrepreneurInProgress,
}

// String implements fmt.Stringer.
func (j JourneyStatus) String() string {
	return string(j)
}

// IsValid reports whether the value matches the canonical journey_status enum.
func (j JourneyStatus) IsValid() bool {
	for _, candidate := range validJourneyStatuses {
		if candidate == j {
			return true
		}
	}
	return false
}

// ParseJourneyStatus converts raw input into JourneyStatus.
func ParseJourneyStatus(value string) (JourneyStatus, error) {
	for _, candidate := range validJourneyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journey status %q", value)
}
