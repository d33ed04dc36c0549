package enums

import "fmt"

// TrainingReviewStatus maps to the training_review_status enum on training_opportunities.
type TrainingReviewStatus string

const (
	TrainingReviewStatusPending  TrainingReviewStatus = "pending"
	TrainingReviewStatusApproved TrainingReviewStatus = "approved"
	TrainingReviewStatusDeclined TrainingReviewStatus = "declined"
)

var validTrainingReviewStatuses = []TrainingReviewStatus{
	TrainingReviewStatusPending,
	TrainingReviewStatusApproved,
	TrainingReviewStatusDeclined,
}

// String implements fmt.Stringer.
func (t TrainingReviewStatus) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical enum.
func (t TrainingReviewStatus) IsValid() bool {
	for _, candidate := range validTrainingReviewStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTrainingReviewStatus converts raw input into TrainingReviewStatus.
func ParseTrainingReviewStatus(value string) (TrainingReviewStatus, error) {
	for _, candidate := range validTrainingReviewStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid training review status %q", value)
}
