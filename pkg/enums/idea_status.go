package enums

import "fmt"

// IdeaStatus maps to the idea_status enum on startup_ideas.
type IdeaStatus string

const (
	IdeaStatusActive    IdeaStatus = "active"
	IdeaStatusPaused    IdeaStatus = "paused"
	IdeaStatusCompleted IdeaStatus = "completed"
	IdeaStatusArchived  IdeaStatus = "archived"
)

var validIdeaStatuses = []IdeaStatus{
	IdeaStatusActive,
	IdeaStatusPaused,
	IdeaStatusCompleted,
	IdeaStatusArchived,
}

// String implements fmt.Stringer.
func (i IdeaStatus) String() string {
	return string(i)
}

// IsValid reports whether the value matches the canonical idea_status enum.
func (i IdeaStatus) IsValid() bool {
	for _, candidate := range validIdeaStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIdeaStatus converts raw input into IdeaStatus.
func ParseIdeaStatus(value string) (IdeaStatus, error) {
	for _, candidate := range validIdeaStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid idea status %q", value)
}
