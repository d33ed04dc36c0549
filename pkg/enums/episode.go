package enums

import "fmt"

// Episode maps to the idea_episode enum: the three narrative stages of a
// startup idea's lifecycle.
type Episode string

const (
	EpisodeDevelopment Episode = "development"
	EpisodeValidation  Episode = "validation"
	EpisodeGrowth      Episode = "growth"
)

// EpisodeOrder lists episodes in their fixed lifecycle order.
var EpisodeOrder = []Episode{
	EpisodeDevelopment,
	EpisodeValidation,
	EpisodeGrowth,
}

// String implements fmt.Stringer.
func (e Episode) String() string {
	return string(e)
}

// IsValid reports whether the value matches the canonical idea_episode enum.
func (e Episode) IsValid() bool {
	for _, candidate := range EpisodeOrder {
		if candidate == e {
			return true
		}
	}
	return false
}

// Next returns the episode following e, or false when e is terminal.
func (e Episode) Next() (Episode, bool) {
	for i, candidate := range EpisodeOrder {
		if candidate == e && i+1 < len(EpisodeOrder) {
			return EpisodeOrder[i+1], true
		}
	}
	return "", false
}

// ParseEpisode converts raw input into Episode.
func ParseEpisode(value string) (Episode, error) {
	for _, candidate := range EpisodeOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid episode %q", value)
}
