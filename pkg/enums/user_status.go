package enums

import "fmt"

// UserStatus maps to the user_status enum on onboarding_states, set when an
// admin approves a completed learning journey.
type UserStatus string

const (
	UserStatusBoosted UserStatus = "boosted"
	UserStatusScaled  UserStatus = "scaled"
)

var validUserStatuses = []UserStatus{
	UserStatusBoosted,
	UserStatusScaled,
}

// IsValid reports whether the value matches the canonical user_status enum.
func (u UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == u {
			return true
		}
	}
	return false
}

// BoostType qualifies a boosted user by the journey that earned the boost.
type BoostType string

const (
	BoostTypeCoBuilder BoostType = "boosted_co_builder"
	BoostTypeInitiator BoostType = "boosted_initiator"
)

var validBoostTypes = []BoostType{
	BoostTypeCoBuilder,
	BoostTypeInitiator,
}

// IsValid reports whether the value matches the canonical boost_type enum.
func (b BoostType) IsValid() bool {
	for _, candidate := range validBoostTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ScaleType qualifies a scaled user.
type ScaleType string

const (
	ScaleTypePersonalPromise ScaleType = "personal_promise"
)

// IsValid reports whether the value matches the canonical scale_type enum.
func (s ScaleType) IsValid() bool {
	return s == ScaleTypePersonalPromise
}

// ParseUserStatus converts raw input into UserStatus.
func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
