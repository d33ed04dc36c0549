package enums

import "fmt"

// JourneyType maps to the journey_type enum on learning_journeys.
type JourneyType string

const (
	JourneyTypeSkillPTC    JourneyType = "skill_ptc"
	JourneyTypeIdeaPTC     JourneyType = "idea_ptc"
	JourneyTypeScalingPath JourneyType = "scaling_path"
)

var validJourneyTypes = []JourneyType{
	JourneyTypeSkillPTC,
	JourneyTypeIdeaPTC,
	JourneyTypeScalingPath,
}

// String implements fmt.Stringer.
func (j JourneyType) String() string {
	return string(j)
}

// IsValid reports whether the value matches the canonical journey_type enum.
func (j JourneyType) IsValid() bool {
	for _, candidate := range validJourneyTypes {
		if candidate == j {
			return true
		}
	}
	return false
}

// ParseJourneyType converts raw input into JourneyType.
func ParseJourneyType(value string) (JourneyType, error) {
	for _, candidate := range validJourneyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journey type %q", value)
}
