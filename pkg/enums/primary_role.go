package enums

import "fmt"

// PrimaryRole maps to the primary_role enum in Postgres.
type PrimaryRole string

const (
	PrimaryRoleEntrepreneur PrimaryRole = "entrepreneur"
	PrimaryRoleCoBuilder    PrimaryRole = "cobuilder"
)

var validPrimaryRoles = []PrimaryRole{
	PrimaryRoleEntrepreneur,
	PrimaryRoleCoBuilder,
}

// String implements fmt.Stringer.
func (p PrimaryRole) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical primary_role enum.
func (p PrimaryRole) IsValid() bool {
	for _, candidate := range validPrimaryRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePrimaryRole converts raw input into PrimaryRole.
func ParsePrimaryRole(value string) (PrimaryRole, error) {
	for _, candidate := range validPrimaryRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid primary role %q", value)
}
