package enums

import "fmt"

// PlatformRole is the access role carried in JWT claims and granted through
// the user_roles table.
type PlatformRole string

const (
	PlatformRoleUser         PlatformRole = "user"
	PlatformRoleEntrepreneur PlatformRole = "entrepreneur"
	PlatformRoleCoBuilder    PlatformRole = "cobuilder"
	PlatformRoleAdmin        PlatformRole = "admin"
)

var validPlatformRoles = []PlatformRole{
	PlatformRoleUser,
	PlatformRoleEntrepreneur,
	PlatformRoleCoBuilder,
	PlatformRoleAdmin,
}

// String implements fmt.Stringer.
func (p PlatformRole) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical platform_role enum.
func (p PlatformRole) IsValid() bool {
	for _, candidate := range validPlatformRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatformRole converts raw input into PlatformRole.
func ParsePlatformRole(value string) (PlatformRole, error) {
	for _, candidate := range validPlatformRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform role %q", value)
}
