package enums

import "fmt"

// PlatformRole represents a platform-level permissions role.
type PlatformRole string

const (
	RolePlatformAdmin PlatformRole = "platform_admin"
	RoleOrgAdmin      PlatformRole = "org_admin"
	RoleRecruiter     PlatformRole = "recruiter"
	RoleCandidate     PlatformRole = "candidate"
)

var validPlatformRoles = []PlatformRole{
	RolePlatformAdmin,
	RoleOrgAdmin,
	RoleRecruiter,
	RoleCandidate,
}

// String implements fmt.Stringer.
func (r PlatformRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known PlatformRole.
func (r PlatformRole) IsValid() bool {
	for _, candidate := range validPlatformRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePlatformRole converts raw input into a PlatformRole.
func ParsePlatformRole(value string) (PlatformRole, error) {
	for _, candidate := range validPlatformRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform role %q", value)
}
