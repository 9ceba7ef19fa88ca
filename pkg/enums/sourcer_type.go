package enums

import "fmt"

// SourcerType distinguishes who holds sourcing credit for a candidate.
type SourcerType string

const (
	SourcerTypeRecruiter SourcerType = "recruiter"
	SourcerTypePlatform  SourcerType = "platform"
)

var validSourcerTypes = []SourcerType{
	SourcerTypeRecruiter,
	SourcerTypePlatform,
}

// IsValid reports whether the value is a known SourcerType.
func (s SourcerType) IsValid() bool {
	for _, candidate := range validSourcerTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSourcerType converts raw input into a SourcerType.
func ParseSourcerType(value string) (SourcerType, error) {
	for _, candidate := range validSourcerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sourcer type %q", value)
}
