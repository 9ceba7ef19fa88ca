package enums

import "fmt"

// ApplicationStage tracks where an application sits in the pipeline.
type ApplicationStage string

const (
	StageSourced    ApplicationStage = "sourced"
	StageApplied    ApplicationStage = "applied"
	StageScreen     ApplicationStage = "screen"
	StageAIReviewed ApplicationStage = "ai_reviewed"
	StageSubmitted  ApplicationStage = "submitted"
	StageInterview  ApplicationStage = "interview"
	StageOffer      ApplicationStage = "offer"
	StagePlaced     ApplicationStage = "placed"
	StageRejected   ApplicationStage = "rejected"
	StageWithdrawn  ApplicationStage = "withdrawn"
)

var validApplicationStages = []ApplicationStage{
	StageSourced,
	StageApplied,
	StageScreen,
	StageAIReviewed,
	StageSubmitted,
	StageInterview,
	StageOffer,
	StagePlaced,
	StageRejected,
	StageWithdrawn,
}

// String implements fmt.Stringer.
func (s ApplicationStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApplicationStage.
func (s ApplicationStage) IsValid() bool {
	for _, candidate := range validApplicationStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApplicationStage converts raw input into an ApplicationStage.
func ParseApplicationStage(value string) (ApplicationStage, error) {
	for _, candidate := range validApplicationStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application stage %q", value)
}
