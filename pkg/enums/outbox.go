package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCandidate         OutboxAggregateType = "candidate"
	AggregateApplication       OutboxAggregateType = "application"
	AggregateSourcerAssignment OutboxAggregateType = "sourcer_assignment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCandidate,
	AggregateApplication,
	AggregateSourcerAssignment,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the dot-namespaced routing key for an event. Payload
// shape changes require a new event type, never a silent reshape.
type OutboxEventType string

const (
	EventApplicationStageChanged      OutboxEventType = "application.stage_changed"
	EventAIReviewCompleted            OutboxEventType = "ai_review.completed"
	EventCandidateLinkRequested       OutboxEventType = "candidate.link_requested"
	EventSourcerAssignmentRequested   OutboxEventType = "candidate.sourcer_assignment_requested"
	EventCandidateSourced             OutboxEventType = "candidate.sourced"
	EventOwnershipConflictDetected    OutboxEventType = "ownership.conflict_detected"
	EventResumeMetadataExtracted      OutboxEventType = "resume.metadata.extracted"
	EventSourcerAssignmentUpdated     OutboxEventType = "candidate.sourcer_assignment_updated"
	EventSourcerAssignmentReleased    OutboxEventType = "candidate.sourcer_assignment_released"
	EventSourcerProtectionExpired     OutboxEventType = "candidate.protection_expired"
	EventCandidateIdentityLinked      OutboxEventType = "candidate.identity_linked"
	EventNotificationRequested        OutboxEventType = "notification.requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventApplicationStageChanged,
	EventAIReviewCompleted,
	EventCandidateLinkRequested,
	EventSourcerAssignmentRequested,
	EventCandidateSourced,
	EventOwnershipConflictDetected,
	EventResumeMetadataExtracted,
	EventSourcerAssignmentUpdated,
	EventSourcerAssignmentReleased,
	EventSourcerProtectionExpired,
	EventCandidateIdentityLinked,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
