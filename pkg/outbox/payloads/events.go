package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// ApplicationStageChangedEvent syncs an application's stage across services.
type ApplicationStageChangedEvent struct {
	ApplicationID uuid.UUID              `json:"application_id"`
	CandidateID   uuid.UUID              `json:"candidate_id"`
	JobID         uuid.UUID              `json:"job_id"`
	OldStage      enums.ApplicationStage `json:"old_stage"`
	NewStage      enums.ApplicationStage `json:"new_stage"`
	ChangedAt     time.Time              `json:"changed_at"`
}

// AIReviewCompletedEvent reports the outcome of an automated resume review.
type AIReviewCompletedEvent struct {
	ApplicationID  uuid.UUID `json:"application_id"`
	CandidateID    uuid.UUID `json:"candidate_id"`
	JobID          uuid.UUID `json:"job_id"`
	Recommendation string    `json:"recommendation"`
	Score          *float64  `json:"score,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}

// CandidateLinkRequestedEvent asks the platform to link an external identity
// to a candidate record.
type CandidateLinkRequestedEvent struct {
	CandidateID        uuid.UUID `json:"candidate_id"`
	ExternalIdentityID string    `json:"external_identity_id"`
	Email              string    `json:"email,omitempty"`
	RequestedAt        time.Time `json:"requested_at"`
}

// CandidateIdentityLinkedEvent confirms an identity link was applied.
type CandidateIdentityLinkedEvent struct {
	CandidateID        uuid.UUID `json:"candidate_id"`
	UserID             uuid.UUID `json:"user_id"`
	ExternalIdentityID string    `json:"external_identity_id"`
	LinkedAt           time.Time `json:"linked_at"`
}

// SourcerAssignmentRequestedEvent claims sourcing credit for a candidate.
type SourcerAssignmentRequestedEvent struct {
	CandidateID          uuid.UUID         `json:"candidate_id"`
	SourcerIdentityID    uuid.UUID         `json:"sourcer_identity_id"`
	SourcerType          enums.SourcerType `json:"sourcer_type"`
	SourcedAt            time.Time         `json:"sourced_at"`
	ProtectionWindowDays *int              `json:"protection_window_days,omitempty"`
	PlacementFeeRate     *decimal.Decimal  `json:"placement_fee_rate,omitempty"`
	Notes                string            `json:"notes,omitempty"`
}

// CandidateSourcedEvent announces a granted sourcer assignment.
type CandidateSourcedEvent struct {
	CandidateID         uuid.UUID         `json:"candidate_id"`
	AssignmentID        uuid.UUID         `json:"assignment_id"`
	SourcerIdentityID   uuid.UUID         `json:"sourcer_identity_id"`
	SourcerType         enums.SourcerType `json:"sourcer_type"`
	SourcedAt           time.Time         `json:"sourced_at"`
	ProtectionExpiresAt time.Time         `json:"protection_expires_at"`
	PlacementFeeRate    decimal.Decimal   `json:"placement_fee_rate"`
}

// OwnershipConflictDetectedEvent records a duplicate sourcing claim for
// asynchronous admin review. The existing assignment is never altered.
type OwnershipConflictDetectedEvent struct {
	CandidateID          uuid.UUID         `json:"candidate_id"`
	AssignmentID         uuid.UUID         `json:"assignment_id"`
	ExistingSourcerID    uuid.UUID         `json:"existing_sourcer_id"`
	ExistingSourcedAt    time.Time         `json:"existing_sourced_at"`
	RequestedSourcerID   uuid.UUID         `json:"requested_sourcer_id"`
	RequestedSourcerType enums.SourcerType `json:"requested_sourcer_type"`
	RequestedAt          time.Time         `json:"requested_at"`
}

// SourcerAssignmentUpdatedEvent reports changes to an existing assignment.
type SourcerAssignmentUpdatedEvent struct {
	CandidateID         uuid.UUID        `json:"candidate_id"`
	AssignmentID        uuid.UUID        `json:"assignment_id"`
	SourcerIdentityID   uuid.UUID        `json:"sourcer_identity_id"`
	ProtectionExpiresAt time.Time        `json:"protection_expires_at"`
	PlacementFeeRate    *decimal.Decimal `json:"placement_fee_rate,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// SourcerAssignmentReleasedEvent reports a released assignment.
type SourcerAssignmentReleasedEvent struct {
	CandidateID       uuid.UUID `json:"candidate_id"`
	AssignmentID      uuid.UUID `json:"assignment_id"`
	SourcerIdentityID uuid.UUID `json:"sourcer_identity_id"`
	ReleasedAt        time.Time `json:"released_at"`
	Reason            string    `json:"reason,omitempty"`
}

// SourcerProtectionExpiredEvent reports that an assignment's fee protection
// window lapsed. The assignment row itself is untouched; sourcing credit
// persists until a platform admin deletes it.
type SourcerProtectionExpiredEvent struct {
	CandidateID         uuid.UUID `json:"candidate_id"`
	AssignmentID        uuid.UUID `json:"assignment_id"`
	SourcerIdentityID   uuid.UUID `json:"sourcer_identity_id"`
	ProtectionExpiresAt time.Time `json:"protection_expires_at"`
}

// ResumeMetadataExtractedEvent carries structured fields parsed from a
// stored resume document.
type ResumeMetadataExtractedEvent struct {
	ResumeID        uuid.UUID `json:"resume_id"`
	CandidateID     uuid.UUID `json:"candidate_id"`
	Headline        string    `json:"headline,omitempty"`
	Location        string    `json:"location,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	YearsExperience *int      `json:"years_experience,omitempty"`
	ExtractedAt     time.Time `json:"extracted_at"`
}

// NotificationRequestedEvent tells the notification fan-out to alert a user.
type NotificationRequestedEvent struct {
	CandidateID       uuid.UUID  `json:"candidate_id"`
	RecipientIdentity uuid.UUID  `json:"recipient_identity"`
	Type              string     `json:"type"`
	AssignmentID      *uuid.UUID `json:"assignment_id,omitempty"`
}
