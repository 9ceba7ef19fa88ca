package sourcing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/pkg/config"
	"github.com/hirelane/talentsync-backend/pkg/db"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/payloads"
	"github.com/hirelane/talentsync-backend/pkg/pagination"
)

type repository interface {
	FindByCandidateID(ctx context.Context, candidateID uuid.UUID) (*models.SourcerAssignment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SourcerAssignment, error)
	CreateTx(tx *gorm.DB, assignment *models.SourcerAssignment) error
	UpdateTx(tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	ListBySourcer(ctx context.Context, sourcerIdentityID uuid.UUID, params pagination.Params) ([]models.SourcerAssignment, string, error)
}

type candidateStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	UpdateSourcedBy(ctx context.Context, candidateID, sourcerIdentityID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams collects the sourcing dependencies.
type ServiceParams struct {
	Repo       repository
	Candidates candidateStore
	DB         txRunner
	Emitter    eventEmitter
	Config     config.SourcingConfig
	Logger     *logger.Logger
}

// Service owns sourcer assignments and the candidate ownership rules built
// on them. A candidate has at most one assignment; the first claim to land
// wins and every later claim is recorded as a conflict, never applied.
type Service struct {
	repo       repository
	candidates candidateStore
	db         txRunner
	emitter    eventEmitter
	logg       *logger.Logger

	defaultProtectionDays int
	defaultFeeRate        decimal.Decimal
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sourcing repository required")
	}
	if params.Candidates == nil {
		return nil, fmt.Errorf("candidate store required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Emitter == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Config.DefaultProtectionDays <= 0 {
		return nil, fmt.Errorf("default protection window must be positive")
	}
	feeRate, err := decimal.NewFromString(params.Config.DefaultFeeRate)
	if err != nil {
		return nil, fmt.Errorf("parse default fee rate: %w", err)
	}
	return &Service{
		repo:                  params.Repo,
		candidates:            params.Candidates,
		db:                    params.DB,
		emitter:               params.Emitter,
		logg:                  params.Logger,
		defaultProtectionDays: params.Config.DefaultProtectionDays,
		defaultFeeRate:        feeRate,
	}, nil
}

// RequestAssignment attempts to claim sourcing credit for a candidate.
//
// First writer wins. If the candidate is already claimed by a different
// sourcer the request is dropped and an ownership.conflict_detected event is
// queued for admin review; no error is returned because redelivering the
// request can never change the outcome. A repeat claim by the current holder
// is a duplicate and a silent no-op.
func (s *Service) RequestAssignment(ctx context.Context, req payloads.SourcerAssignmentRequestedEvent) error {
	if req.CandidateID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "candidate_id required")
	}
	if req.SourcerIdentityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sourcer_identity_id required")
	}
	if !req.SourcerType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sourcer type %q", req.SourcerType))
	}

	candidate, err := s.candidates.FindByID(ctx, req.CandidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
	}

	existing, err := s.repo.FindByCandidateID(ctx, req.CandidateID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.resolveExistingClaim(ctx, existing, req)
	}

	sourcedAt := req.SourcedAt
	if sourcedAt.IsZero() {
		sourcedAt = time.Now()
	}
	protectionDays := s.defaultProtectionDays
	if req.ProtectionWindowDays != nil && *req.ProtectionWindowDays > 0 {
		protectionDays = *req.ProtectionWindowDays
	}
	feeRate := s.defaultFeeRate
	if req.PlacementFeeRate != nil {
		feeRate = *req.PlacementFeeRate
	}

	assignment := &models.SourcerAssignment{
		ID:                   uuid.New(),
		CandidateID:          req.CandidateID,
		SourcerIdentityID:    req.SourcerIdentityID,
		SourcerType:          req.SourcerType,
		SourcedAt:            sourcedAt,
		ProtectionWindowDays: protectionDays,
		ProtectionExpiresAt:  sourcedAt.AddDate(0, 0, protectionDays),
		PlacementFeeRate:     feeRate,
	}
	if req.Notes != "" {
		notes := req.Notes
		assignment.Notes = &notes
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, assignment); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCandidateSourced,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   req.CandidateID,
			Data: payloads.CandidateSourcedEvent{
				CandidateID:         assignment.CandidateID,
				AssignmentID:        assignment.ID,
				SourcerIdentityID:   assignment.SourcerIdentityID,
				SourcerType:         assignment.SourcerType,
				SourcedAt:           assignment.SourcedAt,
				ProtectionExpiresAt: assignment.ProtectionExpiresAt,
				PlacementFeeRate:    assignment.PlacementFeeRate,
			},
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, "ux_sourcer_assignments_candidate") {
			// Lost the race to a concurrent claim. Re-read the winner and
			// fall through to the conflict path.
			winner, findErr := s.repo.FindByCandidateID(ctx, req.CandidateID)
			if findErr != nil {
				return findErr
			}
			if winner != nil {
				return s.resolveExistingClaim(ctx, winner, req)
			}
		}
		return err
	}

	// Denormalized pointer used by candidate list views. The assignment row
	// is authoritative, so a failure here only gets logged.
	if err := s.candidates.UpdateSourcedBy(ctx, req.CandidateID, req.SourcerIdentityID); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"candidate_id": req.CandidateID.String(),
			"error":        err.Error(),
		}), "failed to update candidate sourced_by pointer")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"candidate_id":  req.CandidateID.String(),
		"assignment_id": assignment.ID.String(),
		"sourcer_id":    req.SourcerIdentityID.String(),
	}), "sourcer assignment created")
	return nil
}

// resolveExistingClaim handles a claim against an already-claimed candidate.
// Same sourcer means a duplicate request; anyone else is a conflict.
func (s *Service) resolveExistingClaim(ctx context.Context, existing *models.SourcerAssignment, req payloads.SourcerAssignmentRequestedEvent) error {
	if existing.SourcerIdentityID == req.SourcerIdentityID {
		s.logg.Info(s.logg.WithCandidateID(ctx, req.CandidateID.String()), "duplicate sourcing claim from current holder")
		return nil
	}

	requestedAt := req.SourcedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now()
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOwnershipConflictDetected,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   req.CandidateID,
			Data: payloads.OwnershipConflictDetectedEvent{
				CandidateID:          req.CandidateID,
				AssignmentID:         existing.ID,
				ExistingSourcerID:    existing.SourcerIdentityID,
				ExistingSourcedAt:    existing.SourcedAt,
				RequestedSourcerID:   req.SourcerIdentityID,
				RequestedSourcerType: req.SourcerType,
				RequestedAt:          requestedAt,
			},
		}); err != nil {
			return err
		}
		// The holding sourcer gets a heads-up that someone contested their
		// claim, for admin review.
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationRequested,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   req.CandidateID,
			Data: payloads.NotificationRequestedEvent{
				CandidateID:       req.CandidateID,
				RecipientIdentity: existing.SourcerIdentityID,
				Type:              "ownership_conflict",
				AssignmentID:      &existing.ID,
			},
		})
	})
	if err != nil {
		return err
	}

	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"candidate_id":        req.CandidateID.String(),
		"existing_sourcer_id": existing.SourcerIdentityID.String(),
		"requested_sourcer":   req.SourcerIdentityID.String(),
	}), "sourcing conflict detected")
	return nil
}

// UpdateParams carries mutable assignment fields. Nil fields are untouched.
type UpdateParams struct {
	ProtectionWindowDays *int
	PlacementFeeRate     *decimal.Decimal
	Notes                *string
	Actor                *outbox.ActorRef
}

// Update adjusts an existing assignment's protection window, fee rate or
// notes and announces the change. Ownership itself never changes here.
func (s *Service) Update(ctx context.Context, assignmentID uuid.UUID, params UpdateParams) (*models.SourcerAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sourcer assignment not found")
	}

	updates := map[string]any{}
	if params.ProtectionWindowDays != nil {
		if *params.ProtectionWindowDays <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "protection window must be positive")
		}
		assignment.ProtectionWindowDays = *params.ProtectionWindowDays
		assignment.ProtectionExpiresAt = assignment.SourcedAt.AddDate(0, 0, *params.ProtectionWindowDays)
		updates["protection_window_days"] = assignment.ProtectionWindowDays
		updates["protection_expires_at"] = assignment.ProtectionExpiresAt
	}
	if params.PlacementFeeRate != nil {
		if params.PlacementFeeRate.IsNegative() || params.PlacementFeeRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "placement fee rate must be between 0 and 1")
		}
		assignment.PlacementFeeRate = *params.PlacementFeeRate
		updates["placement_fee_rate"] = assignment.PlacementFeeRate
	}
	if params.Notes != nil {
		assignment.Notes = params.Notes
		updates["notes"] = assignment.Notes
	}
	if len(updates) == 0 {
		return assignment, nil
	}

	now := time.Now()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, assignment.ID, updates); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSourcerAssignmentUpdated,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   assignment.CandidateID,
			Actor:         params.Actor,
			Data: payloads.SourcerAssignmentUpdatedEvent{
				CandidateID:         assignment.CandidateID,
				AssignmentID:        assignment.ID,
				SourcerIdentityID:   assignment.SourcerIdentityID,
				ProtectionExpiresAt: assignment.ProtectionExpiresAt,
				PlacementFeeRate:    params.PlacementFeeRate,
				UpdatedAt:           now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Release removes the assignment, freeing the candidate to be claimed again.
func (s *Service) Release(ctx context.Context, assignmentID uuid.UUID, reason string, actor *outbox.ActorRef) error {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sourcer assignment not found")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, assignment.ID); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSourcerAssignmentReleased,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   assignment.CandidateID,
			Actor:         actor,
			Data: payloads.SourcerAssignmentReleasedEvent{
				CandidateID:       assignment.CandidateID,
				AssignmentID:      assignment.ID,
				SourcerIdentityID: assignment.SourcerIdentityID,
				ReleasedAt:        time.Now(),
				Reason:            reason,
			},
		})
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"candidate_id":  assignment.CandidateID.String(),
		"assignment_id": assignment.ID.String(),
	}), "sourcer assignment released")
	return nil
}

// ExpireProtection announces that the assignment's fee protection window has
// lapsed. The record keeps its sourcing credit and stays in place; only the
// event goes out, at most once per assignment.
func (s *Service) ExpireProtection(ctx context.Context, assignmentID uuid.UUID) error {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sourcer assignment not found")
	}
	if assignment.ProtectionExpiresAt.After(time.Now()) {
		return nil
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSourcerProtectionExpired,
			AggregateType: enums.AggregateSourcerAssignment,
			AggregateID:   assignment.ID,
			Data: payloads.SourcerProtectionExpiredEvent{
				CandidateID:         assignment.CandidateID,
				AssignmentID:        assignment.ID,
				SourcerIdentityID:   assignment.SourcerIdentityID,
				ProtectionExpiresAt: assignment.ProtectionExpiresAt,
			},
		})
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"candidate_id":  assignment.CandidateID.String(),
		"assignment_id": assignment.ID.String(),
	}), "sourcer protection window expired")
	return nil
}

// GetByCandidate returns the live assignment for a candidate, or a not
// found error when the candidate is unclaimed.
func (s *Service) GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.SourcerAssignment, error) {
	assignment, err := s.repo.FindByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sourcer assignment not found")
	}
	return assignment, nil
}

// GetByID returns the assignment, or a not found error when absent.
func (s *Service) GetByID(ctx context.Context, assignmentID uuid.UUID) (*models.SourcerAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sourcer assignment not found")
	}
	return assignment, nil
}

// ListBySourcer pages through the sourcer's assignments, newest first.
func (s *Service) ListBySourcer(ctx context.Context, sourcerIdentityID uuid.UUID, params pagination.Params) ([]models.SourcerAssignment, string, error) {
	if sourcerIdentityID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "sourcer_identity_id required")
	}
	return s.repo.ListBySourcer(ctx, sourcerIdentityID, params)
}
