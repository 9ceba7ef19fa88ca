package candidates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/payloads"
)

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	FindResumeByID(ctx context.Context, id uuid.UUID) (*models.ResumeDocument, error)
	LinkUserTx(tx *gorm.DB, candidateID, userID uuid.UUID) error
	UpdateExtractedFieldsTx(tx *gorm.DB, candidateID uuid.UUID, fields map[string]any) error
	MarkResumeExtractedTx(tx *gorm.DB, resumeID uuid.UUID, at time.Time) error
}

type userFinder interface {
	FindUserByExternalIdentity(ctx context.Context, externalIdentityID string) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams collects the candidate sync dependencies.
type ServiceParams struct {
	Repo    repository
	Users   userFinder
	DB      txRunner
	Emitter eventEmitter
	Logger  *logger.Logger
}

// Service applies candidate-facing domain events to local state.
type Service struct {
	repo    repository
	users   userFinder
	db      txRunner
	emitter eventEmitter
	logg    *logger.Logger
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("candidates repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
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
	return &Service{
		repo:    params.Repo,
		users:   params.Users,
		db:      params.DB,
		emitter: params.Emitter,
		logg:    params.Logger,
	}, nil
}

// LinkIdentity resolves the external identity to an internal user and links
// the candidate to it. A missing identity mapping is an error: the caller
// must requeue, because a silent no-op would leave the candidate unlinked
// forever.
func (s *Service) LinkIdentity(ctx context.Context, event payloads.CandidateLinkRequestedEvent) error {
	if strings.TrimSpace(event.ExternalIdentityID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "external identity is required")
	}

	user, err := s.users.FindUserByExternalIdentity(ctx, event.ExternalIdentityID)
	if err != nil {
		return err
	}
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no user for identity %s", event.ExternalIdentityID))
	}

	candidate, err := s.repo.FindByID(ctx, event.CandidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
	}
	if candidate.UserID != nil && *candidate.UserID == user.ID {
		// Already linked; re-delivery is a no-op.
		return nil
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.LinkUserTx(tx, candidate.ID, user.ID); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCandidateIdentityLinked,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   candidate.ID,
			Data: payloads.CandidateIdentityLinkedEvent{
				CandidateID:        candidate.ID,
				UserID:             user.ID,
				ExternalIdentityID: event.ExternalIdentityID,
				LinkedAt:           time.Now().UTC(),
			},
		})
	})
}

// SyncResumeMetadata copies extracted resume fields onto the candidate, but
// only while the document is still that candidate's primary resume. Stale
// extractions are dropped without error.
func (s *Service) SyncResumeMetadata(ctx context.Context, event payloads.ResumeMetadataExtractedEvent) error {
	candidate, err := s.repo.FindByID(ctx, event.CandidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		s.logg.Warn(s.logg.WithCandidateID(ctx, event.CandidateID.String()), "resume metadata for unknown candidate dropped")
		return nil
	}
	if candidate.PrimaryResumeID == nil || *candidate.PrimaryResumeID != event.ResumeID {
		return nil
	}

	fields := map[string]any{}
	if event.Headline != "" {
		fields["headline"] = event.Headline
	}
	if event.Location != "" {
		fields["location"] = event.Location
	}
	if len(event.Skills) > 0 {
		fields["skills_csv"] = strings.Join(event.Skills, ",")
	}
	if event.YearsExperience != nil {
		fields["years_experience"] = *event.YearsExperience
	}

	extractedAt := event.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Now().UTC()
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateExtractedFieldsTx(tx, candidate.ID, fields); err != nil {
			return err
		}
		return s.repo.MarkResumeExtractedTx(tx, event.ResumeID, extractedAt)
	})
}
