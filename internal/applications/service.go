package applications

import (
	"context"
	"fmt"
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

// AI review lands applications here; a human confirms the submission.
const aiReviewTargetStage = enums.StageAIReviewed

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindByCandidateAndJob(ctx context.Context, candidateID, jobID uuid.UUID) (*models.Application, error)
	UpdateStageTx(tx *gorm.DB, id uuid.UUID, from, to enums.ApplicationStage, at time.Time) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams collects the application sync dependencies.
type ServiceParams struct {
	Repo    repository
	DB      txRunner
	Emitter eventEmitter
	Logger  *logger.Logger
}

// Service applies application-facing domain events to local state.
type Service struct {
	repo    repository
	db      txRunner
	emitter eventEmitter
	logg    *logger.Logger
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("applications repository required")
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
		db:      params.DB,
		emitter: params.Emitter,
		logg:    params.Logger,
	}, nil
}

// SyncStage mirrors a stage change announced by another service. This is a
// sync, not a command: when the local stage already matches the target the
// event is a duplicate and nothing happens. No chained event is published.
func (s *Service) SyncStage(ctx context.Context, event payloads.ApplicationStageChangedEvent) error {
	if !event.NewStage.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", event.NewStage))
	}

	application, err := s.findApplication(ctx, event.ApplicationID, event.CandidateID, event.JobID)
	if err != nil {
		return err
	}
	if application == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	if application.Stage == event.NewStage {
		return nil
	}

	changedAt := event.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.UpdateStageTx(tx, application.ID, application.Stage, event.NewStage, changedAt)
		return err
	})
}

// CompleteAIReview moves the application into the reviewed stage and, on a
// real transition, re-publishes the stage change so other services observe
// the same fact. Duplicate deliveries find the stage already set and publish
// nothing.
func (s *Service) CompleteAIReview(ctx context.Context, event payloads.AIReviewCompletedEvent) error {
	application, err := s.findApplication(ctx, event.ApplicationID, event.CandidateID, event.JobID)
	if err != nil {
		return err
	}
	if application == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	if application.Stage == aiReviewTargetStage {
		return nil
	}

	previousStage := application.Stage
	now := time.Now().UTC()

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		transitioned, err := s.repo.UpdateStageTx(tx, application.ID, previousStage, aiReviewTargetStage, now)
		if err != nil {
			return err
		}
		if !transitioned {
			return nil
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventApplicationStageChanged,
			AggregateType: enums.AggregateApplication,
			AggregateID:   application.ID,
			Data: payloads.ApplicationStageChangedEvent{
				ApplicationID: application.ID,
				CandidateID:   application.CandidateID,
				JobID:         application.JobID,
				OldStage:      previousStage,
				NewStage:      aiReviewTargetStage,
				ChangedAt:     now,
			},
		})
	})
}

func (s *Service) findApplication(ctx context.Context, id, candidateID, jobID uuid.UUID) (*models.Application, error) {
	if id != uuid.Nil {
		return s.repo.FindByID(ctx, id)
	}
	if candidateID != uuid.Nil && jobID != uuid.Nil {
		return s.repo.FindByCandidateAndJob(ctx, candidateID, jobID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "application reference is required")
}
