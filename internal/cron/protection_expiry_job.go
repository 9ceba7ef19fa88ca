package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

const expiredAssignmentBatch = 100

type expiredAssignmentReader interface {
	FindExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.SourcerAssignment, error)
}

type protectionExpirer interface {
	ExpireProtection(ctx context.Context, assignmentID uuid.UUID) error
}

// ProtectionExpiryJobParams configure the expired protection window sweeper.
type ProtectionExpiryJobParams struct {
	Logger    *logger.Logger
	Reader    expiredAssignmentReader
	Expirer   protectionExpirer
	BatchSize int
}

// NewProtectionExpiryJob builds the job that announces lapsed protection
// windows. Assignments are never deleted here; sourcing credit persists
// until a platform admin removes the record.
func NewProtectionExpiryJob(params ProtectionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("assignment reader required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("protection expirer required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = expiredAssignmentBatch
	}
	return &protectionExpiryJob{
		logg:      params.Logger,
		reader:    params.Reader,
		expirer:   params.Expirer,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type protectionExpiryJob struct {
	logg      *logger.Logger
	reader    expiredAssignmentReader
	expirer   protectionExpirer
	batchSize int
	now       func() time.Time
}

func (j *protectionExpiryJob) Name() string { return "protection-expiry" }

func (j *protectionExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	expired, err := j.reader.FindExpiredBefore(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query expired assignments: %w", err)
	}

	var errs []error
	announced := 0
	for _, assignment := range expired {
		if err := j.expirer.ExpireProtection(ctx, assignment.ID); err != nil {
			errs = append(errs, fmt.Errorf("expire assignment %s: %w", assignment.ID, err))
			continue
		}
		announced++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"expired":   len(expired),
		"announced": announced,
	})
	j.logg.Info(logCtx, "protection expiry sweep complete")
	return multierr.Combine(errs...)
}
