package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hirelane/talentsync-backend/pkg/logger"
)

const (
	outboxRetentionDays = 30
	outboxDeleteBatch   = 500
)

type outboxRetentionRepo interface {
	DeletePublishedBefore(cutoff time.Time, limit int) (int64, error)
}

// OutboxRetentionJobParams configure the published outbox row sweeper.
type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	Repository outboxRetentionRepo
	Retention  int
	BatchSize  int
}

// NewOutboxRetentionJob builds the job that prunes published outbox rows
// older than the retention window. Unpublished and DLQ rows are untouched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = outboxDeleteBatch
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	repo      outboxRetentionRepo
	retention int
	batchSize int
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var total int64
	for {
		deleted, err := j.repo.DeletePublishedBefore(cutoff, j.batchSize)
		if err != nil {
			return fmt.Errorf("outbox retention: %w", err)
		}
		total += deleted
		if deleted < int64(j.batchSize) {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   total,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}
