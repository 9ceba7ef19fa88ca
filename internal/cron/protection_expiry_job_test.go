package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

type fakeExpiredReader struct {
	assignments []models.SourcerAssignment
	err         error
	lastCutoff  time.Time
}

func (f *fakeExpiredReader) FindExpiredBefore(_ context.Context, cutoff time.Time, _ int) ([]models.SourcerAssignment, error) {
	f.lastCutoff = cutoff
	return f.assignments, f.err
}

type fakeExpirer struct {
	expired []uuid.UUID
	failFor map[uuid.UUID]error
}

func (f *fakeExpirer) ExpireProtection(_ context.Context, assignmentID uuid.UUID) error {
	if err, ok := f.failFor[assignmentID]; ok {
		return err
	}
	f.expired = append(f.expired, assignmentID)
	return nil
}

func newProtectionExpiryJob(t *testing.T, reader *fakeExpiredReader, expirer *fakeExpirer) *protectionExpiryJob {
	t.Helper()
	jobIface, err := NewProtectionExpiryJob(ProtectionExpiryJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Reader:  reader,
		Expirer: expirer,
	})
	if err != nil {
		t.Fatalf("NewProtectionExpiryJob: %v", err)
	}
	job, ok := jobIface.(*protectionExpiryJob)
	if !ok {
		t.Fatalf("expected protectionExpiryJob, got %T", jobIface)
	}
	return job
}

func TestProtectionExpiryJobAnnouncesExpired(t *testing.T) {
	first := models.SourcerAssignment{ID: uuid.New()}
	second := models.SourcerAssignment{ID: uuid.New()}
	reader := &fakeExpiredReader{assignments: []models.SourcerAssignment{first, second}}
	expirer := &fakeExpirer{}
	job := newProtectionExpiryJob(t, reader, expirer)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(expirer.expired) != 2 {
		t.Fatalf("expected 2 expiries, got %d", len(expirer.expired))
	}
}

func TestProtectionExpiryJobContinuesAfterFailure(t *testing.T) {
	failing := models.SourcerAssignment{ID: uuid.New()}
	healthy := models.SourcerAssignment{ID: uuid.New()}
	reader := &fakeExpiredReader{assignments: []models.SourcerAssignment{failing, healthy}}
	expirer := &fakeExpirer{failFor: map[uuid.UUID]error{failing.ID: errors.New("deadlock")}}
	job := newProtectionExpiryJob(t, reader, expirer)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(expirer.expired) != 1 || expirer.expired[0] != healthy.ID {
		t.Fatalf("expected healthy assignment announced, got %v", expirer.expired)
	}
}

func TestProtectionExpiryJobEmptySweep(t *testing.T) {
	reader := &fakeExpiredReader{}
	expirer := &fakeExpirer{}
	job := newProtectionExpiryJob(t, reader, expirer)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(expirer.expired) != 0 {
		t.Fatalf("expected no expiries, got %d", len(expirer.expired))
	}
}
