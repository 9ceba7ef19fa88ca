package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
)

const sqliteUUIDDefault = `(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || substr(lower(hex(randomblob(2))),2) || '-a' || substr(lower(hex(randomblob(2))),2) || '-' || lower(hex(randomblob(6))))`

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY DEFAULT ` + sqliteUUIDDefault + `,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	outboxDLQ := `
CREATE TABLE IF NOT EXISTS outbox_dlqs (
  id TEXT PRIMARY KEY DEFAULT ` + sqliteUUIDDefault + `,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(outboxEvents).Error)
	require.NoError(t, db.Exec(outboxDLQ).Error)
	return db
}

func testDomainEvent(aggregateID uuid.UUID) DomainEvent {
	return DomainEvent{
		EventType:     enums.EventCandidateSourced,
		AggregateType: enums.AggregateSourcerAssignment,
		AggregateID:   aggregateID,
		Data:          map[string]string{"sourcer_type": "recruiter"},
	}
}

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	aggregateID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, testDomainEvent(aggregateID))
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventCandidateSourced, rows[0].EventType)
	require.Equal(t, aggregateID, rows[0].AggregateID)
	require.Nil(t, rows[0].PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.False(t, envelope.OccurredAt.IsZero())

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, "recruiter", data["sourcer_type"])
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, testDomainEvent(uuid.New())); err != nil {
			return err
		}
		return errors.New("business mutation failed")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEmitRequiresTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	require.Error(t, svc.Emit(context.Background(), nil, testDomainEvent(uuid.New())))
}

func TestEmitIfNotExistsSkipsQueuedDuplicate(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	aggregateID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.EmitIfNotExists(context.Background(), tx, testDomainEvent(aggregateID)); err != nil {
			return err
		}
		return svc.EmitIfNotExists(context.Background(), tx, testDomainEvent(aggregateID))
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEmitIfNotExistsAllowsNewAggregate(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.EmitIfNotExists(context.Background(), tx, testDomainEvent(uuid.New())); err != nil {
			return err
		}
		return svc.EmitIfNotExists(context.Background(), tx, testDomainEvent(uuid.New()))
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestFetchUnpublishedOrdersOldestFirst(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	first := insertOutboxRow(t, db, time.Now().Add(-2*time.Minute), nil)
	published := time.Now()
	insertOutboxRow(t, db, time.Now().Add(-3*time.Minute), &published)
	second := insertOutboxRow(t, db, time.Now().Add(-1*time.Minute), nil)

	rows, err := repo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, first, rows[0].ID)
	require.Equal(t, second, rows[1].ID)
}

func TestMarkPublishedStopsPolling(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	id := insertOutboxRow(t, db, time.Now(), nil)
	require.NoError(t, repo.MarkPublished(id))

	rows, err := repo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	id := insertOutboxRow(t, db, time.Now(), nil)
	require.NoError(t, repo.MarkFailed(id, errors.New("publish timeout")))
	require.NoError(t, repo.MarkFailed(id, errors.New("publish timeout")))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", id).Error)
	require.Equal(t, 2, row.AttemptCount)
	require.NotNil(t, row.LastError)
	require.Equal(t, "publish timeout", *row.LastError)
	require.Nil(t, row.PublishedAt)
}

func TestMarkTerminalTxStampsPublishedAt(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	id := insertOutboxRow(t, db, time.Now(), nil)
	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkTerminalTx(tx, id, errors.New("max attempts reached"))
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", id).Error)
	require.NotNil(t, row.PublishedAt)
	require.NotNil(t, row.LastError)

	rows, fetchErr := repo.FetchUnpublished(10)
	require.NoError(t, fetchErr)
	require.Empty(t, rows)
}

func TestDeletePublishedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	insertOutboxRow(t, db, old, &old)
	keepID := insertOutboxRow(t, db, recent, &recent)
	unpublishedID := insertOutboxRow(t, db, old, nil)

	deleted, err := repo.DeletePublishedBefore(time.Now().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	require.Contains(t, ids, keepID)
	require.Contains(t, ids, unpublishedID)
}

func TestDLQInsertTruncatesLongErrors(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewDLQRepository(db)

	long := make([]byte, maxDLQErrorLen+100)
	for i := range long {
		long[i] = 'x'
	}
	msg := string(long)
	eventID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, models.OutboxDLQ{
			EventID:       eventID,
			EventType:     enums.EventCandidateSourced,
			AggregateType: enums.AggregateSourcerAssignment,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			ErrorMessage:  &msg,
			AttemptCount:  10,
		})
	})
	require.NoError(t, err)

	entry, err := repo.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.NotNil(t, entry.ErrorMessage)
	require.Len(t, *entry.ErrorMessage, maxDLQErrorLen)
}

func TestDLQFindByEventIDMissing(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewDLQRepository(db)

	entry, err := repo.FindByEventID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, entry)
}

func insertOutboxRow(t *testing.T, db *gorm.DB, createdAt time.Time, publishedAt *time.Time) uuid.UUID {
	t.Helper()
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventCandidateSourced,
		AggregateType: enums.AggregateSourcerAssignment,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1,"eventId":"x","data":{}}`),
		CreatedAt:     createdAt,
		PublishedAt:   publishedAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row.ID
}
