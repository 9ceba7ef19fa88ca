package domain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/idempotency"
	"github.com/hirelane/talentsync-backend/pkg/outbox/payloads"
)

type stubStore struct {
	values   map[string]string
	setNXErr error
	deleted  []string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if s.setNXErr != nil {
		return false, s.setNXErr
	}
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return "ts:idempotency:" + scope + ":" + id
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

type stubApplications struct {
	stageEvents  []payloads.ApplicationStageChangedEvent
	reviewEvents []payloads.AIReviewCompletedEvent
	stageErr     error
}

func (s *stubApplications) SyncStage(_ context.Context, event payloads.ApplicationStageChangedEvent) error {
	if s.stageErr != nil {
		return s.stageErr
	}
	s.stageEvents = append(s.stageEvents, event)
	return nil
}

func (s *stubApplications) CompleteAIReview(_ context.Context, event payloads.AIReviewCompletedEvent) error {
	s.reviewEvents = append(s.reviewEvents, event)
	return nil
}

type stubCandidates struct {
	linkEvents   []payloads.CandidateLinkRequestedEvent
	resumeEvents []payloads.ResumeMetadataExtractedEvent
	linkErr      error
	resumeErr    error
}

func (s *stubCandidates) LinkIdentity(_ context.Context, event payloads.CandidateLinkRequestedEvent) error {
	if s.linkErr != nil {
		return s.linkErr
	}
	s.linkEvents = append(s.linkEvents, event)
	return nil
}

func (s *stubCandidates) SyncResumeMetadata(_ context.Context, event payloads.ResumeMetadataExtractedEvent) error {
	if s.resumeErr != nil {
		return s.resumeErr
	}
	s.resumeEvents = append(s.resumeEvents, event)
	return nil
}

type stubSourcing struct {
	requests []payloads.SourcerAssignmentRequestedEvent
	err      error
}

func (s *stubSourcing) RequestAssignment(_ context.Context, event payloads.SourcerAssignmentRequestedEvent) error {
	if s.err != nil {
		return s.err
	}
	s.requests = append(s.requests, event)
	return nil
}

type consumerFixture struct {
	consumer     *Consumer
	store        *stubStore
	applications *stubApplications
	candidates   *stubCandidates
	sourcing     *stubSourcing
}

func newConsumerFixture(t *testing.T) *consumerFixture {
	t.Helper()
	store := newStubStore()
	manager, err := idempotency.NewManager(store, time.Hour)
	require.NoError(t, err)

	applications := &stubApplications{}
	candidates := &stubCandidates{}
	sourcingStub := &stubSourcing{}

	consumer, err := NewConsumer(ConsumerParams{
		Subscription: &pubsub.Subscriber{},
		Idempotency:  manager,
		Applications: applications,
		Candidates:   candidates,
		Sourcing:     sourcingStub,
		Logger:       logger.New(logger.Options{ServiceName: "domain-consumer-test", Output: io.Discard}),
	})
	require.NoError(t, err)

	return &consumerFixture{
		consumer:     consumer,
		store:        store,
		applications: applications,
		candidates:   candidates,
		sourcing:     sourcingStub,
	}
}

func buildMessage(t *testing.T, eventType enums.OutboxEventType, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Attributes: map[string]string{"event_type": string(eventType)},
		Data:       envelope,
	}
}

func TestProcessDispatchesStageChanged(t *testing.T) {
	fx := newConsumerFixture(t)
	msg := buildMessage(t, enums.EventApplicationStageChanged, payloads.ApplicationStageChangedEvent{
		ApplicationID: uuid.New(),
		NewStage:      enums.StageScreen,
	})

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.False(t, result.nack)
	require.Len(t, fx.applications.stageEvents, 1)
	require.Equal(t, enums.StageScreen, fx.applications.stageEvents[0].NewStage)
}

func TestProcessDispatchesSourcingRequest(t *testing.T) {
	fx := newConsumerFixture(t)
	candidateID := uuid.New()
	msg := buildMessage(t, enums.EventSourcerAssignmentRequested, payloads.SourcerAssignmentRequestedEvent{
		CandidateID:       candidateID,
		SourcerIdentityID: uuid.New(),
		SourcerType:       enums.SourcerTypeRecruiter,
	})

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.Len(t, fx.sourcing.requests, 1)
	require.Equal(t, candidateID, fx.sourcing.requests[0].CandidateID)
}

func TestProcessSkipsUnconsumedEvent(t *testing.T) {
	fx := newConsumerFixture(t)
	msg := buildMessage(t, enums.EventCandidateSourced, payloads.CandidateSourcedEvent{})

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.Empty(t, fx.applications.stageEvents)
	require.Empty(t, fx.sourcing.requests)
	require.Empty(t, fx.store.values)
}

func TestProcessDeduplicatesByEventID(t *testing.T) {
	fx := newConsumerFixture(t)
	msg := buildMessage(t, enums.EventCandidateLinkRequested, payloads.CandidateLinkRequestedEvent{
		CandidateID:        uuid.New(),
		ExternalIdentityID: "auth0|abc",
	})

	first := fx.consumer.process(context.Background(), msg)
	second := fx.consumer.process(context.Background(), msg)
	require.True(t, first.ack)
	require.True(t, second.ack)
	require.Len(t, fx.candidates.linkEvents, 1)
}

func TestProcessNacksAndReleasesMarkerOnHandlerFailure(t *testing.T) {
	fx := newConsumerFixture(t)
	fx.candidates.linkErr = pkgerrors.New(pkgerrors.CodeNotFound, "no user for identity")
	msg := buildMessage(t, enums.EventCandidateLinkRequested, payloads.CandidateLinkRequestedEvent{
		CandidateID:        uuid.New(),
		ExternalIdentityID: "auth0|early",
	})

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.nack)

	// The marker must be gone so the redelivery gets a fresh attempt.
	require.Empty(t, fx.store.values)
	require.Len(t, fx.store.deleted, 1)

	fx.candidates.linkErr = nil
	retry := fx.consumer.process(context.Background(), msg)
	require.True(t, retry.ack)
	require.Len(t, fx.candidates.linkEvents, 1)
}

func TestProcessResumeFailureAcksWithoutRetry(t *testing.T) {
	fx := newConsumerFixture(t)
	fx.candidates.resumeErr = errors.New("column does not exist")
	msg := buildMessage(t, enums.EventResumeMetadataExtracted, payloads.ResumeMetadataExtractedEvent{
		ResumeID:    uuid.New(),
		CandidateID: uuid.New(),
	})

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.False(t, result.nack)
}

func TestProcessNacksWhenIdempotencyStoreDown(t *testing.T) {
	fx := newConsumerFixture(t)
	fx.store.setNXErr = errors.New("connection refused")
	msg := buildMessage(t, enums.EventAIReviewCompleted, payloads.AIReviewCompletedEvent{
		ApplicationID: uuid.New(),
	})

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.nack)
	require.Empty(t, fx.applications.reviewEvents)
}

func TestProcessAcksMalformedEnvelope(t *testing.T) {
	fx := newConsumerFixture(t)
	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Attributes: map[string]string{"event_type": string(enums.EventApplicationStageChanged)},
		Data:       []byte("not json"),
	}

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.Empty(t, fx.applications.stageEvents)
}

func TestProcessAcksInvalidEventID(t *testing.T) {
	fx := newConsumerFixture(t)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: "not-a-uuid"})
	require.NoError(t, err)
	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Attributes: map[string]string{"event_type": string(enums.EventApplicationStageChanged)},
		Data:       envelope,
	}

	result := fx.consumer.process(context.Background(), msg)
	require.True(t, result.ack)
}
