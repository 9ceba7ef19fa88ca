package candidates

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/internal/users"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/payloads"
)

var _ userFinder = (*users.Repository)(nil)

type fakeCandidateRepo struct {
	candidates map[uuid.UUID]*models.Candidate
	resumes    map[uuid.UUID]*models.ResumeDocument

	linkedUser      map[uuid.UUID]uuid.UUID
	extractedFields map[uuid.UUID]map[string]any
	resumeMarkedAt  map[uuid.UUID]time.Time
}

func newFakeCandidateRepo() *fakeCandidateRepo {
	return &fakeCandidateRepo{
		candidates:      map[uuid.UUID]*models.Candidate{},
		resumes:         map[uuid.UUID]*models.ResumeDocument{},
		linkedUser:      map[uuid.UUID]uuid.UUID{},
		extractedFields: map[uuid.UUID]map[string]any{},
		resumeMarkedAt:  map[uuid.UUID]time.Time{},
	}
}

func (f *fakeCandidateRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Candidate, error) {
	return f.candidates[id], nil
}

func (f *fakeCandidateRepo) FindResumeByID(_ context.Context, id uuid.UUID) (*models.ResumeDocument, error) {
	return f.resumes[id], nil
}

func (f *fakeCandidateRepo) LinkUserTx(_ *gorm.DB, candidateID, userID uuid.UUID) error {
	f.linkedUser[candidateID] = userID
	return nil
}

func (f *fakeCandidateRepo) UpdateExtractedFieldsTx(_ *gorm.DB, candidateID uuid.UUID, fields map[string]any) error {
	f.extractedFields[candidateID] = fields
	return nil
}

func (f *fakeCandidateRepo) MarkResumeExtractedTx(_ *gorm.DB, resumeID uuid.UUID, at time.Time) error {
	f.resumeMarkedAt[resumeID] = at
	return nil
}

type fakeUserFinder struct {
	byIdentity map[string]*models.User
}

func (f *fakeUserFinder) FindUserByExternalIdentity(_ context.Context, externalIdentityID string) (*models.User, error) {
	return f.byIdentity[externalIdentityID], nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type candidatesFixture struct {
	service *Service
	repo    *fakeCandidateRepo
	users   *fakeUserFinder
	emitter *fakeEmitter
}

func newCandidatesFixture(t *testing.T) *candidatesFixture {
	t.Helper()
	repo := newFakeCandidateRepo()
	users := &fakeUserFinder{byIdentity: map[string]*models.User{}}
	emitter := &fakeEmitter{}

	service, err := NewService(ServiceParams{
		Repo:    repo,
		Users:   users,
		DB:      fakeTxRunner{},
		Emitter: emitter,
		Logger:  logger.New(logger.Options{ServiceName: "candidates-test", Output: io.Discard}),
	})
	require.NoError(t, err)

	return &candidatesFixture{service: service, repo: repo, users: users, emitter: emitter}
}

func TestLinkIdentityLinksAndEmits(t *testing.T) {
	fx := newCandidatesFixture(t)
	candidateID := uuid.New()
	userID := uuid.New()
	fx.repo.candidates[candidateID] = &models.Candidate{ID: candidateID}
	fx.users.byIdentity["auth0|abc123"] = &models.User{ID: userID}

	err := fx.service.LinkIdentity(context.Background(), payloads.CandidateLinkRequestedEvent{
		CandidateID:        candidateID,
		ExternalIdentityID: "auth0|abc123",
	})
	require.NoError(t, err)
	require.Equal(t, userID, fx.repo.linkedUser[candidateID])

	require.Len(t, fx.emitter.events, 1)
	event := fx.emitter.events[0]
	require.Equal(t, enums.EventCandidateIdentityLinked, event.EventType)
	payload, ok := event.Data.(payloads.CandidateIdentityLinkedEvent)
	require.True(t, ok)
	require.Equal(t, userID, payload.UserID)
	require.Equal(t, "auth0|abc123", payload.ExternalIdentityID)
}

func TestLinkIdentityAlreadyLinkedIsNoOp(t *testing.T) {
	fx := newCandidatesFixture(t)
	candidateID := uuid.New()
	userID := uuid.New()
	fx.repo.candidates[candidateID] = &models.Candidate{ID: candidateID, UserID: &userID}
	fx.users.byIdentity["auth0|abc123"] = &models.User{ID: userID}

	err := fx.service.LinkIdentity(context.Background(), payloads.CandidateLinkRequestedEvent{
		CandidateID:        candidateID,
		ExternalIdentityID: "auth0|abc123",
	})
	require.NoError(t, err)
	require.Empty(t, fx.repo.linkedUser)
	require.Empty(t, fx.emitter.events)
}

func TestLinkIdentityUnknownUserFails(t *testing.T) {
	fx := newCandidatesFixture(t)
	candidateID := uuid.New()
	fx.repo.candidates[candidateID] = &models.Candidate{ID: candidateID}

	// No user mapping yet: the event must fail so the consumer requeues it
	// and retries after the identity sync lands.
	err := fx.service.LinkIdentity(context.Background(), payloads.CandidateLinkRequestedEvent{
		CandidateID:        candidateID,
		ExternalIdentityID: "auth0|missing",
	})
	resolved := pkgerrors.As(err)
	require.NotNil(t, resolved)
	require.Equal(t, pkgerrors.CodeNotFound, resolved.Code())
	require.Empty(t, fx.emitter.events)
}

func TestLinkIdentityRequiresExternalIdentity(t *testing.T) {
	fx := newCandidatesFixture(t)

	err := fx.service.LinkIdentity(context.Background(), payloads.CandidateLinkRequestedEvent{
		CandidateID: uuid.New(),
	})
	resolved := pkgerrors.As(err)
	require.NotNil(t, resolved)
	require.Equal(t, pkgerrors.CodeValidation, resolved.Code())
}

func TestSyncResumeMetadataAppliesPrimaryResume(t *testing.T) {
	fx := newCandidatesFixture(t)
	candidateID := uuid.New()
	resumeID := uuid.New()
	fx.repo.candidates[candidateID] = &models.Candidate{ID: candidateID, PrimaryResumeID: &resumeID}
	years := 7
	extractedAt := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)

	err := fx.service.SyncResumeMetadata(context.Background(), payloads.ResumeMetadataExtractedEvent{
		ResumeID:        resumeID,
		CandidateID:     candidateID,
		Headline:        "Staff Engineer",
		Location:        "Denver, CO",
		Skills:          []string{"go", "postgres"},
		YearsExperience: &years,
		ExtractedAt:     extractedAt,
	})
	require.NoError(t, err)

	fields := fx.repo.extractedFields[candidateID]
	require.Equal(t, "Staff Engineer", fields["headline"])
	require.Equal(t, "Denver, CO", fields["location"])
	require.Equal(t, "go,postgres", fields["skills_csv"])
	require.Equal(t, 7, fields["years_experience"])
	require.Equal(t, extractedAt, fx.repo.resumeMarkedAt[resumeID])
}

func TestSyncResumeMetadataIgnoresNonPrimaryResume(t *testing.T) {
	fx := newCandidatesFixture(t)
	candidateID := uuid.New()
	primaryID := uuid.New()
	fx.repo.candidates[candidateID] = &models.Candidate{ID: candidateID, PrimaryResumeID: &primaryID}

	err := fx.service.SyncResumeMetadata(context.Background(), payloads.ResumeMetadataExtractedEvent{
		ResumeID:    uuid.New(),
		CandidateID: candidateID,
		Headline:    "stale extraction",
	})
	require.NoError(t, err)
	require.Empty(t, fx.repo.extractedFields)
	require.Empty(t, fx.repo.resumeMarkedAt)
}

func TestSyncResumeMetadataUnknownCandidateSwallowed(t *testing.T) {
	fx := newCandidatesFixture(t)

	err := fx.service.SyncResumeMetadata(context.Background(), payloads.ResumeMetadataExtractedEvent{
		ResumeID:    uuid.New(),
		CandidateID: uuid.New(),
	})
	require.NoError(t, err)
	require.Empty(t, fx.repo.extractedFields)
}
