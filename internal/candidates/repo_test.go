package candidates

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/internal/access"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/pagination"
)

func setupCandidatesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	candidates := `
CREATE TABLE IF NOT EXISTS candidates (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  owner_recruiter_id TEXT,
  organization_id TEXT,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  headline TEXT,
  location TEXT,
  skills_csv TEXT,
  years_experience INTEGER,
  primary_resume_id TEXT,
  sourced_by_identity_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(candidates).Error)

	return db
}

func createCandidate(t *testing.T, db *gorm.DB, owner, org *uuid.UUID, created time.Time) *models.Candidate {
	t.Helper()

	candidate := &models.Candidate{
		ID:               uuid.New(),
		OwnerRecruiterID: owner,
		OrganizationID:   org,
		Email:            fmt.Sprintf("%s@example.com", uuid.NewString()),
		FirstName:        "Jordan",
		LastName:         "Yee",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	require.NoError(t, db.Create(candidate).Error)
	return candidate
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupCandidatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	candidate := createCandidate(t, db, nil, nil, created)

	found, err := repo.FindByID(ctx, candidate.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, candidate.Email, found.Email)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryUpdateSourcedBy(t *testing.T) {
	db := setupCandidatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)
	candidate := createCandidate(t, db, nil, nil, created)
	sourcerID := uuid.New()

	require.NoError(t, repo.UpdateSourcedBy(ctx, candidate.ID, sourcerID))

	updated, err := repo.FindByID(ctx, candidate.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.SourcedByIdentityID)
	assert.Equal(t, sourcerID, *updated.SourcedByIdentityID)
}

func TestRepositoryListScoped(t *testing.T) {
	db := setupCandidatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recruiterID := uuid.New()
	orgID := uuid.New()
	base := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)

	owned := createCandidate(t, db, &recruiterID, nil, base)
	inOrg := createCandidate(t, db, nil, &orgID, base.Add(time.Hour))
	self := createCandidate(t, db, nil, nil, base.Add(2*time.Hour))
	outside := createCandidate(t, db, nil, nil, base.Add(3*time.Hour))

	t.Run("recruiter sees owned and organization candidates", func(t *testing.T) {
		accessCtx := access.Context{
			IdentityUserID:  uuid.New(),
			RecruiterID:     &recruiterID,
			OrganizationIDs: []uuid.UUID{orgID},
		}

		rows, next, err := repo.ListScoped(ctx, accessCtx, pagination.Params{})
		require.NoError(t, err)
		assert.Empty(t, next)
		require.Len(t, rows, 2)
		assert.Equal(t, inOrg.ID, rows[0].ID)
		assert.Equal(t, owned.ID, rows[1].ID)
	})

	t.Run("candidate sees only their own record", func(t *testing.T) {
		accessCtx := access.Context{
			IdentityUserID: uuid.New(),
			CandidateID:    &self.ID,
		}

		rows, _, err := repo.ListScoped(ctx, accessCtx, pagination.Params{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, self.ID, rows[0].ID)
	})

	t.Run("empty scope returns nothing", func(t *testing.T) {
		rows, next, err := repo.ListScoped(ctx, access.Context{IdentityUserID: uuid.New()}, pagination.Params{})
		require.NoError(t, err)
		assert.Empty(t, next)
		assert.Empty(t, rows)
	})

	t.Run("platform admin sees every candidate", func(t *testing.T) {
		accessCtx := access.Context{IdentityUserID: uuid.New(), IsPlatformAdmin: true}

		rows, _, err := repo.ListScoped(ctx, accessCtx, pagination.Params{Limit: pagination.MaxLimit})
		require.NoError(t, err)
		ids := make(map[uuid.UUID]bool, len(rows))
		for _, row := range rows {
			ids[row.ID] = true
		}
		assert.True(t, ids[owned.ID])
		assert.True(t, ids[inOrg.ID])
		assert.True(t, ids[self.ID])
		assert.True(t, ids[outside.ID])
	})
}

func TestRepositoryListScopedPagination(t *testing.T) {
	db := setupCandidatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recruiterID := uuid.New()
	base := time.Date(2026, 1, 13, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		createCandidate(t, db, &recruiterID, nil, base.Add(time.Duration(i)*time.Minute))
	}

	accessCtx := access.Context{IdentityUserID: uuid.New(), RecruiterID: &recruiterID}

	first, cursor, err := repo.ListScoped(ctx, accessCtx, pagination.Params{Limit: 5})
	require.NoError(t, err)
	require.Len(t, first, 5)
	require.NotEmpty(t, cursor)

	second, next, err := repo.ListScoped(ctx, accessCtx, pagination.Params{Limit: 5, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Empty(t, next)
	assert.True(t, second[0].CreatedAt.Before(first[len(first)-1].CreatedAt))
}
