package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
)

func setupAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  external_identity_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE org_memberships (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE recruiters (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  organization_id TEXT,
  display_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE candidates (
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
);`,
		`CREATE TABLE applications (
  id TEXT PRIMARY KEY,
  candidate_id TEXT NOT NULL,
  job_id TEXT NOT NULL,
  stage TEXT NOT NULL,
  stage_updated_at DATETIME NOT NULL,
  recruiter_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newAccessService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func createUser(t *testing.T, db *gorm.DB, externalID string, role enums.PlatformRole, active bool) models.User {
	t.Helper()
	user := models.User{
		ID:                 uuid.New(),
		ExternalIdentityID: externalID,
		Email:              externalID + "@example.com",
		FirstName:          "Test",
		LastName:           "User",
		Role:               role,
		IsActive:           active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestResolveUnknownIdentityReturnsNotFound(t *testing.T) {
	db := setupAccessTestDB(t)
	svc := newAccessService(t, db)

	_, err := svc.Resolve(context.Background(), "auth0|missing")
	require.Error(t, err)
	resolved := pkgerrors.As(err)
	require.NotNil(t, resolved)
	require.Equal(t, pkgerrors.CodeNotFound, resolved.Code())
}

func TestResolveEmptyIdentityRejected(t *testing.T) {
	db := setupAccessTestDB(t)
	svc := newAccessService(t, db)

	_, err := svc.Resolve(context.Background(), "  ")
	require.Error(t, err)
	resolved := pkgerrors.As(err)
	require.NotNil(t, resolved)
	require.Equal(t, pkgerrors.CodeValidation, resolved.Code())
}

func TestResolveDeactivatedUserForbidden(t *testing.T) {
	db := setupAccessTestDB(t)
	svc := newAccessService(t, db)
	createUser(t, db, "auth0|frozen", enums.RoleRecruiter, false)

	_, err := svc.Resolve(context.Background(), "auth0|frozen")
	require.Error(t, err)
	resolved := pkgerrors.As(err)
	require.NotNil(t, resolved)
	require.Equal(t, pkgerrors.CodeForbidden, resolved.Code())
}

func TestResolveRecruiterContext(t *testing.T) {
	db := setupAccessTestDB(t)
	svc := newAccessService(t, db)
	user := createUser(t, db, "auth0|rec", enums.RoleRecruiter, true)

	orgID := uuid.New()
	require.NoError(t, db.Create(&models.OrgMembership{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         user.ID,
		Role:           enums.RoleOrgAdmin,
	}).Error)

	recruiter := models.Recruiter{
		ID:          uuid.New(),
		UserID:      user.ID,
		DisplayName: "Recruiter",
		IsActive:    true,
	}
	require.NoError(t, db.Create(&recruiter).Error)

	accessCtx, err := svc.Resolve(context.Background(), "auth0|rec")
	require.NoError(t, err)
	require.Equal(t, user.ID, accessCtx.IdentityUserID)
	require.False(t, accessCtx.IsPlatformAdmin)
	require.NotNil(t, accessCtx.RecruiterID)
	require.Equal(t, recruiter.ID, *accessCtx.RecruiterID)
	require.Nil(t, accessCtx.CandidateID)
	require.Equal(t, []uuid.UUID{orgID}, accessCtx.OrganizationIDs)
	require.True(t, accessCtx.HasRole(enums.RoleRecruiter))
	require.True(t, accessCtx.HasRole(enums.RoleOrgAdmin))
	require.True(t, accessCtx.InOrganization(orgID))
	require.False(t, accessCtx.InOrganization(uuid.New()))
}

func TestResolvePlatformAdmin(t *testing.T) {
	db := setupAccessTestDB(t)
	svc := newAccessService(t, db)
	createUser(t, db, "auth0|admin", enums.RolePlatformAdmin, true)

	accessCtx, err := svc.Resolve(context.Background(), "auth0|admin")
	require.NoError(t, err)
	require.True(t, accessCtx.IsPlatformAdmin)
}

func TestResolveCandidateContext(t *testing.T) {
	db := setupAccessTestDB(t)
	svc := newAccessService(t, db)
	user := createUser(t, db, "auth0|cand", enums.RoleCandidate, true)

	candidate := models.Candidate{
		ID:        uuid.New(),
		UserID:    &user.ID,
		Email:     "cand@example.com",
		FirstName: "Casey",
		LastName:  "Doe",
	}
	require.NoError(t, db.Create(&candidate).Error)

	accessCtx, err := svc.Resolve(context.Background(), "auth0|cand")
	require.NoError(t, err)
	require.NotNil(t, accessCtx.CandidateID)
	require.Equal(t, candidate.ID, *accessCtx.CandidateID)
}

func TestScopeCandidatesRecruiterSeesOwnedOnly(t *testing.T) {
	db := setupAccessTestDB(t)
	recruiterID := uuid.New()

	owned := models.Candidate{ID: uuid.New(), OwnerRecruiterID: &recruiterID, Email: "a@example.com", FirstName: "A", LastName: "One"}
	other := models.Candidate{ID: uuid.New(), Email: "b@example.com", FirstName: "B", LastName: "Two"}
	require.NoError(t, db.Create(&owned).Error)
	require.NoError(t, db.Create(&other).Error)

	accessCtx := Context{IdentityUserID: uuid.New(), RecruiterID: &recruiterID}

	var rows []models.Candidate
	require.NoError(t, ScopeCandidates(db.Model(&models.Candidate{}), accessCtx).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, owned.ID, rows[0].ID)
}

func TestScopeCandidatesAdminUnrestricted(t *testing.T) {
	db := setupAccessTestDB(t)
	require.NoError(t, db.Create(&models.Candidate{ID: uuid.New(), Email: "a@example.com", FirstName: "A", LastName: "One"}).Error)
	require.NoError(t, db.Create(&models.Candidate{ID: uuid.New(), Email: "b@example.com", FirstName: "B", LastName: "Two"}).Error)

	accessCtx := Context{IdentityUserID: uuid.New(), IsPlatformAdmin: true}

	var rows []models.Candidate
	require.NoError(t, ScopeCandidates(db.Model(&models.Candidate{}), accessCtx).Find(&rows).Error)
	require.Len(t, rows, 2)
}

func TestScopeCandidatesEmptyScopeMatchesNothing(t *testing.T) {
	db := setupAccessTestDB(t)
	require.NoError(t, db.Create(&models.Candidate{ID: uuid.New(), Email: "a@example.com", FirstName: "A", LastName: "One"}).Error)

	accessCtx := Context{IdentityUserID: uuid.New()}

	var rows []models.Candidate
	require.NoError(t, ScopeCandidates(db.Model(&models.Candidate{}), accessCtx).Find(&rows).Error)
	require.Empty(t, rows)
}

func TestScopeApplicationsCandidateSeesSelf(t *testing.T) {
	db := setupAccessTestDB(t)

	candidateID := uuid.New()
	require.NoError(t, db.Create(&models.Candidate{ID: candidateID, Email: "self@example.com", FirstName: "Self", LastName: "One"}).Error)
	otherCandidateID := uuid.New()
	require.NoError(t, db.Create(&models.Candidate{ID: otherCandidateID, Email: "other@example.com", FirstName: "Other", LastName: "Two"}).Error)

	mine := models.Application{ID: uuid.New(), CandidateID: candidateID, JobID: uuid.New(), Stage: enums.StageApplied}
	theirs := models.Application{ID: uuid.New(), CandidateID: otherCandidateID, JobID: uuid.New(), Stage: enums.StageApplied}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)

	accessCtx := Context{IdentityUserID: uuid.New(), CandidateID: &candidateID}

	var rows []models.Application
	require.NoError(t, ScopeApplications(db.Model(&models.Application{}), accessCtx).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, mine.ID, rows[0].ID)
}
