package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
)

// Repository exposes the identity lookups the resolver needs.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUserByExternalIdentity returns the internal user mapped to the opaque
// external identity subject, or nil when no mapping exists.
func (r *Repository) FindUserByExternalIdentity(ctx context.Context, externalIdentityID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("external_identity_id = ?", externalIdentityID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListMemberships returns the user's organization memberships.
func (r *Repository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.OrgMembership, error) {
	var rows []models.OrgMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// FindRecruiterByUserID returns the recruiter profile for the user, if any.
func (r *Repository) FindRecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.Recruiter, error) {
	var recruiter models.Recruiter
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&recruiter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recruiter, nil
}

// FindCandidateByUserID returns the candidate record linked to the user, if any.
func (r *Repository) FindCandidateByUserID(ctx context.Context, userID uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}
