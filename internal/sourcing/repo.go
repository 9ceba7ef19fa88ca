package sourcing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/pagination"
)

// Repository exposes sourcer assignment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCandidateID returns the assignment holding sourcing credit for the
// candidate, or nil when the candidate is unclaimed.
func (r *Repository) FindByCandidateID(ctx context.Context, candidateID uuid.UUID) (*models.SourcerAssignment, error) {
	var assignment models.SourcerAssignment
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// FindByID returns an assignment by primary key, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SourcerAssignment, error) {
	var assignment models.SourcerAssignment
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// CreateTx inserts the assignment inside tx. The unique index on
// candidate_id backs the first-writer-wins invariant when two claims race.
func (r *Repository) CreateTx(tx *gorm.DB, assignment *models.SourcerAssignment) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(assignment).Error
}

// UpdateTx applies the given column updates inside tx.
func (r *Repository) UpdateTx(tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.SourcerAssignment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteTx removes the assignment inside tx.
func (r *Repository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Delete(&models.SourcerAssignment{}, "id = ?", id).Error
}

// FindExpiredBefore returns assignments whose protection window lapsed
// before the cutoff, oldest expiry first.
func (r *Repository) FindExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.SourcerAssignment, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.SourcerAssignment
	err := r.db.WithContext(ctx).
		Where("protection_expires_at < ?", cutoff).
		Order("protection_expires_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListBySourcer returns a cursor page of the sourcer's assignments, newest first.
func (r *Repository) ListBySourcer(ctx context.Context, sourcerIdentityID uuid.UUID, params pagination.Params) ([]models.SourcerAssignment, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Model(&models.SourcerAssignment{}).
		Where("sourcer_identity_id = ?", sourcerIdentityID)

	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SourcerAssignment
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
