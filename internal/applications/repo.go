package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/internal/access"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	"github.com/hirelane/talentsync-backend/pkg/pagination"
)

// Repository exposes application persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID retrieves an application, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

// FindByCandidateAndJob retrieves an application by its natural key, or nil
// when absent.
func (r *Repository) FindByCandidateAndJob(ctx context.Context, candidateID, jobID uuid.UUID) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

// CreateTx inserts an application inside tx.
func (r *Repository) CreateTx(tx *gorm.DB, application *models.Application) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(application).Error
}

// UpdateStageTx conditionally moves the application to stage. The WHERE
// clause re-checks the current stage so concurrent duplicate deliveries
// collapse into a single transition; the returned bool reports whether this
// call performed it.
func (r *Repository) UpdateStageTx(tx *gorm.DB, id uuid.UUID, from, to enums.ApplicationStage, at time.Time) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction required")
	}
	res := tx.Model(&models.Application{}).
		Where("id = ? AND stage = ?", id, from).
		Updates(map[string]any{
			"stage":            to,
			"stage_updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListScoped returns a cursor page of the applications visible to the caller,
// newest first.
func (r *Repository) ListScoped(ctx context.Context, accessCtx access.Context, params pagination.Params) ([]models.Application, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := access.ScopeApplications(r.db.WithContext(ctx).Model(&models.Application{}), accessCtx)

	if cursor != nil {
		query = query.Where("(applications.created_at < ?) OR (applications.created_at = ? AND applications.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Application
	err = query.
		Order("applications.created_at DESC").
		Order("applications.id DESC").
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
