package candidates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelane/talentsync-backend/internal/access"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/pagination"
)

// Repository exposes candidate persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID retrieves a candidate by primary key, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).First(&candidate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

// FindResumeByID retrieves a resume document, or nil when absent.
func (r *Repository) FindResumeByID(ctx context.Context, id uuid.UUID) (*models.ResumeDocument, error) {
	var resume models.ResumeDocument
	err := r.db.WithContext(ctx).First(&resume, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resume, nil
}

// LinkUserTx sets the candidate's internal user pointer inside tx.
func (r *Repository) LinkUserTx(tx *gorm.DB, candidateID, userID uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.Candidate{}).
		Where("id = ?", candidateID).
		Update("user_id", userID).Error
}

// UpdateExtractedFieldsTx writes the resume-derived fields onto the candidate
// row inside tx.
func (r *Repository) UpdateExtractedFieldsTx(tx *gorm.DB, candidateID uuid.UUID, fields map[string]any) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if len(fields) == 0 {
		return nil
	}
	return tx.Model(&models.Candidate{}).
		Where("id = ?", candidateID).
		Updates(fields).Error
}

// MarkResumeExtractedTx stamps extracted_at on the resume row inside tx.
func (r *Repository) MarkResumeExtractedTx(tx *gorm.DB, resumeID uuid.UUID, at time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.ResumeDocument{}).
		Where("id = ?", resumeID).
		Update("extracted_at", at).Error
}

// UpdateSourcedBy writes the legacy denormalized sourcer pointer. Best-effort
// compatibility shim; sourcer_assignments stays the source of truth.
func (r *Repository) UpdateSourcedBy(ctx context.Context, candidateID, sourcerIdentityID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", candidateID).
		Update("sourced_by_identity_id", sourcerIdentityID).Error
}

// ListScoped returns a cursor page of the candidates visible to the caller,
// newest first.
func (r *Repository) ListScoped(ctx context.Context, accessCtx access.Context, params pagination.Params) ([]models.Candidate, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := access.ScopeCandidates(r.db.WithContext(ctx).Model(&models.Candidate{}), accessCtx)

	if cursor != nil {
		query = query.Where("(candidates.created_at < ?) OR (candidates.created_at = ? AND candidates.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Candidate
	err = query.
		Order("candidates.created_at DESC").
		Order("candidates.id DESC").
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
