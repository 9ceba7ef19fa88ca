package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// SourcerAssignment records which sourcer holds sourcing credit for a
// candidate. candidate_id is unique: the first writer wins for the life of
// the record and conflicts surface as ownership.conflict_detected events.
type SourcerAssignment struct {
	ID                   uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CandidateID          uuid.UUID         `gorm:"column:candidate_id;type:uuid;not null;uniqueIndex:ux_sourcer_assignments_candidate"`
	SourcerIdentityID    uuid.UUID         `gorm:"column:sourcer_identity_id;type:uuid;not null"`
	SourcerType          enums.SourcerType `gorm:"column:sourcer_type;type:sourcer_type_enum;not null"`
	SourcedAt            time.Time         `gorm:"column:sourced_at;not null"`
	ProtectionWindowDays int               `gorm:"column:protection_window_days;not null"`
	ProtectionExpiresAt  time.Time         `gorm:"column:protection_expires_at;not null"`
	PlacementFeeRate     decimal.Decimal   `gorm:"column:placement_fee_rate;type:numeric(5,4);not null"`
	Notes                *string           `gorm:"column:notes"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
