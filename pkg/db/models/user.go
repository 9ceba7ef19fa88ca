package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// User represents the canonical internal identity entity. External identity
// provider subjects map onto this table via external_identity_id.
type User struct {
	ID                 uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalIdentityID string             `gorm:"column:external_identity_id;type:text;not null;uniqueIndex"`
	Email              string             `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash       *string            `gorm:"column:password_hash"`
	FirstName          string             `gorm:"column:first_name;not null"`
	LastName           string             `gorm:"column:last_name;not null"`
	Role               enums.PlatformRole `gorm:"column:role;type:platform_role_enum;not null"`
	IsActive           bool               `gorm:"column:is_active;not null;default:true"`
	LastLoginAt        *time.Time         `gorm:"column:last_login_at"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
