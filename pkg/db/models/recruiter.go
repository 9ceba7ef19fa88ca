package models

import (
	"time"

	"github.com/google/uuid"
)

// Recruiter is the sourcing-side profile attached to a user.
type Recruiter struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	OrganizationID *uuid.UUID `gorm:"column:organization_id;type:uuid"`
	DisplayName    string     `gorm:"column:display_name;not null"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
