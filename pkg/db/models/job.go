package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is a requisition owned by an organization.
type Job struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index"`
	Title          string    `gorm:"type:text;not null"`
	IsOpen         bool      `gorm:"column:is_open;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
