package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// Organization is a hiring company tenant.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Slug      string    `gorm:"type:text;not null;uniqueIndex"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrgMembership links a user to an organization with a role.
type OrgMembership struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID          `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:ux_org_memberships_org_user"`
	UserID         uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_org_memberships_org_user"`
	Role           enums.PlatformRole `gorm:"column:role;type:platform_role_enum;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}
