package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the central talent record synchronized across services.
//
// SourcedByIdentityID is a legacy denormalized pointer kept for older
// consumers; sourcer_assignments is the source of truth for ownership.
type Candidate struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	OwnerRecruiterID    *uuid.UUID `gorm:"column:owner_recruiter_id;type:uuid;index"`
	OrganizationID      *uuid.UUID `gorm:"column:organization_id;type:uuid;index"`
	Email               string     `gorm:"type:text;not null;uniqueIndex"`
	FirstName           string     `gorm:"column:first_name;not null"`
	LastName            string     `gorm:"column:last_name;not null"`
	Headline            *string    `gorm:"column:headline"`
	Location            *string    `gorm:"column:location"`
	SkillsCSV           *string    `gorm:"column:skills_csv"`
	YearsExperience     *int       `gorm:"column:years_experience"`
	PrimaryResumeID     *uuid.UUID `gorm:"column:primary_resume_id;type:uuid"`
	SourcedByIdentityID *uuid.UUID `gorm:"column:sourced_by_identity_id;type:uuid"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
