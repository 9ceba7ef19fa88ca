package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// Application connects a candidate to a job. The candidate/job pair is the
// natural key that stage-sync handlers upsert against.
type Application struct {
	ID             uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CandidateID    uuid.UUID              `gorm:"column:candidate_id;type:uuid;not null;uniqueIndex:ux_applications_candidate_job"`
	JobID          uuid.UUID              `gorm:"column:job_id;type:uuid;not null;uniqueIndex:ux_applications_candidate_job"`
	Stage          enums.ApplicationStage `gorm:"column:stage;type:application_stage_enum;not null"`
	StageUpdatedAt time.Time              `gorm:"column:stage_updated_at;not null"`
	RecruiterID    *uuid.UUID             `gorm:"column:recruiter_id;type:uuid;index"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
