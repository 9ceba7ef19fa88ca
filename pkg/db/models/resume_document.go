package models

import (
	"time"

	"github.com/google/uuid"
)

// ResumeDocument is a stored resume belonging to a candidate. The file
// itself lives in an external document service; this row tracks metadata.
type ResumeDocument struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CandidateID uuid.UUID  `gorm:"column:candidate_id;type:uuid;not null;index"`
	StorageKey  string     `gorm:"column:storage_key;type:text;not null;uniqueIndex"`
	FileName    string     `gorm:"column:file_name;not null"`
	ContentType string     `gorm:"column:content_type;not null"`
	ExtractedAt *time.Time `gorm:"column:extracted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
