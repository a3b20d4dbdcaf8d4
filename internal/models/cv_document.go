package models

import (
	"time"

	"github.com/google/uuid"
)

type IndexStatus string

const (
	IndexQueued     IndexStatus = "queued"
	IndexProcessing IndexStatus = "processing"
	IndexCompleted  IndexStatus = "indexed"
	IndexFailed     IndexStatus = "failed"
)

// CvDocument is immutable after creation; a re-upload creates a new
// row instead of updating an existing one. Only the indexing worker
// touches IndexStatus and CompetencySummary.
type CvDocument struct {
	ID                uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"candidate_id"`
	FileName          string      `gorm:"type:varchar(255)" json:"file_name"`
	FilePath          string      `gorm:"type:text" json:"-"`
	RawText           string      `gorm:"type:text;not null" json:"-"`
	CompetencySummary string      `gorm:"type:text" json:"competency_summary,omitempty"`
	IndexStatus       IndexStatus `gorm:"type:varchar(20);not null;default:'queued'" json:"index_status"`
	UploadedAt        time.Time   `gorm:"type:timestamptz;default:now()" json:"uploaded_at"`

	// Relations
	Candidate Candidate `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CvDocument) TableName() string {
	return "cv_documents"
}
