package models

import (
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Phone        string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	RegisteredAt time.Time `gorm:"type:timestamptz;default:now()" json:"registered_at"`

	// Relations
	CvDocuments []CvDocument       `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions    []InterviewSession `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Candidate) TableName() string {
	return "candidates"
}
