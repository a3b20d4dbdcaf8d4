package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// InterviewSession is one end-to-end mock-interview attempt by one
// candidate for one role. Once EndedAt is set the session is terminal:
// no further turns may be appended or answered.
type InterviewSession struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"candidate_id"`
	RoleID       uuid.UUID     `gorm:"type:uuid;not null" json:"role_id"`
	Status       SessionStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartedAt    time.Time     `gorm:"type:timestamptz;not null" json:"started_at"`
	EndedAt      *time.Time    `gorm:"type:timestamptz" json:"ended_at,omitempty"`
	AverageScore *float64      `gorm:"type:decimal(5,2)" json:"average_score,omitempty"`

	// Relations
	Candidate Candidate      `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"-"`
	JobRole   JobRole        `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"job_role,omitempty"`
	Questions []QuestionTurn `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

func (s *InterviewSession) IsCompleted() bool {
	return s.Status == SessionCompleted || s.EndedAt != nil
}
