package models

import (
	"time"

	"github.com/google/uuid"
)

type QuestionKind string

const (
	QuestionOpening   QuestionKind = "opening"
	QuestionFollowup  QuestionKind = "followup"
	QuestionTechnical QuestionKind = "technical"
)

// QuestionTurn is one question/answer exchange within a session.
// Sequence numbers are contiguous starting at 1. A turn transitions
// unanswered -> answered exactly once; the answer fields, metric and
// feedback are written together in a single transaction.
type QuestionTurn struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"session_id"`
	Sequence        int          `gorm:"not null" json:"sequence"`
	Kind            QuestionKind `gorm:"type:varchar(20);not null" json:"kind"`
	QuestionText    string       `gorm:"type:text;not null" json:"question_text"`
	RawAnswer       *string      `gorm:"type:text" json:"raw_answer,omitempty"`
	CleanAnswer     *string      `gorm:"type:text" json:"clean_answer,omitempty"`
	ResponseLatency *int         `gorm:"" json:"response_latency,omitempty"`
	AskedAt         time.Time    `gorm:"type:timestamptz;not null" json:"asked_at"`

	// Relations
	Session  InterviewSession  `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Metric   *EvaluationMetric `gorm:"foreignKey:TurnID;constraint:OnDelete:CASCADE" json:"metric,omitempty"`
	Feedback *FeedbackNote     `gorm:"foreignKey:TurnID;constraint:OnDelete:CASCADE" json:"feedback,omitempty"`
}

func (QuestionTurn) TableName() string {
	return "question_turns"
}

func (t *QuestionTurn) IsAnswered() bool {
	return t.RawAnswer != nil
}
