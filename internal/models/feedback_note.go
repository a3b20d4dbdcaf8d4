package models

import "github.com/google/uuid"

// FeedbackNote is the narrative companion of an EvaluationMetric:
// one per answered turn, immutable after creation.
type FeedbackNote struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TurnID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"turn_id"`
	Narrative      string    `gorm:"type:text;not null" json:"narrative"`
	KeyImprovement string    `gorm:"type:text" json:"key_improvement,omitempty"`

	// Relations
	Turn QuestionTurn `gorm:"foreignKey:TurnID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FeedbackNote) TableName() string {
	return "feedback_notes"
}
