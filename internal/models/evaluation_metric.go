package models

import "github.com/google/uuid"

// EvaluationMetric holds the rubric scores for exactly one answered
// turn. Immutable after creation. Sub-scores are on a 0-100 scale,
// stored with two decimal places; CombinedScore is the arithmetic
// mean of the eight.
type EvaluationMetric struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TurnID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"turn_id"`

	// STAR rubric
	ScoreSituation float64 `gorm:"type:decimal(5,2)" json:"score_situation"`
	ScoreTask      float64 `gorm:"type:decimal(5,2)" json:"score_task"`
	ScoreAction    float64 `gorm:"type:decimal(5,2)" json:"score_action"`
	ScoreResult    float64 `gorm:"type:decimal(5,2)" json:"score_result"`

	// Answer quality
	ScoreRelevance   float64 `gorm:"type:decimal(5,2)" json:"score_relevance"`
	ScoreClarity     float64 `gorm:"type:decimal(5,2)" json:"score_clarity"`
	ScoreConfidence  float64 `gorm:"type:decimal(5,2)" json:"score_confidence"`
	ScoreConciseness float64 `gorm:"type:decimal(5,2)" json:"score_conciseness"`

	CombinedScore float64 `gorm:"type:decimal(5,2)" json:"combined_score"`
	CategoryLabel string  `gorm:"type:varchar(10)" json:"category_label"`

	// Relations
	Turn QuestionTurn `gorm:"foreignKey:TurnID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EvaluationMetric) TableName() string {
	return "evaluation_metrics"
}
