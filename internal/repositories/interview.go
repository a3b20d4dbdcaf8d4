package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/mock-interview/internal/models"
)

type InterviewRepository interface {
	CreateSession(session *models.InterviewSession) error
	FindSessionByID(id uuid.UUID) (*models.InterviewSession, error)
	FindSessionsByCandidate(candidateID uuid.UUID) ([]models.InterviewSession, error)
	CompleteSession(id uuid.UUID, averageScore *float64, endedAt time.Time) error
	CreateTurn(turn *models.QuestionTurn) error
	FindTurnByID(id uuid.UUID) (*models.QuestionTurn, error)
	SaveAnswerEvaluation(turn *models.QuestionTurn, metric *models.EvaluationMetric, feedback *models.FeedbackNote) error
	CombinedScores(sessionID uuid.UUID) ([]float64, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

// CreateSession implements InterviewRepository.
func (r *interviewRepository) CreateSession(session *models.InterviewSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create interview session: %w", err)
	}

	return nil
}

// FindSessionByID implements InterviewRepository.
func (r *interviewRepository) FindSessionByID(id uuid.UUID) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("interview session %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find interview session: %w", err)
	}

	return &session, nil
}

// FindSessionsByCandidate implements InterviewRepository. Sessions are
// returned with their role, turns, metrics and feedback preloaded for
// the history/report view.
func (r *interviewRepository) FindSessionsByCandidate(candidateID uuid.UUID) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.
		Where("candidate_id = ?", candidateID).
		Preload("JobRole").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_turns.sequence ASC")
		}).
		Preload("Questions.Metric").
		Preload("Questions.Feedback").
		Order("started_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interview sessions: %w", err)
	}

	return sessions, nil
}

// CompleteSession implements InterviewRepository. A nil averageScore
// leaves the aggregate column unset (session ended with no scored
// turns).
func (r *interviewRepository) CompleteSession(id uuid.UUID, averageScore *float64, endedAt time.Time) error {
	updates := map[string]interface{}{
		"status":   models.SessionCompleted,
		"ended_at": endedAt,
	}

	if averageScore != nil {
		updates["average_score"] = *averageScore
	}

	result := r.db.Model(&models.InterviewSession{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to complete session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("interview session %s: %w", id, ErrNotFound)
	}

	return nil
}

// CreateTurn implements InterviewRepository.
func (r *interviewRepository) CreateTurn(turn *models.QuestionTurn) error {
	if err := r.db.Create(turn).Error; err != nil {
		return fmt.Errorf("failed to create question turn: %w", err)
	}

	return nil
}

// FindTurnByID implements InterviewRepository.
func (r *interviewRepository) FindTurnByID(id uuid.UUID) (*models.QuestionTurn, error) {
	var turn models.QuestionTurn
	if err := r.db.Where("id = ?", id).First(&turn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question turn %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find question turn: %w", err)
	}

	return &turn, nil
}

// SaveAnswerEvaluation implements InterviewRepository. The answered
// turn, its metric and its feedback are committed in one transaction
// so a failure persists nothing.
func (r *interviewRepository) SaveAnswerEvaluation(
	turn *models.QuestionTurn,
	metric *models.EvaluationMetric,
	feedback *models.FeedbackNote,
) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.QuestionTurn{}).
			Where("id = ?", turn.ID).
			Updates(map[string]interface{}{
				"raw_answer":       turn.RawAnswer,
				"clean_answer":     turn.CleanAnswer,
				"response_latency": turn.ResponseLatency,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("question turn %s: %w", turn.ID, ErrNotFound)
		}

		if err := tx.Create(metric).Error; err != nil {
			return err
		}

		return tx.Create(feedback).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save answer evaluation: %w", err)
	}

	return nil
}

// CombinedScores implements InterviewRepository. Returns the combined
// scores of all evaluated turns in the session, in sequence order.
func (r *interviewRepository) CombinedScores(sessionID uuid.UUID) ([]float64, error) {
	var scores []float64
	err := r.db.Model(&models.EvaluationMetric{}).
		Joins("JOIN question_turns ON question_turns.id = evaluation_metrics.turn_id").
		Where("question_turns.session_id = ?", sessionID).
		Order("question_turns.sequence ASC").
		Pluck("evaluation_metrics.combined_score", &scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect combined scores: %w", err)
	}

	return scores, nil
}
