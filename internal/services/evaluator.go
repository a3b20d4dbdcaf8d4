package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type EvaluatorService interface {
	EvaluateAnswer(ctx context.Context, roleName, question, cleanAnswer string) (*AnswerEvaluation, error)
}

// AnswerEvaluation carries the structured result of scoring one
// answer. The combined score and category label are derived by the
// orchestrator, not here, so the aggregation policy lives in exactly
// one place.
type AnswerEvaluation struct {
	Scores         map[string]float64
	Narrative      string
	KeyImprovement string
}

// rubricScoreNames lists the eight sub-scores of the contract, in
// rubric order.
var rubricScoreNames = []string{
	"situation", "task", "action", "result",
	"relevance", "clarity", "confidence", "conciseness",
}

// rubricPayload is the fixed shape the model must return. Score
// fields are pointers: a missing field is a contract violation, not a
// zero score — defaulting would silently corrupt aggregates.
type rubricPayload struct {
	ScoreSituation    *float64 `json:"score_situation"`
	ScoreTask         *float64 `json:"score_task"`
	ScoreAction       *float64 `json:"score_action"`
	ScoreResult       *float64 `json:"score_result"`
	ScoreRelevance    *float64 `json:"score_relevance"`
	ScoreClarity      *float64 `json:"score_clarity"`
	ScoreConfidence   *float64 `json:"score_confidence"`
	ScoreConciseness  *float64 `json:"score_conciseness"`
	FeedbackNarrative string   `json:"feedback_narrative"`
	KeyImprovement    string   `json:"key_improvement"`
}

type evaluatorService struct {
	geminiService GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewEvaluatorService(geminiService GeminiService, maxRetries int) EvaluatorService {
	return &evaluatorService{
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// EvaluateAnswer implements EvaluatorService. One gateway call per
// answer; a gateway failure propagates as-is, a response that violates
// the JSON contract becomes ErrMalformedModelOutput.
func (e *evaluatorService) EvaluateAnswer(ctx context.Context, roleName, question, cleanAnswer string) (*AnswerEvaluation, error) {
	systemInstruction := e.promptBuilder.BuildEvaluationSystemInstruction(roleName)
	userPrompt := e.promptBuilder.BuildEvaluationPrompt(question, cleanAnswer)

	response, err := e.geminiService.GenerateWithRetry(ctx, systemInstruction, userPrompt, e.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate evaluation: %w", err)
	}

	return parseRubricResponse(response)
}

func parseRubricResponse(response string) (*AnswerEvaluation, error) {
	jsonStr := extractJSON(response)

	var payload rubricPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	rawScores := map[string]*float64{
		"situation":   payload.ScoreSituation,
		"task":        payload.ScoreTask,
		"action":      payload.ScoreAction,
		"result":      payload.ScoreResult,
		"relevance":   payload.ScoreRelevance,
		"clarity":     payload.ScoreClarity,
		"confidence":  payload.ScoreConfidence,
		"conciseness": payload.ScoreConciseness,
	}

	scores := make(map[string]float64, len(rubricScoreNames))
	for _, name := range rubricScoreNames {
		value := rawScores[name]
		if value == nil {
			return nil, fmt.Errorf("%w: missing score field %q", ErrMalformedModelOutput, name)
		}
		if *value < 0 || *value > 100 {
			return nil, fmt.Errorf("%w: score %q out of range: %.2f", ErrMalformedModelOutput, name, *value)
		}

		scores[name] = RoundScore(*value)
	}

	if strings.TrimSpace(payload.FeedbackNarrative) == "" {
		return nil, fmt.Errorf("%w: missing feedback_narrative", ErrMalformedModelOutput)
	}

	if strings.TrimSpace(payload.KeyImprovement) == "" {
		return nil, fmt.Errorf("%w: missing key_improvement", ErrMalformedModelOutput)
	}

	return &AnswerEvaluation{
		Scores:         scores,
		Narrative:      payload.FeedbackNarrative,
		KeyImprovement: payload.KeyImprovement,
	}, nil
}

// extractJSON strips markdown code fences the model may wrap its
// payload in and isolates the outermost JSON object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// RoundScore fixes a score to two decimal places so stored values do
// not accumulate floating-point drift.
func RoundScore(value float64) float64 {
	return math.Round(value*100) / 100
}
