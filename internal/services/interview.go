package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

// Hard session policy, fixed by design rather than configurable.
const (
	maxSessionTurns = 5
	retrievalTopK   = 5
)

// placeholderQuestion is stored when question generation degrades. A
// broken first question is recoverable on the next answer cycle; a
// failed session creation is not.
const placeholderQuestion = "Sorry, something went wrong while generating the question. Please tell me about your most relevant experience for this role."

type InterviewService interface {
	StartSession(ctx context.Context, candidateID, roleID, cvID uuid.UUID) (*models.QuestionView, error)
	SubmitAnswer(ctx context.Context, turnID uuid.UUID, rawAnswer string, responseLatency *int, forceFinal bool) (*models.QuestionView, *models.SessionEnded, error)
}

type interviewService struct {
	candidateRepo repositories.CandidateRepository
	roleRepo      repositories.JobRoleRepository
	cvRepo        repositories.CvDocumentRepository
	interviewRepo repositories.InterviewRepository
	vectorStore   VectorStoreService
	geminiService GeminiService
	evaluator     EvaluatorService
	promptBuilder *PromptBuilder

	generateTimeout time.Duration
	maxRetries      int

	// sessionLocks serializes answer submissions per session so
	// sequence numbers stay contiguous under concurrent requests.
	sessionLocks sync.Map
}

func NewInterviewService(
	candidateRepo repositories.CandidateRepository,
	roleRepo repositories.JobRoleRepository,
	cvRepo repositories.CvDocumentRepository,
	interviewRepo repositories.InterviewRepository,
	vectorStore VectorStoreService,
	geminiService GeminiService,
	evaluator EvaluatorService,
	generateTimeout time.Duration,
	maxRetries int,
) InterviewService {
	return &interviewService{
		candidateRepo:   candidateRepo,
		roleRepo:        roleRepo,
		cvRepo:          cvRepo,
		interviewRepo:   interviewRepo,
		vectorStore:     vectorStore,
		geminiService:   geminiService,
		evaluator:       evaluator,
		promptBuilder:   NewPromptBuilder(),
		generateTimeout: generateTimeout,
		maxRetries:      maxRetries,
	}
}

// StartSession implements InterviewService. It validates all three
// referents, creates the session, and generates the RAG-grounded
// opening question. Generation failures degrade to a placeholder
// question; the session itself must still be created.
func (s *interviewService) StartSession(ctx context.Context, candidateID, roleID, cvID uuid.UUID) (*models.QuestionView, error) {
	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleRepo.FindByID(roleID)
	if err != nil {
		return nil, err
	}

	cv, err := s.cvRepo.FindByID(cvID)
	if err != nil {
		return nil, err
	}

	if cv.CandidateID != candidateID {
		return nil, fmt.Errorf("cv document %s does not belong to candidate %s: %w",
			cvID, candidateID, repositories.ErrNotFound)
	}

	session := &models.InterviewSession{
		ID:          uuid.New(),
		CandidateID: candidate.ID,
		RoleID:      role.ID,
		Status:      models.SessionActive,
		StartedAt:   time.Now(),
	}

	if err := s.interviewRepo.CreateSession(session); err != nil {
		return nil, err
	}

	// Retrieval: the opening question is the only RAG-grounded turn.
	retrievalQuery := s.promptBuilder.BuildRetrievalQuery(role.Name)

	queryCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	cvContext, err := s.vectorStore.QueryContext(queryCtx, candidate.ID, retrievalQuery, retrievalTopK)
	if err != nil {
		log.Printf("⚠️  Failed to retrieve CV context: %v\n", err)
		cvContext = NoContextSentinel
	}

	systemInstruction := s.promptBuilder.BuildOpeningSystemInstruction(role.Name)
	userPrompt := s.promptBuilder.BuildOpeningPrompt(candidate.Name, role.Name, cvContext)

	questionText := s.generateQuestion(ctx, systemInstruction, userPrompt)

	turn := &models.QuestionTurn{
		ID:           uuid.New(),
		SessionID:    session.ID,
		Sequence:     1,
		Kind:         models.QuestionOpening,
		QuestionText: questionText,
		AskedAt:      time.Now(),
	}

	if err := s.interviewRepo.CreateTurn(turn); err != nil {
		return nil, err
	}

	return questionView(turn), nil
}

// SubmitAnswer implements InterviewService. The answered turn, its
// metric and its feedback are persisted together or not at all; only
// after that commit does the session either chain a follow-up question
// or terminate.
func (s *interviewService) SubmitAnswer(ctx context.Context, turnID uuid.UUID, rawAnswer string, responseLatency *int, forceFinal bool) (*models.QuestionView, *models.SessionEnded, error) {
	turn, err := s.interviewRepo.FindTurnByID(turnID)
	if err != nil {
		return nil, nil, err
	}

	lock := s.sessionLock(turn.SessionID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: the copy fetched above may predate a
	// concurrent submission that already answered this turn.
	turn, err = s.interviewRepo.FindTurnByID(turnID)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.interviewRepo.FindSessionByID(turn.SessionID)
	if err != nil {
		return nil, nil, err
	}

	if session.IsCompleted() {
		return nil, nil, fmt.Errorf("session %s: %w", session.ID, ErrSessionCompleted)
	}

	if turn.IsAnswered() {
		return nil, nil, fmt.Errorf("turn %s: %w", turn.ID, ErrTurnAlreadyAnswered)
	}

	role, err := s.roleRepo.FindByID(session.RoleID)
	if err != nil {
		return nil, nil, err
	}

	cleanAnswer := NormalizeAnswer(rawAnswer)

	evalCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	evaluation, err := s.evaluator.EvaluateAnswer(evalCtx, role.Name, turn.QuestionText, cleanAnswer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	combinedScore := CombinedScore(evaluation.Scores)
	label := CategoryLabel(combinedScore)

	turn.RawAnswer = &rawAnswer
	turn.CleanAnswer = &cleanAnswer
	turn.ResponseLatency = responseLatency

	metric := &models.EvaluationMetric{
		ID:               uuid.New(),
		TurnID:           turn.ID,
		ScoreSituation:   evaluation.Scores["situation"],
		ScoreTask:        evaluation.Scores["task"],
		ScoreAction:      evaluation.Scores["action"],
		ScoreResult:      evaluation.Scores["result"],
		ScoreRelevance:   evaluation.Scores["relevance"],
		ScoreClarity:     evaluation.Scores["clarity"],
		ScoreConfidence:  evaluation.Scores["confidence"],
		ScoreConciseness: evaluation.Scores["conciseness"],
		CombinedScore:    combinedScore,
		CategoryLabel:    label,
	}

	feedback := &models.FeedbackNote{
		ID:             uuid.New(),
		TurnID:         turn.ID,
		Narrative:      evaluation.Narrative,
		KeyImprovement: evaluation.KeyImprovement,
	}

	if err := s.interviewRepo.SaveAnswerEvaluation(turn, metric, feedback); err != nil {
		return nil, nil, err
	}

	if forceFinal || turn.Sequence >= maxSessionTurns {
		if err := s.endSession(session.ID); err != nil {
			return nil, nil, err
		}

		return nil, &models.SessionEnded{
			Status:    "ended",
			SessionID: session.ID.String(),
		}, nil
	}

	nextTurn, err := s.nextQuestion(ctx, session, role, turn)
	if err != nil {
		return nil, nil, err
	}

	return questionView(nextTurn), nil, nil
}

// nextQuestion chains a follow-up from only the immediately preceding
// question/answer pair. No retrieval call happens here.
func (s *interviewService) nextQuestion(ctx context.Context, session *models.InterviewSession, role *models.JobRole, previous *models.QuestionTurn) (*models.QuestionTurn, error) {
	previousAnswer := ""
	if previous.CleanAnswer != nil {
		previousAnswer = *previous.CleanAnswer
	}

	systemInstruction := s.promptBuilder.BuildFollowupSystemInstruction(role.Name)
	userPrompt := s.promptBuilder.BuildFollowupPrompt(role.Name, previous.QuestionText, previousAnswer, previous.Sequence)

	questionText := s.generateQuestion(ctx, systemInstruction, userPrompt)

	turn := &models.QuestionTurn{
		ID:           uuid.New(),
		SessionID:    session.ID,
		Sequence:     previous.Sequence + 1,
		Kind:         models.QuestionFollowup,
		QuestionText: questionText,
		AskedAt:      time.Now(),
	}

	if err := s.interviewRepo.CreateTurn(turn); err != nil {
		return nil, err
	}

	return turn, nil
}

// endSession computes the session aggregate as the mean of all
// combined scores and marks the session completed. A session with no
// scored turns keeps its aggregate unset.
func (s *interviewService) endSession(sessionID uuid.UUID) error {
	scores, err := s.interviewRepo.CombinedScores(sessionID)
	if err != nil {
		return err
	}

	var averageScore *float64
	if len(scores) > 0 {
		var total float64
		for _, score := range scores {
			total += score
		}

		average := RoundScore(total / float64(len(scores)))
		averageScore = &average
	}

	if err := s.interviewRepo.CompleteSession(sessionID, averageScore, time.Now()); err != nil {
		return err
	}

	// A completed session takes no further submissions, so its lock
	// entry would only leak.
	s.sessionLocks.Delete(sessionID)

	return nil
}

// generateQuestion calls the gateway under a bounded timeout and
// degrades to the placeholder question on failure.
func (s *interviewService) generateQuestion(ctx context.Context, systemInstruction, userPrompt string) string {
	generateCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	questionText, err := s.geminiService.GenerateWithRetry(generateCtx, systemInstruction, userPrompt, s.maxRetries)
	if err != nil {
		log.Printf("⚠️  Question generation failed, storing placeholder: %v\n", err)
		return placeholderQuestion
	}

	return questionText
}

func (s *interviewService) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	value, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// CombinedScore derives the mean of the eight rubric sub-scores,
// fixed to two decimal places.
func CombinedScore(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	var total float64
	for _, score := range scores {
		total += score
	}

	return RoundScore(total / float64(len(scores)))
}

// CategoryLabel maps a combined score to its category. Thresholds are
// inclusive at the lower bound.
func CategoryLabel(combinedScore float64) string {
	switch {
	case combinedScore >= 80:
		return "A"
	case combinedScore >= 60:
		return "B"
	default:
		return "C"
	}
}

func questionView(turn *models.QuestionTurn) *models.QuestionView {
	return &models.QuestionView{
		TurnID:       turn.ID.String(),
		SessionID:    turn.SessionID.String(),
		Sequence:     turn.Sequence,
		Kind:         string(turn.Kind),
		QuestionText: turn.QuestionText,
	}
}
