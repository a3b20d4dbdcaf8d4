package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

// memoryStore backs the orchestrator tests with an in-memory
// implementation of every repository interface.
type memoryStore struct {
	mu sync.Mutex

	candidates map[uuid.UUID]models.Candidate
	roles      map[uuid.UUID]models.JobRole
	cvs        map[uuid.UUID]models.CvDocument
	sessions   map[uuid.UUID]models.InterviewSession
	turns      map[uuid.UUID]models.QuestionTurn
	metrics    map[uuid.UUID]models.EvaluationMetric
	feedback   map[uuid.UUID]models.FeedbackNote
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		candidates: make(map[uuid.UUID]models.Candidate),
		roles:      make(map[uuid.UUID]models.JobRole),
		cvs:        make(map[uuid.UUID]models.CvDocument),
		sessions:   make(map[uuid.UUID]models.InterviewSession),
		turns:      make(map[uuid.UUID]models.QuestionTurn),
		metrics:    make(map[uuid.UUID]models.EvaluationMetric),
		feedback:   make(map[uuid.UUID]models.FeedbackNote),
	}
}

func (m *memoryStore) Create(candidate *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[candidate.ID] = *candidate
	return nil
}

func (m *memoryStore) FindByID(id uuid.UUID) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	candidate, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
	}
	return &candidate, nil
}

func (m *memoryStore) FindByEmail(email string) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, candidate := range m.candidates {
		if candidate.Email == email {
			result := candidate
			return &result, nil
		}
	}
	return nil, fmt.Errorf("candidate %s: %w", email, repositories.ErrNotFound)
}

// candidateRepo / roleRepo / cvRepo / interviewRepo expose the store
// as the individual repository interfaces the orchestrator expects.
type candidateRepo struct{ *memoryStore }
type roleRepo struct{ *memoryStore }
type cvRepo struct{ *memoryStore }
type interviewRepo struct{ *memoryStore }

func (r roleRepo) Create(role *models.JobRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.ID] = *role
	return nil
}

func (r roleRepo) FindByID(id uuid.UUID) (*models.JobRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, fmt.Errorf("job role %s: %w", id, repositories.ErrNotFound)
	}
	return &role, nil
}

func (r roleRepo) FindAll() ([]models.JobRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var roles []models.JobRole
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	return roles, nil
}

func (r cvRepo) Create(doc *models.CvDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cvs[doc.ID] = *doc
	return nil
}

func (r cvRepo) FindByID(id uuid.UUID) (*models.CvDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.cvs[id]
	if !ok {
		return nil, fmt.Errorf("cv document %s: %w", id, repositories.ErrNotFound)
	}
	return &doc, nil
}

func (r cvRepo) FindByCandidate(candidateID uuid.UUID) ([]models.CvDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docs []models.CvDocument
	for _, doc := range r.cvs {
		if doc.CandidateID == candidateID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (r cvRepo) UpdateIndexStatus(id uuid.UUID, status models.IndexStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.cvs[id]
	if !ok {
		return fmt.Errorf("cv document %s: %w", id, repositories.ErrNotFound)
	}
	doc.IndexStatus = status
	r.cvs[id] = doc
	return nil
}

func (r cvRepo) UpdateIndexResult(id uuid.UUID, status models.IndexStatus, competencySummary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.cvs[id]
	if !ok {
		return fmt.Errorf("cv document %s: %w", id, repositories.ErrNotFound)
	}
	doc.IndexStatus = status
	doc.CompetencySummary = competencySummary
	r.cvs[id] = doc
	return nil
}

func (r cvRepo) FindPendingIndex(limit int) ([]models.CvDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docs []models.CvDocument
	for _, doc := range r.cvs {
		if doc.IndexStatus == models.IndexQueued && len(docs) < limit {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (r interviewRepo) CreateSession(session *models.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r interviewRepo) FindSessionByID(id uuid.UUID) (*models.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("interview session %s: %w", id, repositories.ErrNotFound)
	}
	return &session, nil
}

func (r interviewRepo) FindSessionsByCandidate(candidateID uuid.UUID) ([]models.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []models.InterviewSession
	for _, session := range r.sessions {
		if session.CandidateID == candidateID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (r interviewRepo) CompleteSession(id uuid.UUID, averageScore *float64, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("interview session %s: %w", id, repositories.ErrNotFound)
	}
	session.Status = models.SessionCompleted
	session.EndedAt = &endedAt
	if averageScore != nil {
		score := *averageScore
		session.AverageScore = &score
	}
	r.sessions[id] = session
	return nil
}

func (r interviewRepo) CreateTurn(turn *models.QuestionTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[turn.ID] = *turn
	return nil
}

func (r interviewRepo) FindTurnByID(id uuid.UUID) (*models.QuestionTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	turn, ok := r.turns[id]
	if !ok {
		return nil, fmt.Errorf("question turn %s: %w", id, repositories.ErrNotFound)
	}
	return &turn, nil
}

func (r interviewRepo) SaveAnswerEvaluation(turn *models.QuestionTurn, metric *models.EvaluationMetric, feedback *models.FeedbackNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.turns[turn.ID]
	if !ok {
		return fmt.Errorf("question turn %s: %w", turn.ID, repositories.ErrNotFound)
	}
	stored.RawAnswer = turn.RawAnswer
	stored.CleanAnswer = turn.CleanAnswer
	stored.ResponseLatency = turn.ResponseLatency
	r.turns[turn.ID] = stored
	r.metrics[turn.ID] = *metric
	r.feedback[turn.ID] = *feedback
	return nil
}

func (r interviewRepo) CombinedScores(sessionID uuid.UUID) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var turns []models.QuestionTurn
	for _, turn := range r.turns {
		if turn.SessionID == sessionID {
			turns = append(turns, turn)
		}
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].Sequence < turns[j].Sequence })

	var scores []float64
	for _, turn := range turns {
		if metric, ok := r.metrics[turn.ID]; ok {
			scores = append(scores, metric.CombinedScore)
		}
	}
	return scores, nil
}

type fakeVectorStore struct {
	contextText     string
	err             error
	lastCandidateID uuid.UUID
	lastQuery       string
}

func (f *fakeVectorStore) InitCollection() error { return nil }

func (f *fakeVectorStore) IndexDocument(ctx context.Context, candidateID, cvID uuid.UUID, text string) (int, error) {
	return 0, nil
}

func (f *fakeVectorStore) QueryContext(ctx context.Context, candidateID uuid.UUID, queryText string, topK int) (string, error) {
	f.lastCandidateID = candidateID
	f.lastQuery = queryText
	if f.err != nil {
		return "", f.err
	}
	return f.contextText, nil
}

type fakeGemini struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeGemini) GenerateContent(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemInstruction
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGemini) GenerateWithRetry(ctx context.Context, systemInstruction, userPrompt string, maxRetries int) (string, error) {
	return f.GenerateContent(ctx, systemInstruction, userPrompt)
}

type fakeEvaluator struct {
	evaluation *AnswerEvaluation
	err        error
	calls      int
	lastAnswer string
}

func (f *fakeEvaluator) EvaluateAnswer(ctx context.Context, roleName, question, cleanAnswer string) (*AnswerEvaluation, error) {
	f.calls++
	f.lastAnswer = cleanAnswer
	if f.err != nil {
		return nil, f.err
	}
	return f.evaluation, nil
}

// blockingEvaluator parks inside EvaluateAnswer until released, so a
// test can hold the session lock mid-submission.
type blockingEvaluator struct {
	inner   *fakeEvaluator
	entered chan struct{}
	release chan struct{}
}

func (b *blockingEvaluator) EvaluateAnswer(ctx context.Context, roleName, question, cleanAnswer string) (*AnswerEvaluation, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.inner.EvaluateAnswer(ctx, roleName, question, cleanAnswer)
}

func uniformScores(value float64) map[string]float64 {
	scores := make(map[string]float64, len(rubricScoreNames))
	for _, name := range rubricScoreNames {
		scores[name] = value
	}
	return scores
}

func passingEvaluation(value float64) *AnswerEvaluation {
	return &AnswerEvaluation{
		Scores:         uniformScores(value),
		Narrative:      "Good structure, quantify the result next time.",
		KeyImprovement: "Quantify the outcome.",
	}
}

type interviewFixture struct {
	store     *memoryStore
	vector    *fakeVectorStore
	gemini    *fakeGemini
	evaluator *fakeEvaluator
	service   InterviewService

	candidate models.Candidate
	role      models.JobRole
	cv        models.CvDocument
}

func newInterviewFixture(t *testing.T) *interviewFixture {
	t.Helper()

	store := newMemoryStore()
	vector := &fakeVectorStore{contextText: "Led migration of a payment service to Go.\n---\nBuilt CI pipelines."}
	gemini := &fakeGemini{response: "Based on your payment service migration, what was the hardest tradeoff?"}
	evaluator := &fakeEvaluator{evaluation: passingEvaluation(70)}

	service := NewInterviewService(
		candidateRepo{store},
		roleRepo{store},
		cvRepo{store},
		interviewRepo{store},
		vector,
		gemini,
		evaluator,
		2*time.Second,
		1,
	)

	candidate := models.Candidate{ID: uuid.New(), Name: "Ayu Lestari", Email: "ayu@example.com"}
	role := models.JobRole{ID: uuid.New(), Name: "Backend Engineer"}
	cv := models.CvDocument{ID: uuid.New(), CandidateID: candidate.ID, FileName: "cv.pdf", IndexStatus: models.IndexCompleted}

	store.candidates[candidate.ID] = candidate
	store.roles[role.ID] = role
	store.cvs[cv.ID] = cv

	return &interviewFixture{
		store:     store,
		vector:    vector,
		gemini:    gemini,
		evaluator: evaluator,
		service:   service,
		candidate: candidate,
		role:      role,
		cv:        cv,
	}
}

// seedActiveSession stores an active session with one unanswered turn
// at the given sequence and returns both.
func (f *interviewFixture) seedActiveSession(sequence int) (models.InterviewSession, models.QuestionTurn) {
	session := models.InterviewSession{
		ID:          uuid.New(),
		CandidateID: f.candidate.ID,
		RoleID:      f.role.ID,
		Status:      models.SessionActive,
		StartedAt:   time.Now(),
	}

	kind := models.QuestionOpening
	if sequence > 1 {
		kind = models.QuestionFollowup
	}

	turn := models.QuestionTurn{
		ID:           uuid.New(),
		SessionID:    session.ID,
		Sequence:     sequence,
		Kind:         kind,
		QuestionText: "Tell me about a production incident you handled.",
		AskedAt:      time.Now(),
	}

	f.store.sessions[session.ID] = session
	f.store.turns[turn.ID] = turn

	return session, turn
}

func TestStartSessionCreatesOpeningTurn(t *testing.T) {
	f := newInterviewFixture(t)

	view, err := f.service.StartSession(context.Background(), f.candidate.ID, f.role.ID, f.cv.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, view.Sequence)
	assert.Equal(t, string(models.QuestionOpening), view.Kind)
	assert.Equal(t, f.gemini.response, view.QuestionText)

	sessionID, err := uuid.Parse(view.SessionID)
	require.NoError(t, err)

	session := f.store.sessions[sessionID]
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, f.candidate.ID, session.CandidateID)
	assert.Nil(t, session.EndedAt)
	assert.Nil(t, session.AverageScore)

	// Retrieval must be scoped to the candidate and mention the role.
	assert.Equal(t, f.candidate.ID, f.vector.lastCandidateID)
	assert.Contains(t, f.vector.lastQuery, f.role.Name)

	// The retrieved context feeds the generation prompt.
	assert.Contains(t, f.gemini.lastPrompt, "payment service")
	assert.Contains(t, f.gemini.lastPrompt, f.candidate.Name)
}

func TestStartSessionUnknownRole(t *testing.T) {
	f := newInterviewFixture(t)

	_, err := f.service.StartSession(context.Background(), f.candidate.ID, uuid.New(), f.cv.ID)

	require.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Empty(t, f.store.sessions)
	assert.Empty(t, f.store.turns)
}

func TestStartSessionRejectsForeignCv(t *testing.T) {
	f := newInterviewFixture(t)

	other := models.Candidate{ID: uuid.New(), Name: "Budi", Email: "budi@example.com"}
	foreignCv := models.CvDocument{ID: uuid.New(), CandidateID: other.ID, FileName: "other.pdf"}
	f.store.candidates[other.ID] = other
	f.store.cvs[foreignCv.ID] = foreignCv

	_, err := f.service.StartSession(context.Background(), f.candidate.ID, f.role.ID, foreignCv.ID)

	require.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Empty(t, f.store.sessions)
}

func TestStartSessionRetrievalFailureDegradesToSentinel(t *testing.T) {
	f := newInterviewFixture(t)
	f.vector.err = errors.New("qdrant unavailable")

	view, err := f.service.StartSession(context.Background(), f.candidate.ID, f.role.ID, f.cv.ID)
	require.NoError(t, err)

	// Generation still ran, with the sentinel standing in for context.
	assert.Contains(t, f.gemini.lastPrompt, NoContextSentinel)
	assert.Equal(t, f.gemini.response, view.QuestionText)
	assert.Len(t, f.store.sessions, 1)
}

func TestStartSessionGenerationFailureStoresPlaceholder(t *testing.T) {
	f := newInterviewFixture(t)
	f.gemini.err = fmt.Errorf("%w: model overloaded", ErrGatewayFailure)

	view, err := f.service.StartSession(context.Background(), f.candidate.ID, f.role.ID, f.cv.ID)
	require.NoError(t, err)

	assert.Equal(t, placeholderQuestion, view.QuestionText)
	assert.Equal(t, 1, view.Sequence)
	assert.Len(t, f.store.sessions, 1)
	assert.Len(t, f.store.turns, 1)
}

func TestSubmitAnswerChainsFollowup(t *testing.T) {
	f := newInterviewFixture(t)
	f.gemini.response = "Which monitoring signal alerted you first?"
	session, turn := f.seedActiveSession(1)

	latency := 42
	view, ended, err := f.service.SubmitAnswer(context.Background(), turn.ID, "We   had an\noutage in production.", &latency, false)
	require.NoError(t, err)
	require.Nil(t, ended)
	require.NotNil(t, view)

	assert.Equal(t, 2, view.Sequence)
	assert.Equal(t, string(models.QuestionFollowup), view.Kind)
	assert.Equal(t, "Which monitoring signal alerted you first?", view.QuestionText)
	assert.Equal(t, session.ID.String(), view.SessionID)

	// Stored turn carries raw and normalized answer.
	stored := f.store.turns[turn.ID]
	require.NotNil(t, stored.RawAnswer)
	assert.Equal(t, "We   had an\noutage in production.", *stored.RawAnswer)
	require.NotNil(t, stored.CleanAnswer)
	assert.Equal(t, "We had an outage in production.", *stored.CleanAnswer)
	require.NotNil(t, stored.ResponseLatency)
	assert.Equal(t, 42, *stored.ResponseLatency)

	// Metric and feedback persisted together with the answer.
	metric, ok := f.store.metrics[turn.ID]
	require.True(t, ok)
	assert.Equal(t, 70.0, metric.CombinedScore)
	assert.Equal(t, "B", metric.CategoryLabel)
	assert.Equal(t, 70.0, metric.ScoreConciseness)

	note, ok := f.store.feedback[turn.ID]
	require.True(t, ok)
	assert.Equal(t, "Good structure, quantify the result next time.", note.Narrative)
	assert.Equal(t, "Quantify the outcome.", note.KeyImprovement)

	// The evaluator saw the normalized answer, and the follow-up prompt
	// chains from the previous exchange only.
	assert.Equal(t, "We had an outage in production.", f.evaluator.lastAnswer)
	assert.Contains(t, f.gemini.lastPrompt, turn.QuestionText)
	assert.Contains(t, f.gemini.lastPrompt, "We had an outage in production.")

	// Session stays active until the final turn.
	assert.Equal(t, models.SessionActive, f.store.sessions[session.ID].Status)
}

func TestSubmitAnswerFifthTurnEndsSession(t *testing.T) {
	f := newInterviewFixture(t)
	session, turn := f.seedActiveSession(5)

	// Four earlier scored turns.
	for i, score := range []float64{80, 60, 70, 90} {
		previous := models.QuestionTurn{
			ID:        uuid.New(),
			SessionID: session.ID,
			Sequence:  i + 1,
		}
		f.store.turns[previous.ID] = previous
		f.store.metrics[previous.ID] = models.EvaluationMetric{
			ID:            uuid.New(),
			TurnID:        previous.ID,
			CombinedScore: score,
		}
	}

	f.evaluator.evaluation = passingEvaluation(75)

	view, ended, err := f.service.SubmitAnswer(context.Background(), turn.ID, "Final answer.", nil, false)
	require.NoError(t, err)
	assert.Nil(t, view)
	require.NotNil(t, ended)

	assert.Equal(t, "ended", ended.Status)
	assert.Equal(t, session.ID.String(), ended.SessionID)

	completed := f.store.sessions[session.ID]
	assert.Equal(t, models.SessionCompleted, completed.Status)
	require.NotNil(t, completed.EndedAt)
	require.NotNil(t, completed.AverageScore)

	// (80+60+70+90+75)/5
	assert.Equal(t, 75.0, *completed.AverageScore)

	// No sixth turn was created.
	assert.Len(t, f.store.turns, 5)
}

func TestSubmitAnswerForceFinalEndsEarly(t *testing.T) {
	f := newInterviewFixture(t)
	session, turn := f.seedActiveSession(1)

	f.evaluator.evaluation = passingEvaluation(82.5)

	view, ended, err := f.service.SubmitAnswer(context.Background(), turn.ID, "I want to stop here.", nil, true)
	require.NoError(t, err)
	assert.Nil(t, view)
	require.NotNil(t, ended)

	completed := f.store.sessions[session.ID]
	assert.Equal(t, models.SessionCompleted, completed.Status)
	require.NotNil(t, completed.AverageScore)
	assert.Equal(t, 82.5, *completed.AverageScore)
	assert.Len(t, f.store.turns, 1)

	// The per-session lock entry is released with the session.
	_, locked := f.service.(*interviewService).sessionLocks.Load(session.ID)
	assert.False(t, locked)
}

func TestSubmitAnswerCompletedSessionRejected(t *testing.T) {
	f := newInterviewFixture(t)
	session, turn := f.seedActiveSession(2)

	endedAt := time.Now()
	session.Status = models.SessionCompleted
	session.EndedAt = &endedAt
	f.store.sessions[session.ID] = session

	_, _, err := f.service.SubmitAnswer(context.Background(), turn.ID, "Too late.", nil, false)

	require.ErrorIs(t, err, ErrSessionCompleted)
	assert.Equal(t, 0, f.evaluator.calls)
	assert.Empty(t, f.store.metrics)
}

func TestSubmitAnswerAlreadyAnsweredTurnRejected(t *testing.T) {
	f := newInterviewFixture(t)
	_, turn := f.seedActiveSession(1)

	answered := "previous answer"
	turn.RawAnswer = &answered
	f.store.turns[turn.ID] = turn

	_, _, err := f.service.SubmitAnswer(context.Background(), turn.ID, "again", nil, false)

	require.ErrorIs(t, err, ErrTurnAlreadyAnswered)
	assert.Equal(t, 0, f.evaluator.calls)
}

func TestSubmitAnswerConcurrentDuplicateRejected(t *testing.T) {
	f := newInterviewFixture(t)
	session, turn := f.seedActiveSession(1)

	blocker := &blockingEvaluator{
		inner:   f.evaluator,
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	f.service.(*interviewService).evaluator = blocker

	results := make(chan error, 2)
	submit := func() {
		_, _, err := f.service.SubmitAnswer(context.Background(), turn.ID, "The same answer twice.", nil, false)
		results <- err
	}

	// First submission acquires the session lock and parks inside the
	// evaluator; the second arrives while it is still uncommitted.
	go submit()
	<-blocker.entered

	go submit()
	time.Sleep(50 * time.Millisecond)
	close(blocker.release)

	err1 := <-results
	err2 := <-results

	// Exactly one submission wins; the loser sees the committed answer.
	if err1 == nil {
		require.ErrorIs(t, err2, ErrTurnAlreadyAnswered)
	} else {
		require.NoError(t, err2)
		require.ErrorIs(t, err1, ErrTurnAlreadyAnswered)
	}

	// One evaluation, one metric, and a single turn per sequence.
	assert.Equal(t, 1, f.evaluator.calls)
	assert.Len(t, f.store.metrics, 1)
	assert.Len(t, f.store.turns, 2)

	sequences := make(map[int]int)
	for _, stored := range f.store.turns {
		require.Equal(t, session.ID, stored.SessionID)
		sequences[stored.Sequence]++
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1}, sequences)
}

func TestSubmitAnswerUnknownTurn(t *testing.T) {
	f := newInterviewFixture(t)

	_, _, err := f.service.SubmitAnswer(context.Background(), uuid.New(), "hello", nil, false)

	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSubmitAnswerMalformedEvaluationWritesNothing(t *testing.T) {
	f := newInterviewFixture(t)
	session, turn := f.seedActiveSession(3)

	f.evaluator.err = fmt.Errorf("%w: missing score field \"task\"", ErrMalformedModelOutput)

	_, _, err := f.service.SubmitAnswer(context.Background(), turn.ID, "My answer.", nil, false)

	require.ErrorIs(t, err, ErrMalformedModelOutput)

	// The turn stays unanswered and re-submittable; nothing partial
	// was persisted.
	stored := f.store.turns[turn.ID]
	assert.Nil(t, stored.RawAnswer)
	assert.Empty(t, f.store.metrics)
	assert.Empty(t, f.store.feedback)
	assert.Equal(t, models.SessionActive, f.store.sessions[session.ID].Status)
}

func TestSubmitAnswerGatewayFailureSurfaces(t *testing.T) {
	f := newInterviewFixture(t)
	_, turn := f.seedActiveSession(1)

	f.evaluator.err = fmt.Errorf("%w: model overloaded", ErrGatewayFailure)

	_, _, err := f.service.SubmitAnswer(context.Background(), turn.ID, "My answer.", nil, false)

	require.ErrorIs(t, err, ErrGatewayFailure)
	assert.Empty(t, f.store.metrics)
}

func TestSubmitAnswerFollowupGenerationDegrades(t *testing.T) {
	f := newInterviewFixture(t)
	_, turn := f.seedActiveSession(1)

	// Scoring succeeds; only question generation fails.
	f.gemini.err = fmt.Errorf("%w: timeout", ErrGatewayFailure)

	view, ended, err := f.service.SubmitAnswer(context.Background(), turn.ID, "My answer.", nil, false)
	require.NoError(t, err)
	require.Nil(t, ended)
	require.NotNil(t, view)

	assert.Equal(t, 2, view.Sequence)
	assert.Equal(t, placeholderQuestion, view.QuestionText)

	// The answer evaluation committed before generation was attempted.
	_, ok := f.store.metrics[turn.ID]
	assert.True(t, ok)
}

func TestEndSessionWithoutScoredTurnsLeavesAggregateUnset(t *testing.T) {
	f := newInterviewFixture(t)
	session, _ := f.seedActiveSession(1)

	impl := f.service.(*interviewService)
	require.NoError(t, impl.endSession(session.ID))

	completed := f.store.sessions[session.ID]
	assert.Equal(t, models.SessionCompleted, completed.Status)
	require.NotNil(t, completed.EndedAt)
	assert.Nil(t, completed.AverageScore)
}

func TestCombinedScore(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]float64
		want   float64
	}{
		{
			name:   "uniform scores",
			scores: uniformScores(70),
			want:   70.0,
		},
		{
			name: "mean of eight sub-scores",
			scores: map[string]float64{
				"situation": 90, "task": 80, "action": 70, "result": 60,
				"relevance": 85, "clarity": 75, "confidence": 65, "conciseness": 55,
			},
			want: 72.5,
		},
		{
			name: "rounded to two decimals",
			scores: map[string]float64{
				"situation": 71.11, "task": 71.11, "action": 71.11, "result": 71.11,
				"relevance": 71.11, "clarity": 71.11, "confidence": 71.11, "conciseness": 71.12,
			},
			want: 71.11,
		},
		{
			name:   "empty map",
			scores: map[string]float64{},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombinedScore(tt.scores))
		})
	}
}

func TestCategoryLabelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"},
		{80.01, "A"},
		{80, "A"},
		{79.99, "B"},
		{60, "B"},
		{59.99, "C"},
		{0, "C"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryLabel(tt.score))
		})
	}
}

func TestSequenceStaysContiguousAcrossSession(t *testing.T) {
	f := newInterviewFixture(t)

	view, err := f.service.StartSession(context.Background(), f.candidate.ID, f.role.ID, f.cv.ID)
	require.NoError(t, err)

	var ended *models.SessionEnded
	for i := 0; i < maxSessionTurns; i++ {
		turnID := uuid.MustParse(view.TurnID)
		expectedSequence := i + 1
		assert.Equal(t, expectedSequence, view.Sequence)

		var next *models.QuestionView
		next, ended, err = f.service.SubmitAnswer(context.Background(), turnID, "An answer with enough detail.", nil, false)
		require.NoError(t, err)

		if ended != nil {
			break
		}
		view = next
	}

	// The cap terminated the session on the fifth answered turn.
	require.NotNil(t, ended)
	assert.Equal(t, "ended", ended.Status)
	assert.Len(t, f.store.turns, maxSessionTurns)

	sequences := make(map[int]bool)
	for _, turn := range f.store.turns {
		assert.False(t, sequences[turn.Sequence], "duplicate sequence %d", turn.Sequence)
		sequences[turn.Sequence] = true
	}
	for i := 1; i <= maxSessionTurns; i++ {
		assert.True(t, sequences[i], "missing sequence %d", i)
	}
}
