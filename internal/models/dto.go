package models

import "time"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type RegisterResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UploadCvResponse struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidate_id"`
	FileName    string `json:"file_name"`
	IndexStatus string `json:"index_status"`
}

type StartInterviewRequest struct {
	CandidateID string `json:"candidate_id"`
	RoleID      string `json:"role_id"`
	CvID        string `json:"cv_id"`
}

type SubmitAnswerRequest struct {
	TurnID          string `json:"turn_id"`
	RawAnswer       string `json:"raw_answer"`
	ResponseLatency *int   `json:"response_latency,omitempty"`
	ForceFinal      bool   `json:"force_final"`
}

// QuestionView is the public shape of a freshly generated turn.
type QuestionView struct {
	TurnID       string `json:"turn_id"`
	SessionID    string `json:"session_id"`
	Sequence     int    `json:"sequence"`
	Kind         string `json:"kind"`
	QuestionText string `json:"question_text"`
}

// SessionEnded marks the terminal response of an answer submission.
type SessionEnded struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}
