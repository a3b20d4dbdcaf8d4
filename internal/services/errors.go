package services

import "errors"

var (
	// ErrGatewayFailure covers a missing credential, an upstream API
	// error or a transport error while talking to the generative model.
	ErrGatewayFailure = errors.New("model gateway failure")

	// ErrMalformedModelOutput means the model's response violated the
	// structured output contract. Deterministic for a given input, so
	// never retried and never defaulted.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrSessionCompleted is returned when an operation targets a
	// session that has already ended.
	ErrSessionCompleted = errors.New("interview session already completed")

	// ErrTurnAlreadyAnswered is returned when an answer is re-submitted
	// to a turn that was answered before.
	ErrTurnAlreadyAnswered = errors.New("question turn already answered")
)
