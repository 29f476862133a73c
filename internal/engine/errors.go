package engine

import "errors"

var (
	// ErrMisconfigured marks a knowledge base the engine cannot run on (empty
	// question bank, no rules, rules pointing at missing symptoms or disorders).
	ErrMisconfigured = errors.New("knowledge base misconfigured")
	// ErrExhausted is returned by the selector when every symptom was asked.
	ErrExhausted = errors.New("question bank exhausted")

	ErrSessionClosed   = errors.New("consultation is not in progress")
	ErrUnknownSymptom  = errors.New("unknown symptom code")
	ErrAlreadyAnswered = errors.New("symptom already answered")
	ErrInvalidSeverity = errors.New("invalid severity")
)
