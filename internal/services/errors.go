package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/platform/apierr"
)

const (
	CodeUnknownSymptom     = "unknown_symptom"
	CodeUnknownDisorder    = "unknown_disorder"
	CodeInvalidSeverity    = "invalid_severity"
	CodeAlreadyAnswered    = "already_answered"
	CodeInvalidInput       = "invalid_input"
	CodeImmutableCode      = "immutable_code"
	CodeEmptyRule          = "empty_rule"
	CodeConsultationClosed = "consultation_closed"
	CodeConcurrentUpdate   = "concurrent_update"
	CodeSessionBusy        = "session_busy"
	CodeInUse              = "in_use"
	CodeLastRule           = "last_rule"
	CodeDuplicateCode      = "duplicate_code"
	CodeMisconfigured      = "knowledge_base_misconfigured"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeInternal           = "internal"
)

var errConcurrentUpdate = errors.New("consultation was modified concurrently, retry the request")

// translateEngineError maps engine sentinels onto API errors. Unknown errors
// pass through untouched.
func translateEngineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrUnknownSymptom):
		return apierr.Validation(CodeUnknownSymptom, err)
	case errors.Is(err, engine.ErrInvalidSeverity):
		return apierr.Validation(CodeInvalidSeverity, err)
	case errors.Is(err, engine.ErrAlreadyAnswered):
		return apierr.Validation(CodeAlreadyAnswered, err)
	case errors.Is(err, engine.ErrSessionClosed):
		return apierr.Conflict(CodeConsultationClosed, err)
	case errors.Is(err, engine.ErrMisconfigured):
		return apierr.Internal(CodeMisconfigured, err)
	case errors.Is(err, ErrLockTimeout):
		return apierr.New(http.StatusConflict, CodeSessionBusy, err)
	default:
		return err
	}
}
