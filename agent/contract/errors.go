package contract

import (
	"errors"
	"fmt"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidState    = errors.New("session state is invalid")
	ErrDirectory       = errors.New("credential directory lookup failed")
	ErrStepLimit       = errors.New("assistant step limit reached")
)

// CollaboratorError reports a failed assistant call. The session is never
// mutated when one is returned, so the same utterance can be retried.
type CollaboratorError struct {
	Agent string
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s Error: %v", e.Agent, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
