package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider         = errors.New("unknown provider")
	ErrProviderNotConfigured   = errors.New("provider not configured")
	ErrProviderRequestFailed   = errors.New("provider request failed")
	ErrProviderResponseInvalid = errors.New("provider response invalid")
	ErrTrackerNotConfigured    = errors.New("issue tracker not configured")
	ErrRepoInaccessible        = errors.New("repository inaccessible")
	ErrTrackerRequestFailed    = errors.New("issue tracker request failed")
)

// Stage names the pipeline step a request failed in.
type Stage string

const (
	StageConfiguration Stage = "configuration"
	StageAccess        Stage = "access"
	StageGeneration    Stage = "generation"
	StageValidation    Stage = "validation"
	StageTracker       Stage = "tracker"
)

// SchemaViolation names the first plan field that failed validation.
type SchemaViolation struct {
	Field  string
	Reason string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
}

// ResponseError carries the raw model reply for diagnostics.
// It matches ErrProviderResponseInvalid and unwraps to the cause (often a *SchemaViolation).
type ResponseError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrProviderResponseInvalid, e.Provider, e.Err)
}

func (e *ResponseError) Unwrap() []error {
	return []error{ErrProviderResponseInvalid, e.Err}
}

// StageError pins an error that carries no taxonomy sentinel, such as a context error,
// to the stage it interrupted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf maps a pipeline error to the stage that produced it.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	switch {
	case errors.Is(err, ErrUnknownProvider),
		errors.Is(err, ErrProviderNotConfigured),
		errors.Is(err, ErrTrackerNotConfigured):
		return StageConfiguration
	case errors.Is(err, ErrRepoInaccessible):
		return StageAccess
	case errors.Is(err, ErrProviderResponseInvalid):
		return StageValidation
	case errors.Is(err, ErrTrackerRequestFailed):
		return StageTracker
	default:
		return StageGeneration
	}
}
