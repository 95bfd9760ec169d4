package core

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Core Error Types
// =============================================================================

// PhaseError represents a stage failure that aborts the invocation
type PhaseError struct {
	Phase     string
	Step      string // pipeline step that failed (load_inputs, invoke_model, ...)
	Cause     error
	Timestamp time.Time
}

func (e *PhaseError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("phase %s failed at %s: %v", e.Phase, e.Step, e.Cause)
	}
	return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Cause)
}

func (e *PhaseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a configuration or flag value that was rejected
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// Predefined Error Values
// =============================================================================

var (
	ErrNoAPIKey          = errors.New("API key not configured")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported requirements format")
	ErrProjectNotFound   = errors.New("project path not found")
	ErrNoSourceFiles     = errors.New("no code files found to review")
	ErrEmptyResponse     = errors.New("empty response from model")
)

// =============================================================================
// Error Creation Helpers
// =============================================================================

// NewPhaseError creates a new PhaseError with timestamp
func NewPhaseError(phase, step string, cause error) *PhaseError {
	return &PhaseError{
		Phase:     phase,
		Step:      step,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
