package common

import (
	"errors"
	"fmt"
)

// Attempt-level failure kinds. The retry loop catches these, counts them
// against the attempt budget, and never lets them escape to the caller
// individually.
var (
	ErrTransport         = errors.New("provider transport error")
	ErrMalformedResponse = errors.New("no JSON payload found in response")
	ErrParse             = errors.New("response JSON is not well-formed")
	ErrSchema            = errors.New("response missing required shape")
	ErrEnum              = errors.New("value outside allowed set")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("resource not found")
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// TerminalError is the only error kind that crosses the pipeline boundary.
// It summarizes why the retry budget (and fallback, if any) was exhausted;
// the handler renders its message in the failed envelope. The message carries
// only the last failure's summary; attempt counts stay in the struct fields
// for logs and never reach the caller-facing string.
type TerminalError struct {
	Attempts int   // primary attempts issued
	Fallback bool  // whether a fallback attempt was also issued
	Last     error // last underlying attempt failure
}

func (e *TerminalError) Error() string {
	if e.Fallback {
		return fmt.Sprintf("extraction failed after exhausting retries and fallback: %v", e.Last)
	}
	return fmt.Sprintf("extraction failed after exhausting retries: %v", e.Last)
}

func (e *TerminalError) Unwrap() error {
	return e.Last
}

// IsTerminal reports whether err is (or wraps) a TerminalError.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
