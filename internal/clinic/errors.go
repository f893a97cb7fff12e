package clinic

import (
	"errors"
	"fmt"
)

// ErrSubmissionInFlight is returned when a mutation is attempted while an
// identical one is still waiting on the backend.
var ErrSubmissionInFlight = errors.New("a request for this record is already in flight")

// ValidationError is detected on the client (or a backend rejection of the
// submitted fields) and blocks the mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ExternalServiceError means the backend failed or could not be reached.
type ExternalServiceError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the backend answered with a 4xx other than 401.
func (e *ExternalServiceError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != 401
}

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return "authentication failed: " + e.Message
}

// UserMessage turns any error into the short line shown next to the control
// that triggered it.
func UserMessage(err error) string {
	var vErr *ValidationError
	var sErr *ExternalServiceError
	var aErr *AuthenticationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.As(err, &aErr):
		return "Invalid username or password"
	case errors.Is(err, ErrSubmissionInFlight):
		return "Please wait for the previous request to finish"
	case errors.As(err, &sErr):
		if sErr.Message != "" && sErr.StatusCode != 0 {
			return fmt.Sprintf("%s failed: %s", sErr.Op, sErr.Message)
		}
		return fmt.Sprintf("%s failed: service unavailable", sErr.Op)
	default:
		return err.Error()
	}
}
