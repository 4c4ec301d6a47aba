package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTeamNotFound is returned when a team id is not in the roster.
	ErrTeamNotFound = errors.New("team not found")
	// ErrQuestionNotFound indicates a question id is not in its difficulty set.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrConfirmationNotFound covers unknown, used and expired confirmation tokens.
	ErrConfirmationNotFound = errors.New("confirmation not found or expired")
	// ErrOperationInProgress is held by a team while a score change is outstanding.
	ErrOperationInProgress = errors.New("operation in progress")
)

// ValidationError is a local precondition failure. It is always raised
// before any request reaches the remote service.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError for field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpdateFailedError wraps a transport or server failure from the remote
// team-storage service.
type UpdateFailedError struct {
	Op     string
	TeamID string
	Err    error
}

func (e *UpdateFailedError) Error() string {
	if e.TeamID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed for team %s: %v", e.Op, e.TeamID, e.Err)
}

func (e *UpdateFailedError) Unwrap() error { return e.Err }

// NameConflictError is returned when a team name is already taken.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("team name %q already exists", e.Name)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
