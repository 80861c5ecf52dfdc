package availability

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNothingSelected      = errors.New("Please select slots to perform bulk action")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrSaveInProgress       = errors.New("a save is already in progress")
	ErrNoOpenForm           = errors.New("no slot form is open")
	ErrSessionNotFound      = errors.New("editing session not found or expired")
	ErrUnsupportedFormat    = errors.New("unsupported export format")
)

// ValidationError lists every failed rule of a rejected form.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ConfirmationRequiredError is returned by an unconfirmed bulk delete.
type ConfirmationRequiredError struct {
	Count int
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("Are you sure you want to delete %d slots?", e.Count)
}

func (e *ConfirmationRequiredError) Is(target error) bool {
	return target == ErrConfirmationRequired
}

// StoreError wraps a failure of the slot store. The session state is left as it was.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
