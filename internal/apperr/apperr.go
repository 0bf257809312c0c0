// Package apperr defines the error taxonomy shared by the listing engine,
// the status workflow and the transports.
//
//	ErrNotFound          record missing           → 404 / NotFound
//	*ValidationError     bad write payload        → 400 / InvalidArgument
//	*TransitionError     workflow refused change  → 409 / FailedPrecondition
//	*SourceError         backing store failure    → 503 / Unavailable
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist (anymore).
var ErrNotFound = errors.New("record not found")

// ErrSourceUnavailable is matched by every *SourceError via errors.Is.
var ErrSourceUnavailable = errors.New("record source unavailable")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a *ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TransitionError reports a status change or deletion refused by the
// workflow engine. No state was mutated.
type TransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.From == "" && e.To == "" {
		return e.Reason
	}
	if e.To == "" {
		return fmt.Sprintf("transition rejected from %s: %s", e.From, e.Reason)
	}
	return fmt.Sprintf("transition %s → %s rejected: %s", e.From, e.To, e.Reason)
}

// SourceError wraps a failure of the backing store (network, driver, SQL).
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// Source wraps err as a *SourceError unless it is nil or already part of the
// taxonomy.
func Source(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSourceUnavailable) {
		return err
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	var te *TransitionError
	if errors.As(err, &te) {
		return err
	}
	return &SourceError{Op: op, Err: err}
}

// IsTransitionRejected reports whether err is (or wraps) a *TransitionError.
func IsTransitionRejected(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
