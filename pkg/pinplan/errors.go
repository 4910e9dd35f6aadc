package pinplan

import "fmt"

// ErrorClass is a stable failure category for planning and verification.
type ErrorClass string

const (
	InvalidPinCount ErrorClass = "INVALID_PIN_COUNT"
	PlanningStalled ErrorClass = "PLANNING_STALLED"
	OracleFailure   ErrorClass = "ORACLE_FAILURE"
	Canceled        ErrorClass = "CANCELED"
	InvalidJob      ErrorClass = "INVALID_JOB"
)

// Error is the structured error type returned by this package.
type Error struct {
	Class   ErrorClass
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pinplan: %s: %s: %v", e.Class, e.Message, e.Cause)
	}
	return fmt.Sprintf("pinplan: %s: %s", e.Class, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same class, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Class == e.Class
}

// Sentinels for errors.Is.
var (
	ErrInvalidPinCount = &Error{Class: InvalidPinCount, Message: "invalid pin count"}
	ErrPlanningStalled = &Error{Class: PlanningStalled, Message: "batch covered no new pairs"}
	ErrOracleFailure   = &Error{Class: OracleFailure, Message: "oracle failed"}
	ErrCanceled        = &Error{Class: Canceled, Message: "canceled"}
	ErrInvalidJob      = &Error{Class: InvalidJob, Message: "invalid job"}
)

func newError(class ErrorClass, cause error, format string, args ...interface{}) *Error {
	return &Error{Class: class, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func validatePinCount(op string, n int) error {
	if n < 0 {
		return newError(InvalidPinCount, nil, "%s: pin count must be ≥0, got %d", op, n)
	}
	return nil
}
