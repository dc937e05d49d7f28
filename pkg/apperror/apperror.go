// Package apperror defines the typed errors produced by the application
// services. Handlers translate these into HTTP responses so the mapping from
// failure kind to status code lives in exactly one place.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an application error.
type Kind int

const (
	// Unknown is for unspecified errors
	Unknown Kind = iota
	// NotFound means the requested entity (user, blog post) does not exist
	NotFound
	// ValidationFailed means the input was rejected, e.g. by the password
	// policy or because a referenced role does not exist. Violations carries
	// the individual rule failures.
	ValidationFailed
	// OtpInvalidOrExpired means the supplied one-time passcode did not match
	// or was already consumed
	OtpInvalidOrExpired
	// DeliveryFailed means an email could not be handed to the transport
	DeliveryFailed
	// DependentDataDeletionFailed means a user's blog content could not be
	// removed, so the account deletion was aborted before touching the user
	DependentDataDeletionFailed
	// PartialFailure means dependent data was removed but the primary entity
	// was not; the system needs manual reconciliation
	PartialFailure
	// CollaboratorUnavailable means a backing service (database, OTP store,
	// mail transport, search) errored
	CollaboratorUnavailable
	// Unauthorized means the caller lacks a valid identity for the operation
	Unauthorized
)

// Error is the application error type carried across service boundaries.
type Error struct {
	Kind       Kind
	Message    string
	Violations []string // individual rule failures, optional
	Err        error    // underlying cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an application error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an application error of the given kind with an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithViolations attaches rule violations and returns the error.
func (e *Error) WithViolations(v []string) *Error {
	e.Violations = v
	return e
}

// KindOf extracts the Kind of err, or Unknown for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unknown
}

// ViolationsOf extracts attached rule violations, nil if there are none.
func ViolationsOf(err error) []string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Violations
	}
	return nil
}

// HTTPStatus maps an error kind to the status code handlers should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed, OtpInvalidOrExpired:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case DeliveryFailed, DependentDataDeletionFailed, CollaboratorUnavailable:
		return http.StatusBadGateway
	case PartialFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
