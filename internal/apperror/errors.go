// Package apperror defines the closed set of error kinds the catalog API
// reports and the HTTP status each kind maps to.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// Internal is the catch-all for anything unanticipated.
	Internal Kind = iota
	InvalidInput
	AuthRejected
	RouteNotFound
	ResourceNotFound
	UniqueConstraint
	MalformedBody
	StorageFailure
)

var kindNames = map[Kind]string{
	Internal:         "internal",
	InvalidInput:     "invalid_input",
	AuthRejected:     "auth_rejected",
	RouteNotFound:    "route_not_found",
	ResourceNotFound: "resource_not_found",
	UniqueConstraint: "unique_constraint",
	MalformedBody:    "malformed_body",
	StorageFailure:   "storage_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status returns the HTTP status code for the kind.
func Status(k Kind) int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case AuthRejected:
		return http.StatusUnauthorized
	case RouteNotFound, ResourceNotFound:
		return http.StatusNotFound
	case UniqueConstraint, MalformedBody:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients; Err holds
// the underlying cause, if any, and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Details carries per-field information, e.g. validation failures.
	Details map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// DetailsOf returns the per-field details of the first *Error in err's
// chain, or nil.
func DetailsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		return appErr.Details
	}
	return nil
}

// PublicMessage returns the message that may be sent to a client.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Internal Server Error"
	}
	if appErr.Kind == Internal && appErr.Message == "" {
		return "Internal Server Error"
	}
	return appErr.Message
}
