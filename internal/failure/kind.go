// Package failure classifies every server-observable failure into one of a
// closed set of kinds and renders those kinds as JSON error envelopes.
//
// Handlers return a Kind (or any error, which Classify maps onto a Kind) and
// the HTTP boundary turns it into a response with Write. 4xx kinds carry a
// user-facing payload. 5xx kinds carry an underlying cause that is logged but
// never sent to the client.
package failure

import (
	"net/http"
)

// Kind is one of the failure variants declared in this package.
// The unexported method seals the set: no other package can add a variant.
type Kind interface {
	error
	kind()
}

// BadRequest is returned when the request itself is malformed.
// Reason is sent to the client verbatim.
type BadRequest struct {
	Reason string
}

// Unauthorized is returned when the request lacks valid credentials.
type Unauthorized struct{}

// Forbidden is returned when the caller may not perform the action.
type Forbidden struct{}

// NotFound is returned when the addressed resource does not exist.
type NotFound struct{}

// Conflict is returned when the request collides with existing state.
type Conflict struct {
	Reason string
}

// UnprocessableEntity is returned when the request body is well-formed but
// fails field validation. Details maps each offending field to its messages.
type UnprocessableEntity struct {
	Details *Details
}

// DatabaseFault wraps an error raised by the database or the connection pool.
type DatabaseFault struct {
	Err error
}

// IOFault wraps an I/O error (filesystem, network, stream).
type IOFault struct {
	Err error
}

// InternalFault wraps any other server-side error.
type InternalFault struct {
	Err error
}

func (BadRequest) kind()          {}
func (Unauthorized) kind()        {}
func (Forbidden) kind()           {}
func (NotFound) kind()            {}
func (Conflict) kind()            {}
func (UnprocessableEntity) kind() {}
func (DatabaseFault) kind()       {}
func (IOFault) kind()             {}
func (InternalFault) kind()       {}

func (e BadRequest) Error() string        { return "invalid input: " + e.Reason }
func (Unauthorized) Error() string        { return "unauthorized" }
func (Forbidden) Error() string           { return "forbidden" }
func (NotFound) Error() string            { return "not found" }
func (e Conflict) Error() string          { return "conflict: " + e.Reason }
func (UnprocessableEntity) Error() string { return "unprocessable entity" }

func (e DatabaseFault) Error() string { return "database error: " + causeText(e.Err) }
func (e IOFault) Error() string       { return "io error: " + causeText(e.Err) }
func (e InternalFault) Error() string { return "internal error: " + causeText(e.Err) }

func (e DatabaseFault) Unwrap() error { return e.Err }
func (e IOFault) Unwrap() error       { return e.Err }
func (e InternalFault) Unwrap() error { return e.Err }

func causeText(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

// Messages shown to clients for kinds without a caller-supplied payload.
const (
	MsgUnauthorized  = "Authentication Required"
	MsgForbidden     = "User may not perform that action"
	MsgNotFound      = "Resource Not Found"
	MsgUnprocessable = "Error in the Request Body"
	MsgDatabase      = "An error occurred with the database"
	MsgInternal      = "An internal server error occurred"
)

// StatusCode returns the HTTP status for k.
func StatusCode(k Kind) int {
	switch k.(type) {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case UnprocessableEntity:
		return http.StatusUnprocessableEntity
	case DatabaseFault, IOFault, InternalFault:
		return http.StatusInternalServerError
	default:
		// Unreachable for the sealed set; a nil Kind lands here.
		return http.StatusInternalServerError
	}
}

// Message returns the client-visible message for k. It never includes the
// cause of a 5xx kind.
func Message(k Kind) string {
	switch k := k.(type) {
	case BadRequest:
		return k.Reason
	case Unauthorized:
		return MsgUnauthorized
	case Forbidden:
		return MsgForbidden
	case NotFound:
		return MsgNotFound
	case Conflict:
		return "Conflict: " + k.Reason
	case UnprocessableEntity:
		return MsgUnprocessable
	case DatabaseFault:
		return MsgDatabase
	default:
		return MsgInternal
	}
}

// Name returns a stable snake_case identifier for k, used in log records.
func Name(k Kind) string {
	switch k.(type) {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case UnprocessableEntity:
		return "unprocessable_entity"
	case DatabaseFault:
		return "database_fault"
	case IOFault:
		return "io_fault"
	case InternalFault:
		return "internal_fault"
	default:
		return "unknown"
	}
}

// Cause returns the underlying error of a 5xx kind and nil for every 4xx kind.
func Cause(k Kind) error {
	switch k := k.(type) {
	case DatabaseFault:
		return k.Err
	case IOFault:
		return k.Err
	case InternalFault:
		return k.Err
	default:
		return nil
	}
}

// IsServerFault reports whether k is one of the 5xx kinds.
func IsServerFault(k Kind) bool {
	return StatusCode(k) >= http.StatusInternalServerError
}
