// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode defines supported error codes used across the booking core
// Wire names are stable for machine consumption; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeInternal is for unclassified errors
	ErrorCodeInternal ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeRepositoryUnavailable is for transient store errors where retry may succeed
	ErrorCodeRepositoryUnavailable

	// ErrorCodeInvalidRequest is for bad input parameters
	ErrorCodeInvalidRequest

	// ErrorCodeValidation is for validation failures (input data)
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing/validation errors
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeUnknownService is for catalog misses on a service id
	ErrorCodeUnknownService

	// ErrorCodeUnknownAddOn is for catalog misses on an add-on id
	ErrorCodeUnknownAddOn

	// ErrorCodeUnknownBarber is for lookups of a barber that does not exist
	ErrorCodeUnknownBarber

	// ErrorCodeUnknownAppointment is for lookups of an appointment that does not exist
	ErrorCodeUnknownAppointment

	// ErrorCodeOutsideBookingWindow is for past dates and today-after-cutoff requests
	ErrorCodeOutsideBookingWindow

	// ErrorCodeDayOff is for dates inside a barber's day-off range
	ErrorCodeDayOff

	// ErrorCodeBarberOffline is for barbers not accepting bookings
	ErrorCodeBarberOffline

	// ErrorCodeQueueFull is for queue cap or aggregate gap budget rejections
	ErrorCodeQueueFull

	// ErrorCodeLunchConflict is for intervals crossing the lunch window
	ErrorCodeLunchConflict

	// ErrorCodeWorkingHoursExceeded is for intervals past working end
	ErrorCodeWorkingHoursExceeded

	// ErrorCodeSlotNotAvailable is for occupied or otherwise unbookable slots
	ErrorCodeSlotNotAvailable

	// ErrorCodeInvalidTransition is for status state-machine violations
	ErrorCodeInvalidTransition

	// ErrorCodeVersionConflict is for optimistic concurrency failures
	ErrorCodeVersionConflict

	// ErrorCodeTimeout is for lock or deadline expiry without mutation
	ErrorCodeTimeout

	// ErrorCodeDuplicateKey is for unique constraint violations
	ErrorCodeDuplicateKey
)

// wireNames are the stable machine codes surfaced at the API boundary
var wireNames = map[ErrorCode]string{
	ErrorCodeInternal:              "Internal",
	ErrorCodePanic:                 "Internal",
	ErrorCodeRepositoryUnavailable: "RepositoryUnavailable",
	ErrorCodeInvalidRequest:        "InvalidRequest",
	ErrorCodeValidation:            "InvalidRequest",
	ErrorCodeJSON:                  "InvalidRequest",
	ErrorCodeNotFound:              "NotFound",
	ErrorCodeUnknownService:        "UnknownService",
	ErrorCodeUnknownAddOn:          "UnknownAddOn",
	ErrorCodeUnknownBarber:         "UnknownBarber",
	ErrorCodeUnknownAppointment:    "UnknownAppointment",
	ErrorCodeOutsideBookingWindow:  "OutsideBookingWindow",
	ErrorCodeDayOff:                "DayOff",
	ErrorCodeBarberOffline:         "BarberOffline",
	ErrorCodeQueueFull:             "QueueFull",
	ErrorCodeLunchConflict:         "LunchConflict",
	ErrorCodeWorkingHoursExceeded:  "WorkingHoursExceeded",
	ErrorCodeSlotNotAvailable:      "SlotNotAvailable",
	ErrorCodeInvalidTransition:     "InvalidTransition",
	ErrorCodeVersionConflict:       "VersionConflict",
	ErrorCodeTimeout:               "Timeout",
	ErrorCodeDuplicateKey:          "VersionConflict",
}

// String returns the stable wire name for the code
func (c ErrorCode) String() string {
	if s, ok := wireNames[c]; ok {
		return s
	}
	return "Internal"
}

// MarshalJSON emits the stable wire name rather than the numeric value
func (c ErrorCode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// HTTPStatusCode turns an ErrorCode into an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound, ErrorCodeUnknownService, ErrorCodeUnknownAddOn,
		ErrorCodeUnknownBarber, ErrorCodeUnknownAppointment:
		return http.StatusNotFound
	case ErrorCodeInvalidRequest:
		return http.StatusUnprocessableEntity
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeOutsideBookingWindow, ErrorCodeDayOff, ErrorCodeBarberOffline,
		ErrorCodeQueueFull, ErrorCodeLunchConflict, ErrorCodeWorkingHoursExceeded,
		ErrorCodeSlotNotAvailable, ErrorCodeInvalidTransition,
		ErrorCodeVersionConflict, ErrorCodeDuplicateKey:
		return http.StatusConflict
	case ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case ErrorCodeRepositoryUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeInternal, ErrorCodePanic:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrNotFound is a sentinel not found error for convenience
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// suggestions carries best-effort alternatives on policy rejections
// orig is the wrapped cause
type Error struct {
	orig        error
	msg         string
	code        ErrorCode
	field       string
	op          string
	suggestions any
}

// Wire is the JSON-serializable form returned by the API
type Wire struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	Field       string    `json:"field,omitempty"`
	Suggestions any       `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Suggestions returns the attached suggestion payload, if any
func (e *Error) Suggestions() any { return e.suggestions }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire {
	return Wire{Code: e.code, Message: e.msg, Field: e.field, Suggestions: e.suggestions}
}

// WireFrom converts any error into a Wire payload with best-effort mapping
// If err is nil, returns the zero-value Wire (no error)
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeInternal, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Internal
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeInternal
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// WithSuggestions attaches a suggestion payload to an *Error (copy-on-write)
// If err isn't *Error, returns err unchanged
func WithSuggestions(err error, s any) error {
	if e, ok := As(err); ok {
		c := *e
		c.suggestions = s
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidRequestf returns an invalid request error
func InvalidRequestf(format string, a ...any) error {
	return Newf(ErrorCodeInvalidRequest, format, a...)
}

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// DuplicateKeyf returns a duplicate key error
func DuplicateKeyf(format string, a ...any) error { return Newf(ErrorCodeDuplicateKey, format, a...) }

// SlotNotAvailablef returns a slot occupancy rejection
func SlotNotAvailablef(format string, a ...any) error {
	return Newf(ErrorCodeSlotNotAvailable, format, a...)
}

// QueueFullf returns a queue capacity rejection
func QueueFullf(format string, a ...any) error { return Newf(ErrorCodeQueueFull, format, a...) }

// LunchConflictf returns a lunch crossing rejection
func LunchConflictf(format string, a ...any) error {
	return Newf(ErrorCodeLunchConflict, format, a...)
}

// WorkingHoursf returns a working hours rejection
func WorkingHoursf(format string, a ...any) error {
	return Newf(ErrorCodeWorkingHoursExceeded, format, a...)
}

// OutsideWindowf returns a booking window rejection
func OutsideWindowf(format string, a ...any) error {
	return Newf(ErrorCodeOutsideBookingWindow, format, a...)
}

// InvalidTransitionf returns a state machine rejection
func InvalidTransitionf(format string, a ...any) error {
	return Newf(ErrorCodeInvalidTransition, format, a...)
}

// VersionConflictf returns an optimistic concurrency rejection
func VersionConflictf(format string, a ...any) error {
	return Newf(ErrorCodeVersionConflict, format, a...)
}

// Timeoutf returns a lock or deadline expiry error
func Timeoutf(format string, a ...any) error { return Newf(ErrorCodeTimeout, format, a...) }

// Unavailablef returns a repository unavailable error
func Unavailablef(format string, a ...any) error {
	return Newf(ErrorCodeRepositoryUnavailable, format, a...)
}

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeInternal, format, a...) }

// HTTP bundles status + wire in one shot (nice for handlers)
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// Retry semantics

// Retryable reports whether the error is retryable. Delegates to backend-specific logic.
// Currently backed by Postgres helpers in pg.go (IsRetryable), and can be extended.
func Retryable(err error) bool { return IsRetryable(err) }
