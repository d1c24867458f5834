package scheduling

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation is unwrapped from every *ValidationError
	ErrValidation = errors.New("scheduling: validation failed")

	// ErrDoctorNotFound is returned when availability is asked for a missing doctor
	ErrDoctorNotFound = errors.New("scheduling: doctor not found")

	// ErrInvalidArgument is returned for a missing or malformed argument
	ErrInvalidArgument = errors.New("scheduling: invalid argument")

	// ErrCancellationWindowClosed is returned when a patient cancels too close to the visit
	ErrCancellationWindowClosed = errors.New("scheduling: cancellation window closed")
)

// ErrorKind classifies a single field failure.
type ErrorKind string

const (
	KindRequired              ErrorKind = "Required"
	KindInvalidReference      ErrorKind = "InvalidReference"
	KindInvalidDate           ErrorKind = "InvalidDate"
	KindPastDate              ErrorKind = "PastDateError"
	KindInsufficientNotice    ErrorKind = "InsufficientNoticeError"
	KindBookingWindowExceeded ErrorKind = "BookingWindowExceededError"
	KindOutsideBusinessHours  ErrorKind = "OutsideBusinessHoursError"
	KindTextTooLong           ErrorKind = "TextTooLongError"
	KindInvalidValue          ErrorKind = "InvalidValue"
)

// FieldError is the failure of one field.
type FieldError struct {
	Kind    ErrorKind
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// ValidationError aggregates every failing field of a request.
type ValidationError struct {
	Fields map[string]*FieldError
}

// NewValidationError returns an empty aggregate.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]*FieldError)}
}

// Add records fe under field. A nil fe is ignored; the first error per field wins.
func (e *ValidationError) Add(field string, fe *FieldError) {
	if fe == nil {
		return
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = fe
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Kind returns the failure kind of field, or "" when it passed.
func (e *ValidationError) Kind(field string) ErrorKind {
	if fe, ok := e.Fields[field]; ok {
		return fe.Kind
	}
	return ""
}

// Details returns field -> message for the response body.
func (e *ValidationError) Details() map[string]string {
	details := make(map[string]string, len(e.Fields))
	for field, fe := range e.Fields {
		details[field] = fe.Message
	}
	return details
}

// OrNil returns e when it holds errors and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field].Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
