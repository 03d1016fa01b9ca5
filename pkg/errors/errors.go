package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Placement validation errors. These abort the requested operation before any
// state change and are surfaced to the caller as-is.
var (
	ErrExceedsClosingTime = New("EXCEEDS_CLOSING_TIME", http.StatusUnprocessableEntity, "class cannot end after the school closing time")
	ErrOverlapsBreak      = New("OVERLAPS_BREAK", http.StatusUnprocessableEntity, "class cannot overlap the break window")
	ErrSlotFull           = New("SLOT_FULL", http.StatusUnprocessableEntity, "slot already holds the maximum number of classes")
	ErrWrongTeacher       = New("WRONG_TEACHER", http.StatusUnprocessableEntity, "subject is assigned to a different teacher")
	ErrEmptySelection     = New("EMPTY_SELECTION", http.StatusBadRequest, "group, subject and start slot are required")
)

// Referential errors. The caller must resolve the reference manually and retry.
var (
	ErrTeacherInUse  = New("TEACHER_IN_USE", http.StatusConflict, "teacher is assigned as tutor or to a subject; reassign first")
	ErrDuplicateName = New("DUPLICATE_NAME", http.StatusConflict, "an entry with that name already exists")
)

// Generic errors shared across handlers and services.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrStorage            = New("STORAGE_ERROR", http.StatusServiceUnavailable, "change kept in memory but could not be persisted")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return target != nil && e.Code == target.Code
}
