package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error carrying a stable code and HTTP status.
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

// Predefined errors for common scenarios.
var (
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict          = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation        = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnauthorized      = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrIllegalTransition = New("ILLEGAL_TRANSITION", http.StatusBadRequest, "illegal status transition")
	ErrCapacityFull      = New("CAPACITY_FULL", http.StatusConflict, "section capacity is full")
	ErrCreditOutOfRange  = New("CREDIT_OUT_OF_RANGE", http.StatusBadRequest, "total credits outside allowed range")
	ErrNotEnrolled       = New("NOT_ENROLLED", http.StatusPreconditionFailed, "student not enrolled in course")
	ErrNotRegistered     = New("NOT_REGISTERED", http.StatusPreconditionFailed, "student has no registration for this window")
	ErrNoActiveWindow    = New("NO_ACTIVE_WINDOW", http.StatusPreconditionFailed, "no ongoing semester registration")
	ErrRoomConflict      = New("ROOM_CONFLICT", http.StatusConflict, "room is already booked")
	ErrFacultyConflict   = New("FACULTY_CONFLICT", http.StatusConflict, "faculty is already booked")
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
