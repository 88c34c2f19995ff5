// Package errs holds the caller-correctable error kinds returned by services.
// None of them is retried; each maps onto one HTTP status.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/baharkarakas/librarium/internal/validate"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("integrity violation")
)

type AppErr struct {
	StatusCode int
	Code       string
	err        error
	Details    string
	Fields     validate.Errs // set for validation errors only
	Cause      error
}

func (e *AppErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// Unwrap exposes the kind sentinel and the cause, so both
// errors.Is(err, ErrConflict) and errors.Is(err, <store error>) hold.
func (e *AppErr) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.Cause}
}

// Message is the client-facing text: details when present, else the kind.
func (e *AppErr) Message() string {
	if e.Details != "" {
		return e.Details
	}
	return e.err.Error()
}

func Invalid(fields validate.Errs) *AppErr {
	return &AppErr{StatusCode: http.StatusBadRequest, Code: "validation_error", err: ErrValidation, Fields: fields}
}

// InvalidField is a single-field validation error.
func InvalidField(field, msg string) *AppErr {
	return Invalid(validate.Errs{{Field: field, Msg: msg}})
}

func Forbidden(details string) *AppErr {
	return &AppErr{StatusCode: http.StatusForbidden, Code: "forbidden", err: ErrForbidden, Details: details}
}

func Unauthorized(details string) *AppErr {
	return &AppErr{StatusCode: http.StatusUnauthorized, Code: "unauthorized", err: ErrUnauthorized, Details: details}
}

func NotFound(entity string) *AppErr {
	return &AppErr{StatusCode: http.StatusNotFound, Code: "not_found", err: ErrNotFound, Details: entity + " not found"}
}

func Conflict(details string, cause error) *AppErr {
	return &AppErr{StatusCode: http.StatusConflict, Code: "conflict", err: ErrConflict, Details: details, Cause: cause}
}

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }

// FieldErrors extracts the per-field messages of a validation error.
func FieldErrors(err error) (validate.Errs, bool) {
	var ae *AppErr
	if errors.As(err, &ae) && errors.Is(ae.err, ErrValidation) {
		return ae.Fields, true
	}
	return nil, false
}
