package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/metrics"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Result is the envelope of the book create and update endpoints.
type Result struct {
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteErr renders err. Caller-correctable errors keep their status; anything
// else is logged and hidden behind a 500.
func WriteErr(w http.ResponseWriter, r *http.Request, err error) {
	var ae *errs.AppErr
	if !errors.As(err, &ae) {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	if ae.Cause != nil {
		slog.InfoContext(r.Context(), "request rejected", "status", ae.StatusCode, "err", ae.Message(), "cause", ae.Cause)
	}
	switch ae.StatusCode {
	case http.StatusUnauthorized:
		metrics.AccessDenied.WithLabelValues("unauthenticated").Inc()
	case http.StatusForbidden:
		metrics.AccessDenied.WithLabelValues("forbidden").Inc()
	}
	var details interface{}
	if fields, ok := errs.FieldErrors(err); ok {
		details = fields.ByField()
	}
	WriteError(w, ae.StatusCode, ae.Code, ae.Message(), details)
}

// WriteResult renders a validation failure as {message, errors} and any other
// error through WriteErr.
func WriteResult(w http.ResponseWriter, r *http.Request, failMsg string, err error) {
	if fields, ok := errs.FieldErrors(err); ok {
		WriteJSON(w, http.StatusBadRequest, Result{Message: failMsg, Errors: fields.ByField()})
		return
	}
	WriteErr(w, r, err)
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errs.InvalidField("body", "malformed JSON: "+err.Error())
}

// DecodeAfter reads the body only when the caller's access check passed, so a
// malformed payload never outranks a 403.
func DecodeAfter(r *http.Request, denied error, v interface{}) error {
	if denied != nil {
		return denied
	}
	return Decode(r, v)
}

// IDParam parses a numeric URL parameter. Routes constrain ids to digits, so
// a failure here is an id too large to exist.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NotFound(name)
	}
	return id, nil
}
