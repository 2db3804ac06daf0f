// Package apierr is the error taxonomy of the JSON API.
//
// Handlers and policies return *Error values (or wrap them); Write maps any
// error onto an HTTP status and a {"error": "..."} body. Errors that are not
// *Error, and Upstream errors, are reported as a generic 500 while the cause
// is logged.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies an API error.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindMethodNotAllowed
	KindTooManyRequests
	KindUpstream
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API error with a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, apierr.Forbidden("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "Not authenticated"
	}
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "Forbidden"
	}
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = "Not found"
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict reports a stale write (the project changed since it was read).
func Conflict(msg string) *Error {
	if msg == "" {
		msg = "Project was modified by another request; reload and retry"
	}
	return &Error{Kind: KindConflict, Message: msg}
}

func MethodNotAllowed() *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: "Method not allowed"}
}

func TooManyRequests(msg string) *Error {
	if msg == "" {
		msg = "Too many requests"
	}
	return &Error{Kind: KindTooManyRequests, Message: msg}
}

// Upstream wraps a failed identity-provider or AI-provider call.
// The message is returned to the client; the cause is only logged.
func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: cause}
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Write renders err as a JSON error response.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		if log != nil {
			log.Error("unhandled API error", zap.Error(err))
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}

	status := e.Kind.Status()
	if status >= 500 && log != nil {
		log.Error("API request failed",
			zap.String("message", e.Message),
			zap.Error(e.Err))
	}
	WriteJSON(w, status, map[string]string{"error": e.Message})
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MethodNotAllowedHandler is mounted as a router's MethodNotAllowed handler.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
}
