package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetwork covers transport failures and responses that are not JSON.
	ErrNetwork = errors.New("backend unreachable")

	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrCardNotLinked = errors.New("card not linked")
	ErrNoItems       = errors.New("no items selected")
)

// Error is a verdict returned by the backend: a 4xx/5xx status or a 2xx
// reply with "ok": false. Message is the server's own text, if any.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed (%d)", e.Status)
	}
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// Is maps the status and message onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrCardNotLinked:
		return strings.Contains(strings.ToLower(e.Message), "not found")
	}
	return false
}

// Conflict reports a 409 reply.
func (e *Error) Conflict() bool {
	return e.Status == http.StatusConflict
}

// ServerMessage returns the backend's message text.
func (e *Error) ServerMessage() string {
	return e.Message
}
