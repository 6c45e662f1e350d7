package reservation

import "errors"

// ErrConflict is returned when a proposed range overlaps a known
// reservation, whether found locally or reported by the backend.
var ErrConflict = errors.New("time slot already reserved")

// ErrBusy is returned when a submission is already in progress.
var ErrBusy = errors.New("submission in progress")

// ErrUnavailable wraps transport failures talking to the backend.
var ErrUnavailable = errors.New("backend unavailable")

// ValidationError is a local input error. It is never sent to the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Rejection is implemented by backend errors carrying a server verdict
// (as opposed to transport failures).
type Rejection interface {
	error
	Conflict() bool
	ServerMessage() string
}
