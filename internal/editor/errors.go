package editor

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation is triggered while another operation
// of the same category is still in flight.
var ErrBusy = errors.New("operation already in progress")

// Op identifies a controller operation category.
type Op string

const (
	OpLoad   Op = "load"
	OpUpload Op = "upload"
	OpSave   Op = "save"
)

// Error wraps a failed remote operation.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s profile: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// messenger is implemented by errors that carry a message meant for end users.
type messenger interface {
	UserMessage() string
}

// userMessage extracts the message to show for err, or fallback when err
// carries none.
func userMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var m messenger
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
