package cm

import (
	"errors"
	"fmt"
)

// ErrCommandConsumed is returned by a second Wait on the same handle.
var ErrCommandConsumed = errors.New("command handle already waited on")

// APIError is a non-2xx response from the manager.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cm api %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("cm api %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// CommandError reports a command that finished without success.
type CommandError struct {
	ID      int64
	Name    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s (%d) failed: %s", e.Name, e.ID, e.Message)
}

// errorBody is the JSON body the manager returns on failures.
type errorBody struct {
	Message string `json:"message"`
}
