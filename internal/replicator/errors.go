package replicator

import (
	"errors"
	"fmt"
)

// ErrDestinationLocked is returned when another run holds the destination lock.
var ErrDestinationLocked = errors.New("destination is locked by another run")

// ErrNoRecipes is returned when no recipe matches the requested medium.
var ErrNoRecipes = errors.New("no recipes for medium")

// ToolUnavailable reports a binary required by the selected recipes that
// cannot be executed.
type ToolUnavailable struct {
	Name    string
	Command string
	Detail  string
}

func (e *ToolUnavailable) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s is not available: %s", e.Name, e.Detail)
	}
	return fmt.Sprintf("%s is not available (%s)", e.Name, e.Command)
}

// ErrorKind classifies the failure for callers that map errors to outcomes.
func (e *ToolUnavailable) ErrorKind() string { return "configuration" }
