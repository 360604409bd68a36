package toolexec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolFailure matches every *ToolFailure via errors.Is.
var ErrToolFailure = errors.New("external tool failure")

// ToolFailure reports an external tool that exited unsuccessfully or timed
// out. LogPath points at the retained tool log when one was written.
type ToolFailure struct {
	Binary   string
	Args     []string
	ExitCode int
	TimedOut bool
	LogPath  string
	Tail     []string
	Err      error
}

func (e *ToolFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", e.Binary)
	switch {
	case e.TimedOut:
		b.WriteString(" (timed out)")
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.LogPath != "" {
		fmt.Fprintf(&b, "; see %s", e.LogPath)
	}
	return b.String()
}

func (e *ToolFailure) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrToolFailure) match.
func (e *ToolFailure) Is(target error) bool { return target == ErrToolFailure }

// ErrorKind classifies the failure for callers that map errors to outcomes.
func (e *ToolFailure) ErrorKind() string { return "external_tool" }

// CommandLine renders the failed command for display.
func (e *ToolFailure) CommandLine() string {
	return strings.Join(append([]string{e.Binary}, e.Args...), " ")
}
