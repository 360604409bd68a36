package toolexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"replicator/internal/logging"
)

// DefaultLogName is the tool log written when a command does not name one.
const DefaultLogName = "replicator-tool-log.txt"

// DefaultTimeout bounds a single tool invocation in case frame or duration
// limits were left out of a recipe.
const DefaultTimeout = 600 * time.Second

const tailLines = 20

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithTimeout overrides the per-command timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout >= 0 {
			r.timeout = timeout
		}
	}
}

// WithLogDir sets the directory used for tool logs that are not given an
// explicit path.
func WithLogDir(dir string) Option {
	return func(r *Runner) {
		r.logDir = strings.TrimSpace(dir)
	}
}

// WithLogger attaches a logger for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes tool commands with a timeout and a tool log.
type Runner struct {
	exec    Executor
	timeout time.Duration
	logDir  string
	logger  *slog.Logger
}

// NewRunner constructs a Runner backed by CommandExecutor.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		exec:    CommandExecutor{},
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command is one external tool invocation.
type Command struct {
	Binary string
	Args   []string
	// LogPath receives combined output. Empty means DefaultLogName in the
	// runner's log directory.
	LogPath string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}

// Run executes cmd. On success the tool log is removed. A non-zero exit or a
// timeout returns *ToolFailure and keeps the log. Cancellation of ctx is
// returned unchanged and the log is removed.
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	if strings.TrimSpace(cmd.Binary) == "" {
		return errors.New("tool binary required")
	}
	logPath := cmd.LogPath
	if logPath == "" {
		logPath = filepath.Join(r.logDir, DefaultLogName)
	}
	logFile, err := logging.OpenLogFile(logPath)
	if err != nil {
		return fmt.Errorf("open tool log: %w", err)
	}
	if err := logFile.Truncate(0); err != nil {
		logFile.Close()
		return fmt.Errorf("truncate tool log: %w", err)
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logging.WithContext(ctx, r.logger).Debug("running tool",
		logging.String("command", cmd.String()),
		logging.String(logging.FieldEventType, "tool_start"),
	)

	tail := newTail(tailLines)
	var mu sync.Mutex
	start := time.Now()
	runErr := r.exec.Run(runCtx, cmd.Binary, cmd.Args, func(line string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = logFile.WriteString(line + "\n")
		tail.add(line)
	})
	closeErr := logFile.Close()

	if runErr == nil {
		if err := os.Remove(logPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove tool log: %w", err)
		}
		logging.WithContext(ctx, r.logger).Debug("tool finished",
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldEventType, "tool_complete"),
		)
		return closeErr
	}

	if ctx.Err() != nil {
		_ = os.Remove(logPath)
		return ctx.Err()
	}

	failure := &ToolFailure{
		Binary:   cmd.Binary,
		Args:     append([]string(nil), cmd.Args...),
		ExitCode: ExitCode(runErr),
		LogPath:  logPath,
		Tail:     tail.lines(),
		Err:      runErr,
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(runErr, context.DeadlineExceeded) {
		failure.TimedOut = true
		failure.Err = fmt.Errorf("no result after %s: %w", r.timeout, context.DeadlineExceeded)
	}
	return failure
}

type tailBuffer struct {
	max  int
	buf  []string
	next int
	full bool
}

func newTail(max int) *tailBuffer {
	return &tailBuffer{max: max, buf: make([]string, max)}
}

func (t *tailBuffer) add(line string) {
	t.buf[t.next] = line
	t.next = (t.next + 1) % t.max
	if t.next == 0 {
		t.full = true
	}
}

func (t *tailBuffer) lines() []string {
	if !t.full {
		return append([]string(nil), t.buf[:t.next]...)
	}
	out := make([]string, 0, t.max)
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}
