package toolexec_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"replicator/internal/toolexec"
)

type stubExecutor struct {
	lines []string
	err   error
	block bool
	calls [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls = append(s.calls, append([]string{binary}, args...))
	for _, line := range s.lines {
		onOutput(line)
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func TestRunnerRemovesLogOnSuccess(t *testing.T) {
	dir := t.TempDir()
	stub := &stubExecutor{lines: []string{"frame=1", "done"}}
	runner := toolexec.NewRunner(toolexec.WithExecutor(stub), toolexec.WithLogDir(dir))

	err := runner.Run(context.Background(), toolexec.Command{Binary: "ffmpeg", Args: []string{"-i", "in.wav", "out.ogg"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, toolexec.DefaultLogName)); !os.IsNotExist(err) {
		t.Fatalf("expected tool log removed, stat err=%v", err)
	}
	if len(stub.calls) != 1 || strings.Join(stub.calls[0], " ") != "ffmpeg -i in.wav out.ogg" {
		t.Fatalf("unexpected calls %v", stub.calls)
	}
}

func TestRunnerKeepsLogOnFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "job.log")
	stub := &stubExecutor{lines: []string{"Unrecognized option 'bogus'"}, err: errors.New("exit status 1")}
	runner := toolexec.NewRunner(toolexec.WithExecutor(stub))

	err := runner.Run(context.Background(), toolexec.Command{Binary: "ffmpeg", Args: []string{"-bogus"}, LogPath: logPath})
	var failure *toolexec.ToolFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ToolFailure, got %v", err)
	}
	if !errors.Is(err, toolexec.ErrToolFailure) {
		t.Fatal("expected errors.Is match for ErrToolFailure")
	}
	if failure.LogPath != logPath || failure.TimedOut || failure.ExitCode != -1 {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if failure.CommandLine() != "ffmpeg -bogus" {
		t.Fatalf("unexpected command line %q", failure.CommandLine())
	}
	if len(failure.Tail) != 1 || failure.Tail[0] != "Unrecognized option 'bogus'" {
		t.Fatalf("unexpected tail %v", failure.Tail)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log kept: %v", err)
	}
	if !strings.Contains(string(content), "Unrecognized option") {
		t.Fatalf("unexpected log content %q", content)
	}
	if !strings.Contains(failure.Error(), logPath) {
		t.Fatalf("error should reference log path: %v", failure)
	}
}

func TestRunnerTimeout(t *testing.T) {
	stub := &stubExecutor{block: true}
	runner := toolexec.NewRunner(toolexec.WithExecutor(stub), toolexec.WithTimeout(20*time.Millisecond), toolexec.WithLogDir(t.TempDir()))

	err := runner.Run(context.Background(), toolexec.Command{Binary: "ffmpeg"})
	var failure *toolexec.ToolFailure
	if !errors.As(err, &failure) || !failure.TimedOut {
		t.Fatalf("expected timed out ToolFailure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline in chain, got %v", err)
	}
}

func TestRunnerPropagatesCancellation(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubExecutor{block: true}
	runner := toolexec.NewRunner(toolexec.WithExecutor(stub), toolexec.WithLogDir(dir))

	err := runner.Run(ctx, toolexec.Command{Binary: "ffmpeg"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var failure *toolexec.ToolFailure
	if errors.As(err, &failure) {
		t.Fatal("cancellation must not be reported as a tool failure")
	}
	if _, err := os.Stat(filepath.Join(dir, toolexec.DefaultLogName)); !os.IsNotExist(err) {
		t.Fatal("expected tool log removed after cancellation")
	}
}

func TestRunnerTailKeepsLastLines(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = strings.Repeat("x", i+1)
	}
	stub := &stubExecutor{lines: lines, err: errors.New("boom")}
	runner := toolexec.NewRunner(toolexec.WithExecutor(stub), toolexec.WithLogDir(t.TempDir()))

	var failure *toolexec.ToolFailure
	if err := runner.Run(context.Background(), toolexec.Command{Binary: "convert"}); !errors.As(err, &failure) {
		t.Fatalf("expected ToolFailure, got %v", err)
	}
	if len(failure.Tail) != 20 || failure.Tail[0] != lines[10] || failure.Tail[19] != lines[29] {
		t.Fatalf("unexpected tail (%d lines)", len(failure.Tail))
	}
}

func TestRunnerRequiresBinary(t *testing.T) {
	if err := toolexec.NewRunner().Run(context.Background(), toolexec.Command{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestCommandExecutorRunsProcess(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var mu sync.Mutex
	var lines []string
	err := toolexec.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", "echo out; echo err 1>&2"}, func(line string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	joined := strings.Join(lines, ",")
	if !strings.Contains(joined, "out") || !strings.Contains(joined, "err") {
		t.Fatalf("expected stdout and stderr lines, got %v", lines)
	}

	err = toolexec.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", "exit 3"}, nil)
	if code := toolexec.ExitCode(err); code != 3 {
		t.Fatalf("expected exit code 3, got %d (%v)", code, err)
	}
}
