package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"replicator/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "corpus")
	result := CheckCreatableDirectory("Output", target)
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable result, got %+v", result)
	}
}

type versionExecutor struct {
	err   error
	calls []string
}

func (v *versionExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	v.calls = append(v.calls, binary+" "+strings.Join(args, " "))
	if v.err != nil {
		return v.err
	}
	onOutput("ffmpeg version 7.1 Copyright (c) 2000-2024")
	return nil
}

func TestCheckToolRuns(t *testing.T) {
	exec := &versionExecutor{}
	result := CheckToolRuns(context.Background(), exec, "FFmpeg", "/usr/bin/ffmpeg")
	if !result.Passed || !strings.HasPrefix(result.Detail, "ffmpeg version 7.1") {
		t.Fatalf("unexpected result %+v", result)
	}
	if exec.calls[0] != "/usr/bin/ffmpeg -version" {
		t.Fatalf("unexpected call %q", exec.calls[0])
	}

	failing := &versionExecutor{err: errors.New("exit status 1")}
	if result := CheckToolRuns(context.Background(), failing, "FFmpeg", "ffmpeg"); result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
}

func TestRunAllReportsMissingTools(t *testing.T) {
	base := t.TempDir()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	ffmpeg := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(ffmpeg, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = ""
	cfg.Tools.FFmpeg = ffmpeg
	cfg.Tools.ImageMagick = filepath.Join(binDir, "convert")

	exec := &versionExecutor{}
	results := RunAll(context.Background(), &cfg, exec)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("optional ImageMagick must not fail preflight: %+v", failed)
	}
	if !strings.Contains(results[3].Detail, "optional") {
		t.Fatalf("expected optional marker, got %+v", results[3])
	}
	if len(exec.calls) != 1 || exec.calls[0] != ffmpeg+" -hide_banner -version" {
		t.Fatalf("unexpected version calls %v", exec.calls)
	}

	cfg.Tools.FFmpeg = filepath.Join(binDir, "missing-ffmpeg")
	if failed := Failed(RunAll(context.Background(), &cfg, exec)); len(failed) != 1 || failed[0].Name != "FFmpeg" {
		t.Fatalf("expected ffmpeg failure, got %+v", failed)
	}
}
