package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if h := TeeHandler(nil, nil); h != slog.DiscardHandler {
		t.Fatal("expected discard handler for all nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var console, runLog bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&runLog, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee enabled when any handler accepts the level")
	}
	logger := slog.New(h).With("run_id", "abc").WithGroup("job")
	logger.Debug("command", "args", "-crf 18")
	logger.Info("written", "path", "out.mp4")

	if strings.Contains(console.String(), "command") {
		t.Fatalf("debug record reached info handler: %q", console.String())
	}
	for _, want := range []string{"msg=command", "run_id=abc", "job.args=\"-crf 18\"", "msg=written"} {
		if !strings.Contains(runLog.String(), want) {
			t.Fatalf("expected %q in %q", want, runLog.String())
		}
	}
	if !strings.Contains(console.String(), "job.path=out.mp4") {
		t.Fatalf("expected grouped attr in %q", console.String())
	}
}

func TestTeeLogger(t *testing.T) {
	var base, extra bytes.Buffer
	logger := TeeLogger(slog.New(slog.NewTextHandler(&base, nil)), slog.NewTextHandler(&extra, nil))
	logger.Info("both")
	if !strings.Contains(base.String(), "both") || !strings.Contains(extra.String(), "both") {
		t.Fatalf("expected record in both outputs: %q %q", base.String(), extra.String())
	}

	var only bytes.Buffer
	TeeLogger(nil, slog.NewTextHandler(&only, nil)).Info("solo")
	if !strings.Contains(only.String(), "solo") {
		t.Fatalf("expected record with nil base: %q", only.String())
	}
}
