package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"replicator/internal/logging"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -10)
	write := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		return path
	}
	stale := write("run-a.log", old)
	fresh := write("run-b.log", time.Now())
	other := write("notes.txt", old)
	kept := write("run-c.log", old)

	removed := logging.CleanupOldLogs(nil, 5, logging.RetentionTarget{Dir: dir, Pattern: "run-*.log", Exclude: []string{kept}})
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", stale)
	}
	for _, path := range []string{fresh, other, kept} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
	if logging.CleanupOldLogs(nil, 0, logging.RetentionTarget{Dir: dir}) != 0 {
		t.Fatal("retention 0 must disable pruning")
	}
}
