package dedupe_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"replicator/internal/dedupe"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestRemoveDuplicatesKeepsFirstSorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"c.webm": "same",
		"a.webm": "same",
		"b.webm": "same",
		"d.webm": "diff",
		"e.webm": "longer content",
	})
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	removals, err := dedupe.RemoveDuplicates(context.Background(), dir)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if len(removals) != 2 {
		t.Fatalf("expected 2 removals, got %+v", removals)
	}
	for i, name := range []string{"b.webm", "c.webm"} {
		if filepath.Base(removals[i].Path) != name {
			t.Fatalf("removal %d = %s, want %s", i, removals[i].Path, name)
		}
		if filepath.Base(removals[i].Kept) != "a.webm" {
			t.Fatalf("removal %d kept %s, want a.webm", i, removals[i].Kept)
		}
		if removals[i].Size != 4 || removals[i].SHA256 == "" {
			t.Fatalf("unexpected removal details %+v", removals[i])
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a.webm", "d.webm", "e.webm", "nested"}
	if len(names) != len(want) {
		t.Fatalf("remaining files %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("remaining files %v, want %v", names, want)
		}
	}
}

func TestRemoveDuplicatesNoDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"one": "1", "two": "22"})
	removals, err := dedupe.RemoveDuplicates(context.Background(), dir)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if len(removals) != 0 {
		t.Fatalf("expected no removals, got %+v", removals)
	}
}

func TestRemoveDuplicatesMissingDir(t *testing.T) {
	if _, err := dedupe.RemoveDuplicates(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
