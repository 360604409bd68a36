package recipe_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"replicator/internal/recipe"
)

func TestBuiltinsValidate(t *testing.T) {
	names := recipe.Builtins()
	if len(names) == 0 {
		t.Fatal("expected built-in recipes")
	}
	for _, name := range names {
		r, err := recipe.Builtin(name)
		if err != nil {
			t.Fatalf("built-in %s: %v", name, err)
		}
		if r.Count() == 0 {
			t.Fatalf("built-in %s expands to nothing", name)
		}
		want := strings.Join([]string{string(r.Base.Medium), r.Base.Codec, r.Base.Library, r.Base.Container}, "-") + ".yml"
		if name != want {
			t.Fatalf("built-in %s should be named %s", name, want)
		}
	}
}

func TestBuiltinWithoutSuffix(t *testing.T) {
	r, err := recipe.Builtin("video-h264-libx264-mp4")
	if err != nil {
		t.Fatalf("Builtin returned error: %v", err)
	}
	if r.Source != "video-h264-libx264-mp4.yml" {
		t.Fatalf("unexpected source %q", r.Source)
	}
	if _, err := recipe.Builtin("../go.mod"); !errors.Is(err, recipe.ErrUnknownRecipe) {
		t.Fatalf("expected ErrUnknownRecipe, got %v", err)
	}
}

func TestResolvePrefersFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte(sampleRecipe), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}
	r, err := recipe.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(file) returned error: %v", err)
	}
	if r.Source != path {
		t.Fatalf("unexpected source %q", r.Source)
	}
	if _, err := recipe.Resolve("audio-opus-libopus-ogg.yml"); err != nil {
		t.Fatalf("Resolve(builtin) returned error: %v", err)
	}
	if _, err := recipe.Resolve(filepath.Join(dir, "nope.yml")); !errors.Is(err, recipe.ErrUnknownRecipe) {
		t.Fatalf("expected ErrUnknownRecipe, got %v", err)
	}
}
