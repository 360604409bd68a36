package recipe

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed builtin/*.yml
var builtinFS embed.FS

// ErrUnknownRecipe is returned when a name is neither a built-in recipe nor an
// existing file.
var ErrUnknownRecipe = errors.New("unknown recipe")

// Builtins lists the names of the embedded recipes in sorted order.
func Builtins() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), ".yml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// Builtin loads an embedded recipe by name. The ".yml" suffix is optional.
func Builtin(name string) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".yml") {
		name += ".yml"
	}
	data, err := builtinFS.ReadFile("builtin/" + name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
		}
		return nil, fmt.Errorf("read built-in recipe: %w", err)
	}
	return Parse(data, name)
}

// Resolve loads a recipe given either a built-in name or a file path. Built-in
// names win when a file of the same name does not exist.
func Resolve(nameOrPath string) (*Recipe, error) {
	nameOrPath = strings.TrimSpace(nameOrPath)
	if info, err := os.Stat(nameOrPath); err == nil && !info.IsDir() {
		return LoadFile(nameOrPath)
	}
	r, err := Builtin(nameOrPath)
	if err == nil {
		return r, nil
	}
	if errors.Is(err, ErrUnknownRecipe) {
		return nil, fmt.Errorf("%w: %q is not a built-in recipe or readable file", ErrUnknownRecipe, nameOrPath)
	}
	return nil, err
}
