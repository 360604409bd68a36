package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"replicator/internal/recipe"
)

// loadRecipes resolves each argument as a recipe file or built-in name. All
// failures are collected so one bad recipe does not hide the others.
func loadRecipes(args []string) ([]*recipe.Recipe, error) {
	recipes := make([]*recipe.Recipe, 0, len(args))
	var errs []error
	for _, arg := range args {
		r, err := recipe.Resolve(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recipes = append(recipes, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return recipes, nil
}

func titleMedium(medium recipe.Medium) string {
	return cases.Title(language.Und).String(string(medium))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func pluralize(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

func mediumNames() string {
	names := make([]string, 0, len(recipe.Media()))
	for _, m := range recipe.Media() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}
