// Package logging assembles structured slog loggers and formatting helpers used
// across the replicator.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so generation code can tag log
// lines with run IDs, recipes, and templates. The package also provides a
// no-op logger for tests, a tee handler for per-run log files, and pruning of
// old run logs.
package logging
