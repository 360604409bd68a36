// Package main hosts the replicator CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, resolves recipes (built-in
// names or files), and hands the work to internal/replicator. Dry-run
// commands (expand, validate, recipes) never start an external tool.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
