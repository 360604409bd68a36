package preflight

import (
	"context"

	"replicator/internal/config"
	"replicator/internal/toolexec"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and tool checks for the given config. A nil
// executor uses toolexec.CommandExecutor.
func RunAll(ctx context.Context, cfg *config.Config, exec toolexec.Executor) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir),
		CheckCreatableDirectory("State directory", cfg.Paths.StateDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Paths.LogDir))
	}

	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available {
			detail := status.Detail
			if status.Optional {
				detail += " (optional)"
			}
			results = append(results, Result{Name: status.Name, Passed: status.Optional, Detail: detail})
			continue
		}
		results = append(results, CheckToolRuns(ctx, exec, status.Name, status.Path, versionArgs(status.Name)...))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func versionArgs(name string) []string {
	if name == "ImageMagick" {
		return []string{"-version"}
	}
	return []string{"-hide_banner", "-version"}
}
