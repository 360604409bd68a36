package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"replicator/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check tool availability and directory access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := newStatusReport(out)

			report.section("Configuration")
			configPath := ctx.configPath
			if !ctx.configExists {
				configPath = "(defaults)"
			}
			report.add("Config", statusInfo, configPath)
			report.add("Expansion mode", statusInfo, cfg.Generation.Mode)
			report.add("Workers", statusInfo, fmt.Sprint(cfg.Generation.Workers))
			report.add("Remove duplicates", statusInfo, yesNo(cfg.Generation.RemoveDuplicates))
			report.add("Manifest", statusInfo, cfg.ManifestPath())

			report.section("Checks")
			results := preflight.RunAll(cmd.Context(), cfg, nil)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				} else if strings.HasSuffix(r.Detail, "(optional)") {
					kind = statusWarn
				}
				report.add(r.Name, kind, r.Detail)
			}
			fmt.Fprintln(out, report)

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%s failed", pluralize(len(failed), "check"))
			}
			return nil
		},
	}
}
