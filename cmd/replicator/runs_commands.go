package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"replicator/internal/manifest"
	"replicator/internal/recipe"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openManifest()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					titleMedium(recipe.Medium(run.Medium)),
					string(run.Status),
					strconv.Itoa(run.Files),
					strconv.Itoa(run.Duplicates),
					strconv.Itoa(run.Failures),
					formatTimestamp(run.StartedAt),
					formatElapsed(run.Elapsed()),
					run.Dest,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "ID"},
				{title: "Medium"},
				{title: "Status"},
				{title: "Files", numeric: true},
				{title: "Dups", numeric: true},
				{title: "Failed", numeric: true},
				{title: "Started"},
				{title: "Elapsed", numeric: true},
				{title: "Destination"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newRunsShowCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a run and the files it produced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openManifest()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			artifacts, err := store.Artifacts(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, struct {
					Run       *manifest.Run        `json:"run"`
					Artifacts []*manifest.Artifact `json:"artifacts"`
				}{run, artifacts})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:         %s\n", run.ID)
			fmt.Fprintf(out, "Medium:      %s\n", titleMedium(recipe.Medium(run.Medium)))
			fmt.Fprintf(out, "Destination: %s\n", run.Dest)
			fmt.Fprintf(out, "Status:      %s\n", run.Status)
			fmt.Fprintf(out, "Started:     %s\n", formatTimestamp(run.StartedAt))
			fmt.Fprintf(out, "Finished:    %s\n", formatTimestamp(run.FinishedAt))
			fmt.Fprintf(out, "Files:       %d (%d duplicates, %d failed)\n", run.Files, run.Duplicates, run.Failures)
			if run.Error != "" {
				fmt.Fprintf(out, "Error:       %s\n", run.Error)
			}
			if len(artifacts) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(artifacts))
			for _, a := range artifacts {
				note := a.Error
				if a.Status == manifest.ArtifactDuplicate {
					note = "same as " + filepath.Base(a.DuplicateOf)
				}
				rows = append(rows, []string{
					filepath.Base(a.Path),
					string(a.Status),
					strconv.FormatInt(a.Size, 10),
					note,
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]column{
				{title: "File"},
				{title: "Status"},
				{title: "Bytes", numeric: true},
				{title: "Note"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
