package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"replicator/internal/recipe"
)

func newRecipesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "recipes",
		Short:       "List built-in recipes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Name        string `json:"name"`
				Medium      string `json:"medium"`
				Tool        string `json:"tool"`
				Library     string `json:"library"`
				Codec       string `json:"codec"`
				Container   string `json:"container"`
				Invocations int    `json:"invocations"`
			}
			var rows []row
			for _, name := range recipe.Builtins() {
				rec, err := recipe.Builtin(name)
				if err != nil {
					return fmt.Errorf("built-in recipe %s: %w", name, err)
				}
				rows = append(rows, row{
					Name:        name,
					Medium:      string(rec.Base.Medium),
					Tool:        string(rec.Base.Tool),
					Library:     rec.Base.Library,
					Codec:       rec.Base.Codec,
					Container:   rec.Base.Container,
					Invocations: rec.Count(),
				})
			}
			if jsonOutput {
				return writeJSON(cmd, rows)
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{
					r.Name,
					titleMedium(recipe.Medium(r.Medium)),
					r.Tool,
					r.Codec,
					r.Container,
					strconv.Itoa(r.Invocations),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Recipe"},
				{title: "Medium"},
				{title: "Tool"},
				{title: "Codec"},
				{title: "Container"},
				{title: "Invocations", numeric: true},
			}, table))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
