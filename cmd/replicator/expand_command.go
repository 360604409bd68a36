package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"replicator/internal/recipe"
)

type invocationView struct {
	Label  string   `json:"label"`
	Tokens []string `json:"tokens"`
}

type expansionView struct {
	Recipe      string           `json:"recipe"`
	Description string           `json:"description"`
	Mode        recipe.Mode      `json:"mode"`
	Count       int              `json:"count"`
	Invocations []invocationView `json:"invocations"`
}

func newExpandCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var jsonOutput bool
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "expand RECIPE",
		Short: "Print the tool invocations a recipe expands to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rec, err := recipe.Resolve(args[0])
			if err != nil {
				return err
			}
			modeValue := cfg.Generation.Mode
			if v := strings.TrimSpace(modeFlag); v != "" {
				modeValue = v
			}
			mode, err := recipe.ParseMode(modeValue)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if countOnly {
				fmt.Fprintln(out, rec.Size(mode))
				return nil
			}
			if err := rec.CheckSize(mode, cfg.Generation.MaxInvocations); err != nil {
				return err
			}

			if jsonOutput {
				view := expansionView{
					Recipe:      rec.Name(),
					Description: rec.Description(),
					Mode:        mode,
					Invocations: make([]invocationView, 0, rec.Size(mode)),
				}
				for inv := range rec.Invocations(mode) {
					view.Invocations = append(view.Invocations, invocationView{Label: inv.Label(), Tokens: inv.Tokens})
				}
				view.Count = len(view.Invocations)
				return writeJSON(cmd, view)
			}

			for inv := range rec.Invocations(mode) {
				fmt.Fprintln(out, inv.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Expansion mode: product or axis (default: generation.mode)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&countOnly, "count", false, "Only print the number of invocations")
	return cmd
}
