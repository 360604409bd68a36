package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"replicator/internal/recipe"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate RECIPE...",
		Short:       "Check recipe files against the recipe schema",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, arg := range args {
				rec, err := recipe.Resolve(arg)
				if err != nil {
					invalid++
					fmt.Fprintf(out, "FAIL %s: %v\n", arg, err)
					continue
				}
				fmt.Fprintf(out, "OK   %s (%s, %s)\n", arg, rec.Description(), pluralize(rec.Count(), "invocation"))
			}
			if invalid > 0 {
				return errors.New(pluralize(invalid, "invalid recipe"))
			}
			return nil
		},
	}
}
