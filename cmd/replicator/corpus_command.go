package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"replicator/internal/recipe"
	"replicator/internal/replicator"
	"replicator/internal/templates"
)

func newCorpusCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var templateName string

	cmd := &cobra.Command{
		Use:   "corpus RECIPE TEMPLATE_FILE",
		Short: "Apply a single recipe to an existing template file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := recipe.Resolve(args[0])
			if err != nil {
				return err
			}
			templatePath, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve template path: %w", err)
			}
			if info, err := os.Stat(templatePath); err != nil || info.IsDir() {
				return fmt.Errorf("template file does not exist: %s", args[1])
			}
			name := strings.TrimSpace(templateName)
			if !isIdentifier(name) {
				return fmt.Errorf("template name %q must only contain letters, digits, and dashes", templateName)
			}

			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.openManifest()
			if err != nil {
				return err
			}
			defer store.Close()

			rep, err := replicator.New(cfg, rec.Base.Medium, cfg.Paths.OutputDir, []*recipe.Recipe{rec}, replicator.Options{
				Logger:            logger,
				Manifest:          store,
				SuppliedTemplates: true,
			})
			if err != nil {
				return err
			}
			if err := rep.CheckTools(); err != nil {
				return err
			}
			summary, err := rep.RunWithTemplates(cmd.Context(), []templates.Template{{
				Name:   name,
				Path:   templatePath,
				Medium: rec.Base.Medium,
			}})
			if err != nil {
				return err
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&templateName, "template-name", "n", "custom", "Template name used in generated file names")
	return cmd
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
