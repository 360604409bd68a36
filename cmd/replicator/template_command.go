package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"replicator/internal/recipe"
	"replicator/internal/templates"
	"replicator/internal/toolexec"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags

	cmd := &cobra.Command{
		Use:   "template MEDIUM [NAME...]",
		Short: "Generate template files without applying recipes",
		Long: "Generate seed templates for MEDIUM and keep them in the output directory.\n" +
			"NAME defaults to all templates available for the medium.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			medium, err := recipe.ParseMedium(args[0])
			if err != nil {
				return err
			}
			names, err := templates.Expand(medium, args[1:])
			if err != nil {
				return err
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

			runner := toolexec.NewRunner(
				toolexec.WithTimeout(cfg.ToolTimeout()),
				toolexec.WithLogDir(cfg.Paths.LogDir),
				toolexec.WithLogger(logger),
			)
			opts := templates.Options{
				Duration:   cfg.Templates.Duration,
				Frames:     cfg.TemplateFrames(string(medium)),
				Resolution: cfg.Templates.Resolution,
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				tmpl, err := templates.Generate(cmd.Context(), runner, cfg.FFmpegBinary(), medium, name, cfg.Paths.OutputDir, opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, tmpl.Path)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	flags.registerTemplate(cmd)
	return cmd
}
