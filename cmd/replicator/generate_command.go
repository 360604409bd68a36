package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"replicator/internal/config"
	"replicator/internal/logging"
	"replicator/internal/recipe"
	"replicator/internal/replicator"
)

type generationFlags struct {
	output         string
	duration       int
	frames         int
	resolution     string
	mode           string
	workers        int
	keepDuplicates bool
}

func (f *generationFlags) register(cmd *cobra.Command, withGeneration bool) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory (default: paths.output_dir)")
	if !withGeneration {
		return
	}
	cmd.Flags().StringVar(&f.mode, "mode", "", "Expansion mode: product or axis (default: generation.mode)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel tool invocations (default: generation.workers)")
	cmd.Flags().BoolVar(&f.keepDuplicates, "keep-duplicates", false, "Keep byte-identical output files")
}

func (f *generationFlags) registerTemplate(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.duration, "duration", "d", 0, "Template duration in seconds (default: templates.duration)")
	cmd.Flags().IntVar(&f.frames, "frames", 0, "Video template frame count; 0 uses the duration (default: templates.frames)")
	cmd.Flags().StringVarP(&f.resolution, "resolution", "r", "", "Template resolution WIDTHxHEIGHT (default: templates.resolution)")
}

// apply returns a copy of cfg with command line overrides applied.
func (f *generationFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if v := strings.TrimSpace(f.output); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return nil, err
		}
		out.Paths.OutputDir = expanded
	}
	if cmd.Flags().Changed("duration") {
		out.Templates.Duration = f.duration
	}
	if cmd.Flags().Changed("frames") {
		out.Templates.Frames = f.frames
		// Animations always need a frame count; 0 only applies to video.
		if f.frames > 0 {
			out.Templates.AnimationFrames = f.frames
		}
	}
	if v := strings.TrimSpace(f.resolution); v != "" {
		out.Templates.Resolution = strings.ToLower(v)
	}
	if v := strings.TrimSpace(f.mode); v != "" {
		out.Generation.Mode = strings.ToLower(v)
	}
	if cmd.Flags().Changed("workers") {
		out.Generation.Workers = f.workers
	}
	if f.keepDuplicates {
		out.Generation.RemoveDuplicates = false
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var templateNames []string

	cmd := &cobra.Command{
		Use:   "generate MEDIUM RECIPE...",
		Short: "Generate templates and apply recipes to build a corpus",
		Long: "Generate seed templates for MEDIUM (" + mediumNames() + "), apply every recipe to every\n" +
			"template, then remove the templates and any duplicate outputs.\n\n" +
			"RECIPE is a recipe file or the name of a built-in recipe (see `replicator recipes`).",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			medium, err := recipe.ParseMedium(args[0])
			if err != nil {
				return err
			}
			recipes, err := loadRecipes(args[1:])
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
			store, err := ctx.openManifest()
			if err != nil {
				return err
			}
			defer store.Close()

			rep, err := replicator.New(cfg, medium, cfg.Paths.OutputDir, recipes, replicator.Options{
				Templates: templateNames,
				Logger:    logger,
				Manifest:  store,
			})
			if err != nil {
				return err
			}
			if err := rep.CheckTools(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s corpus: %s with %s will create %s in %s\n",
				titleMedium(medium),
				pluralize(len(recipes)-len(rep.Skipped()), "recipe"),
				pluralize(len(rep.Templates()), "template"),
				pluralize(rep.Len(), "file"),
				rep.Dest(),
			)

			summary, err := rep.Run(cmd.Context())
			if err != nil {
				if summary != nil && summary.RunID != "" {
					logger.Info("run details available",
						logging.String("hint", "replicator runs show "+shortID(summary.RunID)),
					)
				}
				return err
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	flags.register(cmd, true)
	flags.registerTemplate(cmd)
	cmd.Flags().StringSliceVarP(&templateNames, "templates", "t", []string{"all"}, "Templates to generate (comma separated, or all)")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *replicator.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %s in %s", pluralize(summary.Files, "file"), summary.Dest)
	if summary.Duplicates > 0 {
		fmt.Fprintf(out, " (%s removed)", pluralize(summary.Duplicates, "duplicate"))
	}
	fmt.Fprintf(out, " in %s\n", formatElapsed(summary.Elapsed))
	if summary.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", summary.RunID)
	}
}
