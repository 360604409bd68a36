package replicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"replicator/internal/config"
	"replicator/internal/deps"
	"replicator/internal/generator"
	"replicator/internal/logging"
	"replicator/internal/manifest"
	"replicator/internal/recipe"
	"replicator/internal/templates"
	"replicator/internal/toolexec"
)

// templateDirName holds generated templates inside the destination while a
// run is in progress.
const templateDirName = ".templates"

// Options customizes a Replicator beyond the configuration file.
type Options struct {
	// Templates names the templates to generate. Empty selects all.
	Templates []string
	// Executor replaces the process executor (primarily for tests).
	Executor toolexec.Executor
	Logger   *slog.Logger
	// Manifest, when set, receives the run and artifact records.
	Manifest *manifest.Store
	// OnResult observes each finished job in production order.
	OnResult func(generator.Result)
	// SuppliedTemplates marks a run that will use RunWithTemplates, so no
	// templates are generated.
	SuppliedTemplates bool
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Medium     recipe.Medium
	Dest       string
	Recipes    int
	Templates  int
	Files      int
	Failures   int
	Duplicates int
	Elapsed    time.Duration
}

// Replicator generates a corpus for one medium from a set of recipes.
type Replicator struct {
	cfg        *config.Config
	medium     recipe.Medium
	dest       string
	mode       recipe.Mode
	templates  []string
	generators []*generator.Generator
	skipped    []*recipe.Recipe
	runner     *toolexec.Runner
	logger     *slog.Logger
	store      *manifest.Store
	onResult   func(generator.Result)
	supplied   bool
}

// New prepares a run. Recipes for a different medium are skipped with a
// warning; at least one recipe must remain.
func New(cfg *config.Config, medium recipe.Medium, dest string, recipes []*recipe.Recipe, opts Options) (*Replicator, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if !medium.Valid() {
		return nil, fmt.Errorf("unsupported medium %q", medium)
	}
	dest = strings.TrimSpace(dest)
	if dest == "" {
		dest = cfg.Paths.OutputDir
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	mode, err := recipe.ParseMode(cfg.Generation.Mode)
	if err != nil {
		return nil, err
	}
	names, err := templates.Expand(medium, opts.Templates)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "replicator")

	runnerOpts := []toolexec.Option{
		toolexec.WithTimeout(cfg.ToolTimeout()),
		toolexec.WithLogDir(cfg.Paths.LogDir),
		toolexec.WithLogger(logger),
	}
	if opts.Executor != nil {
		runnerOpts = append(runnerOpts, toolexec.WithExecutor(opts.Executor))
	}

	r := &Replicator{
		cfg:       cfg,
		medium:    medium,
		dest:      absDest,
		mode:      mode,
		templates: names,
		runner:    toolexec.NewRunner(runnerOpts...),
		logger:    logger,
		store:     opts.Manifest,
		onResult:  opts.OnResult,
		supplied:  opts.SuppliedTemplates,
	}

	binaries := map[recipe.Tool]string{
		recipe.ToolFFmpeg:      cfg.FFmpegBinary(),
		recipe.ToolImageMagick: cfg.ImageMagickBinary(),
	}
	for _, rec := range recipes {
		if rec == nil {
			continue
		}
		if rec.Base.Medium != medium {
			logging.WarnWithContext(logger, "recipe skipped; medium does not match", "recipe_skipped",
				logging.String("recipe", rec.Name()),
				logging.String("recipe_medium", string(rec.Base.Medium)),
				logging.String("medium", string(medium)),
				logging.String(logging.FieldImpact, "no files are generated from this recipe"),
				logging.String(logging.FieldErrorHint, "pass recipes matching the requested medium"),
			)
			r.skipped = append(r.skipped, rec)
			continue
		}
		gen, err := generator.New(rec, absDest, generator.Options{
			Binaries: binaries,
			Mode:     mode,
			Workers:  cfg.Generation.Workers,
			Runner:   r.runner,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		r.generators = append(r.generators, gen)
	}
	if len(r.generators) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoRecipes, medium)
	}
	return r, nil
}

// Dest returns the absolute destination directory.
func (r *Replicator) Dest() string { return r.dest }

// Templates returns the template names the run generates.
func (r *Replicator) Templates() []string { return append([]string(nil), r.templates...) }

// Skipped returns recipes ignored because their medium did not match.
func (r *Replicator) Skipped() []*recipe.Recipe { return r.skipped }

// Len returns the number of corpus files the run attempts to produce.
func (r *Replicator) Len() int {
	total := 0
	for _, gen := range r.generators {
		total += gen.Len() * len(r.templates)
	}
	return total
}

// CheckSize returns the first recipe expansion that exceeds the configured
// ceiling.
func (r *Replicator) CheckSize() error {
	for _, gen := range r.generators {
		if err := gen.Recipe().CheckSize(r.mode, r.cfg.Generation.MaxInvocations); err != nil {
			return err
		}
	}
	return nil
}

// CheckTools verifies that every binary the run needs can be executed.
// ffmpeg creates the templates, so it is needed unless they are supplied.
func (r *Replicator) CheckTools() error {
	needFFmpeg := !r.supplied
	needMagick := false
	for _, gen := range r.generators {
		switch gen.Recipe().Base.Tool {
		case recipe.ToolFFmpeg:
			needFFmpeg = true
		case recipe.ToolImageMagick:
			needMagick = true
		}
	}
	var reqs []deps.Requirement
	if needFFmpeg {
		reqs = append(reqs, deps.Requirement{Name: "FFmpeg", Command: r.cfg.FFmpegBinary()})
	}
	if needMagick {
		reqs = append(reqs, deps.Requirement{Name: "ImageMagick", Command: r.cfg.ImageMagickBinary()})
	}
	if missing := deps.Missing(deps.CheckBinaries(reqs)); len(missing) > 0 {
		return &ToolUnavailable{Name: missing[0].Name, Command: missing[0].Command, Detail: missing[0].Detail}
	}
	return nil
}

// Run generates templates, then the corpus, and cleans up afterwards.
func (r *Replicator) Run(ctx context.Context) (*Summary, error) {
	return r.run(ctx, nil)
}

// RunWithTemplates generates the corpus from caller supplied templates. The
// templates are left in place.
func (r *Replicator) RunWithTemplates(ctx context.Context, tmpls []templates.Template) (*Summary, error) {
	if len(tmpls) == 0 {
		return nil, errors.New("at least one template is required")
	}
	return r.run(ctx, tmpls)
}

func (r *Replicator) run(ctx context.Context, provided []templates.Template) (*Summary, error) {
	if err := r.CheckSize(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dest, 0o755); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	lock := flock.New(r.dest + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire destination lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrDestinationLocked, r.dest)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release destination lock", logging.Error(err))
		}
		_ = os.Remove(lock.Path())
	}()

	start := time.Now()
	summary := &Summary{
		Medium:  r.medium,
		Dest:    r.dest,
		Recipes: len(r.generators),
	}

	rec := newRecorder(r.store, r.logger)
	if err := rec.begin(ctx, string(r.medium), r.dest); err != nil {
		return nil, err
	}
	summary.RunID = rec.runID()
	ctx = logging.WithRunID(ctx, summary.RunID)

	logger, closeLog := r.runLogger(summary.RunID)
	defer closeLog()
	logger = logging.WithContext(ctx, logger)

	logger.Info("corpus generation started",
		logging.String("medium", string(r.medium)),
		logging.String("dest", r.dest),
		logging.Int("recipes", len(r.generators)),
		logging.Strings("templates", r.templates),
		logging.Int("expected_files", r.Len()),
		logging.String(logging.FieldEventType, "run_start"),
	)

	produced := make(map[string]struct{})
	runErr := r.generate(ctx, logger, provided, rec, summary, produced)
	if runErr == nil && r.cfg.Generation.RemoveDuplicates {
		runErr = r.removeDuplicates(ctx, logger, rec, summary, produced)
	}
	summary.Elapsed = time.Since(start)

	status := manifest.RunCompleted
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		status = manifest.RunCanceled
	default:
		status = manifest.RunFailed
	}
	// The caller's context may already be canceled; the final record still
	// has to land.
	rec.finish(context.WithoutCancel(ctx), status, runErr)

	if runErr != nil {
		if status == manifest.RunFailed {
			logging.ErrorWithContext(logger, "corpus generation failed", "run_failed",
				logging.Int("files", summary.Files),
				logging.Int("failures", summary.Failures),
				logging.Error(runErr),
			)
		}
		return summary, runErr
	}
	logger.Info("corpus generation completed",
		logging.Int("files", summary.Files),
		logging.Int("duplicates", summary.Duplicates),
		logging.Duration("elapsed", summary.Elapsed),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return summary, nil
}

// generate runs every recipe against the templates. Paths of successful
// outputs are added to produced.
func (r *Replicator) generate(ctx context.Context, logger *slog.Logger, provided []templates.Template, rec *recorder, summary *Summary, produced map[string]struct{}) (err error) {
	tmpls := provided
	if tmpls == nil {
		tmpls, err = r.generateTemplates(ctx, logger)
		// Templates are scratch files; they go away whatever happens next.
		defer r.removeTemplates(logger, tmpls)
		if err != nil {
			return err
		}
	}
	summary.Templates = len(tmpls)

	for _, gen := range r.generators {
		gen.SetLogger(logger)
		genErr := gen.Generate(ctx, tmpls, func(res generator.Result) {
			if res.Err != nil {
				summary.Failures++
			} else {
				summary.Files++
				produced[res.Job.Output] = struct{}{}
			}
			rec.result(ctx, gen.Recipe().Name(), res)
			if r.onResult != nil {
				r.onResult(res)
			}
		})
		if genErr != nil {
			return fmt.Errorf("recipe %s: %w", gen.Description(), genErr)
		}
	}
	return nil
}

func (r *Replicator) generateTemplates(ctx context.Context, logger *slog.Logger) ([]templates.Template, error) {
	dir := filepath.Join(r.dest, templateDirName)
	opts := templates.Options{
		Duration:   r.cfg.Templates.Duration,
		Frames:     r.cfg.TemplateFrames(string(r.medium)),
		Resolution: r.cfg.Templates.Resolution,
	}
	out := make([]templates.Template, 0, len(r.templates))
	for _, name := range r.templates {
		tmplCtx := logging.WithTemplate(ctx, name)
		logging.WithContext(tmplCtx, logger).Info("generating template",
			logging.String(logging.FieldEventType, "template_start"),
		)
		tmpl, err := templates.Generate(tmplCtx, r.runner, r.cfg.FFmpegBinary(), r.medium, name, dir, opts)
		if err != nil {
			return out, err
		}
		out = append(out, tmpl)
	}
	return out, nil
}

func (r *Replicator) removeTemplates(logger *slog.Logger, tmpls []templates.Template) {
	for _, tmpl := range tmpls {
		if err := tmpl.Remove(); err != nil {
			logging.WarnWithContext(logger, "template cleanup failed; file remains", "template_cleanup_failed",
				logging.String("path", tmpl.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "a template file is left in the destination"),
				logging.String(logging.FieldErrorHint, "delete the file manually"),
			)
		}
	}
	// Only succeeds once empty; a failed template keeps its tool log here.
	_ = os.Remove(filepath.Join(r.dest, templateDirName))
}

// runLogger mirrors the run's log records into a JSON file under
// log_dir/runs. The returned function closes that file.
func (r *Replicator) runLogger(runID string) (*slog.Logger, func()) {
	logDir := strings.TrimSpace(r.cfg.Paths.LogDir)
	if logDir == "" || runID == "" {
		return r.logger, func() {}
	}
	runsDir := filepath.Join(logDir, "runs")
	path := filepath.Join(runsDir, runID+".log")
	file, err := logging.OpenLogFile(path)
	if err != nil {
		logging.WarnWithContext(r.logger, "run log unavailable", "run_log_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is only logged to the main log"),
		)
		return r.logger, func() {}
	}
	handler, err := logging.NewHandler(file, logging.Options{Level: r.cfg.Logging.Level, Format: "json"})
	if err != nil {
		file.Close()
		return r.logger, func() {}
	}
	logging.CleanupOldLogs(r.logger, r.cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     runsDir,
		Pattern: "*.log",
		Exclude: []string{path},
	})
	return logging.TeeLogger(r.logger, handler), func() { _ = file.Close() }
}
