package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"replicator/internal/logging"
	"replicator/internal/recipe"
	"replicator/internal/templates"
	"replicator/internal/toolexec"
)

// Options configures a Generator.
type Options struct {
	// Binaries maps a recipe tool to the executable that implements it.
	// Missing entries fall back to "ffmpeg" and "convert".
	Binaries map[recipe.Tool]string
	Mode     recipe.Mode
	Workers  int
	Runner   *toolexec.Runner
	Logger   *slog.Logger
}

// Generator applies one recipe to templates.
type Generator struct {
	recipe   *recipe.Recipe
	dest     string
	binaries map[recipe.Tool]string
	mode     recipe.Mode
	workers  int
	runner   *toolexec.Runner
	logger   *slog.Logger
}

// Job is a single tool invocation producing one corpus file.
type Job struct {
	Template   templates.Template
	Invocation recipe.Invocation
	Output     string
	Command    toolexec.Command
}

// Result is the outcome of a Job.
type Result struct {
	Job     Job
	Err     error
	Elapsed time.Duration
}

// New constructs a Generator writing into dest.
func New(r *recipe.Recipe, dest string, opts Options) (*Generator, error) {
	if r == nil {
		return nil, errors.New("recipe required")
	}
	if strings.TrimSpace(dest) == "" {
		return nil, errors.New("destination directory required")
	}
	binaries := map[recipe.Tool]string{
		recipe.ToolFFmpeg:      "ffmpeg",
		recipe.ToolImageMagick: "convert",
	}
	for tool, bin := range opts.Binaries {
		if strings.TrimSpace(bin) != "" {
			binaries[tool] = bin
		}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	runner := opts.Runner
	if runner == nil {
		runner = toolexec.NewRunner()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	mode := opts.Mode
	if mode == "" {
		mode = recipe.ModeProduct
	}
	return &Generator{
		recipe:   r,
		dest:     dest,
		binaries: binaries,
		mode:     mode,
		workers:  workers,
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "generator"),
	}, nil
}

// SetLogger replaces the logger, e.g. with one carrying run fields. It must
// not be called while Generate is running.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logging.NewComponentLogger(logger, "generator")
	}
}

// Description returns medium/library/codec/container for the recipe.
func (g *Generator) Description() string {
	return g.recipe.Description()
}

// Recipe returns the recipe driving the generator.
func (g *Generator) Recipe() *recipe.Recipe {
	return g.recipe
}

// Len returns the number of files the generator produces per template.
func (g *Generator) Len() int {
	return g.recipe.Size(g.mode)
}

// OutputName returns the corpus file name for an invocation applied to a
// template.
func (g *Generator) OutputName(templateName string, inv recipe.Invocation) string {
	base := g.recipe.Base
	parts := []string{string(base.Medium), base.Codec, base.Library, templateName}
	if label := inv.Label(); label != "" {
		parts = append(parts, label)
	}
	return strings.Join(parts, "-") + "." + base.Container
}

// Jobs yields the jobs for one template in expansion order.
func (g *Generator) Jobs(tmpl templates.Template) iter.Seq[Job] {
	return func(yield func(Job) bool) {
		for inv := range g.recipe.Invocations(g.mode) {
			if !yield(g.job(tmpl, inv)) {
				return
			}
		}
	}
}

func (g *Generator) job(tmpl templates.Template, inv recipe.Invocation) Job {
	output := filepath.Join(g.dest, g.OutputName(tmpl.Name, inv))
	tool := inv.Tool()
	var args []string
	switch tool {
	case recipe.ToolImageMagick:
		args = append(args, tmpl.Path)
	default:
		args = append(args, "-i", tmpl.Path, "-y")
	}
	args = append(args, inv.Args()...)
	args = append(args, output)
	return Job{
		Template:   tmpl,
		Invocation: inv,
		Output:     output,
		Command: toolexec.Command{
			Binary:  g.binaries[tool],
			Args:    args,
			LogPath: output + ".log",
		},
	}
}

// Generate runs every job for every template. onResult, when non-nil, is
// called once per finished job in production order and never concurrently.
// The first failure cancels outstanding jobs and is returned.
func (g *Generator) Generate(ctx context.Context, tmpls []templates.Template, onResult func(Result)) error {
	if err := os.MkdirAll(g.dest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	ctx = logging.WithRecipe(ctx, g.recipe.Name())
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.workers)

	total := g.Len() * len(tmpls)
	order := newReorderBuffer(onResult, total)
	seq := 0

	g.logger.Info("generating corpus",
		logging.String("recipe", g.Description()),
		logging.Int("templates", len(tmpls)),
		logging.Int("files", total),
		logging.String(logging.FieldEventType, "generate_start"),
	)

dispatch:
	for _, tmpl := range tmpls {
		tmplCtx := logging.WithTemplate(groupCtx, tmpl.Name)
		for job := range g.Jobs(tmpl) {
			if groupCtx.Err() != nil {
				break dispatch
			}
			index := seq
			seq++
			group.Go(func() error {
				if groupCtx.Err() != nil {
					order.skip(index)
					return nil
				}
				start := time.Now()
				err := g.runner.Run(tmplCtx, job.Command)
				res := Result{Job: job, Err: err, Elapsed: time.Since(start)}
				done, report := order.add(index, res)
				if err != nil {
					if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
						logging.ErrorWithContext(logging.WithContext(tmplCtx, g.logger), "corpus file generation failed", "generate_failed",
							logging.String("output", filepath.Base(job.Output)),
							logging.String(logging.FieldErrorHint, "inspect the tool log and the recipe flags"),
							logging.Error(err),
						)
					}
					return fmt.Errorf("%s: %w", filepath.Base(job.Output), err)
				}
				if report {
					g.logger.Info("generation progress",
						logging.String("recipe", g.Description()),
						logging.Int("done", done),
						logging.Int("total", total),
						logging.String(logging.FieldEventType, "generate_progress"),
					)
				}
				return nil
			})
		}
	}

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// reorderBuffer releases results in index order regardless of completion
// order.
type reorderBuffer struct {
	mu      sync.Mutex
	emit    func(Result)
	pending map[int]*Result
	next    int
	done    int
	total   int
	sampler *logging.ProgressSampler
}

func newReorderBuffer(emit func(Result), total int) *reorderBuffer {
	return &reorderBuffer{
		emit:    emit,
		pending: make(map[int]*Result),
		total:   total,
		sampler: logging.NewProgressSampler(0),
	}
}

// add stores a result and flushes every result that is now in sequence. It
// returns the number of results received so far and whether progress should
// be logged.
func (b *reorderBuffer) add(index int, res Result) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done++
	b.pending[index] = &res
	b.flush()
	return b.done, res.Err == nil && b.sampler.ShouldLog(b.done, b.total)
}

// skip marks a job that never ran so later results are not held back.
func (b *reorderBuffer) skip(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[index] = nil
	b.flush()
}

func (b *reorderBuffer) flush() {
	for {
		next, ok := b.pending[b.next]
		if !ok {
			return
		}
		delete(b.pending, b.next)
		b.next++
		if next != nil && b.emit != nil {
			b.emit(*next)
		}
	}
}
