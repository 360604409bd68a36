package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"replicator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Templates default to a tiny resolution so stubbed tools stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "corpus")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Templates.Resolution = "16x16"
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithWorkers sets generation parallelism.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.Workers = n
	}
}

// WithMaxInvocations sets the per-recipe expansion ceiling.
func WithMaxInvocations(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.MaxInvocations = n
	}
}

// stubScript writes every argument except the last into the last argument,
// which is the output path for both ffmpeg and convert invocations. An
// argument equal to $REPLICATOR_STUB_FAIL makes the stub exit non-zero.
const stubScript = `#!/bin/sh
for last; do :; done
content=""
n=0
for arg; do
	n=$((n + 1))
	if [ -n "$REPLICATOR_STUB_FAIL" ] && [ "$arg" = "$REPLICATOR_STUB_FAIL" ]; then
		echo "stub failure on $arg" >&2
		exit 1
	fi
	[ "$n" -eq "$#" ] && break
	content="$content $arg"
done
echo "$content" > "$last"
`

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and convert are stubbed.
// Each stub writes its arguments into the output file, so invocations that
// differ only in the output path produce identical files.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "convert"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte(stubScript), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
