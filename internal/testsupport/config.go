package testsupport

import (
	"path/filepath"
	"testing"

	"subseg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.FramesDir = filepath.Join(base, "frames")
	cfgVal.Paths.OutputDir = filepath.Join(base, "segments")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Segmentation.Workers = 2

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

// WithThresholds overrides the segmentation thresholds.
func WithThresholds(diff, blank float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Segmentation.DiffThreshold = diff
		b.cfg.Segmentation.BlankThreshold = blank
	}
}

// WithMinSegmentDuration overrides the minimum kept segment duration.
func WithMinSegmentDuration(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Segmentation.MinSegmentDuration = seconds
	}
}

// WithoutHistory disables the run history database.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithMetricsTextfile points the Prometheus textfile export inside the temp tree.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "subseg.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
