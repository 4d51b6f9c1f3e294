package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sbomstat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The SBOM directory and advisory root are created empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SBOMDir = filepath.Join(base, "sboms")
	cfgVal.Paths.AdvisoryDir = filepath.Join(base, "vex")
	cfgVal.Paths.Dictionary = filepath.Join(base, "dictionary.xml")
	cfgVal.Pipeline.Workers = 2

	for _, dir := range []string{cfgVal.Paths.SBOMDir, cfgVal.Paths.AdvisoryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

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

// WithWorkers overrides the pipeline worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Workers = n
	}
}

// WithStrict enables strict failure handling.
func WithStrict() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Strict = true
	}
}

// WithSuffixes overrides the SBOM suffix filter.
func WithSuffixes(suffixes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Suffixes = suffixes
	}
}

// WithSQLite points the report sink at a database under the temp directory.
func WithSQLite() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Report.SQLitePath = filepath.Join(b.baseDir, "out", "report.db")
	}
}

// WithMetrics points the metrics textfile under the temp directory.
func WithMetrics() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Report.MetricsPath = filepath.Join(b.baseDir, "out", "sbomstat.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SBOMDir)
}
