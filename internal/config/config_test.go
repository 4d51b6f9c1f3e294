package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sbomstat/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvSBOMData, "")
	t.Setenv(config.EnvCSAFData, "")
	t.Setenv(config.EnvDictionary, "")
	work := t.TempDir()
	t.Chdir(work)
	return work
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	work := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(work, "data", "sboms"); cfg.Paths.SBOMDir != want {
		t.Fatalf("unexpected sbom dir: got %q want %q", cfg.Paths.SBOMDir, want)
	}
	if want := filepath.Join(work, "data", "vex"); cfg.Paths.AdvisoryDir != want {
		t.Fatalf("unexpected advisory dir: got %q want %q", cfg.Paths.AdvisoryDir, want)
	}
	if cfg.Pipeline.ChannelCapacity != 10 {
		t.Fatalf("unexpected channel capacity: %d", cfg.Pipeline.ChannelCapacity)
	}
	if len(cfg.Pipeline.Suffixes) != 1 || cfg.Pipeline.Suffixes[0] != ".bz2" {
		t.Fatalf("unexpected suffixes: %v", cfg.Pipeline.Suffixes)
	}
	if cfg.Pipeline.Strict {
		t.Fatal("expected strict mode off by default")
	}
	if cfg.Report.Format != "table" {
		t.Fatalf("unexpected report format: %q", cfg.Report.Format)
	}
	if cfg.Report.SQLitePath != "" || cfg.Report.MetricsPath != "" {
		t.Fatalf("expected optional sinks to be empty, got %q and %q", cfg.Report.SQLitePath, cfg.Report.MetricsPath)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	work := isolate(t)
	t.Setenv(config.EnvCSAFData, "/srv/csaf")

	path := filepath.Join(work, "custom.toml")
	payload := struct {
		Paths map[string]string `toml:"paths"`
	}{
		Paths: map[string]string{
			"sbom_dir":     "from-file/sboms",
			"advisory_dir": "from-file/vex",
		},
	}
	writeTOML(t, path, payload)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to be loaded, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Paths.AdvisoryDir != "/srv/csaf" {
		t.Fatalf("expected env to override advisory dir, got %q", cfg.Paths.AdvisoryDir)
	}
	if want := filepath.Join(work, "from-file", "sboms"); cfg.Paths.SBOMDir != want {
		t.Fatalf("unexpected sbom dir: got %q want %q", cfg.Paths.SBOMDir, want)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	work := isolate(t)
	os.Unsetenv(config.EnvSBOMData)
	if err := os.WriteFile(filepath.Join(work, ".env"), []byte("SBOM_DATA=/srv/sboms\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(config.EnvSBOMData) })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.SBOMDir != "/srv/sboms" {
		t.Fatalf("expected .env value, got %q", cfg.Paths.SBOMDir)
	}
}

func TestLoadPrefersProjectFileWhenDefaultMissing(t *testing.T) {
	work := isolate(t)
	payload := struct {
		Pipeline map[string]any `toml:"pipeline"`
	}{
		Pipeline: map[string]any{
			"workers":          3,
			"channel_capacity": 4,
			"suffixes":         []string{"gz", ".ZST", ".gz"},
		},
	}
	writeTOML(t, filepath.Join(work, "sbomstat.toml"), payload)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != filepath.Join(work, "sbomstat.toml") {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Pipeline.Workers != 3 || cfg.Pipeline.ChannelCapacity != 4 {
		t.Fatalf("unexpected pipeline settings: %+v", cfg.Pipeline)
	}
	if strings.Join(cfg.Pipeline.Suffixes, ",") != ".gz,.zst" {
		t.Fatalf("expected normalized suffixes, got %v", cfg.Pipeline.Suffixes)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative workers", func(c *config.Config) { c.Pipeline.Workers = -1 }, "Workers"},
		{"unknown format", func(c *config.Config) { c.Report.Format = "xml" }, "Format"},
		{"unknown suffix", func(c *config.Config) { c.Pipeline.Suffixes = []string{".xz"} }, "unsupported suffix"},
		{"bad language", func(c *config.Config) { c.Dictionary.Language = "abcdefghijk" }, "dictionary.language"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Advisories.Pattern != "**/*.json" {
		t.Fatalf("unexpected pattern: %q", cfg.Advisories.Pattern)
	}
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(encoded), "channel_capacity = 10") {
		t.Fatalf("expected encoded config to include channel capacity:\n%s", encoded)
	}
}

func writeTOML(t *testing.T, path string, payload any) {
	t.Helper()
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
