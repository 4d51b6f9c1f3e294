package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sbomstat/internal/config"
	"sbomstat/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithSuffixes(".gz")}, opts...)...)
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{config.EnvSBOMData, config.EnvCSAFData, config.EnvDictionary} {
		t.Setenv(key, "")
	}
	t.Chdir(base)

	configPath := filepath.Join(base, "sbomstat.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) addSBOM(t *testing.T, file string, data []byte) {
	t.Helper()
	testsupport.WriteGzip(t, filepath.Join(e.cfg.Paths.SBOMDir, file), data)
}

func (e *cliTestEnv) addAdvisory(t *testing.T, rel, body string) {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(e.cfg.Paths.AdvisoryDir, rel), []byte(body))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--no-progress"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func advisoryJSON(id string, cpes ...string) string {
	var products []string
	for i, c := range cpes {
		products = append(products,
			`{"name":"p`+string(rune('a'+i))+`","product_id":"p`+string(rune('a'+i))+`","product_identification_helper":{"cpe":"`+c+`"}}`)
	}
	return `{"document":{"title":"` + id + `","tracking":{"id":"` + id + `"}},` +
		`"product_tree":{"full_product_names":[` + strings.Join(products, ",") + `]}}`
}
