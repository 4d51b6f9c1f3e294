package preflight

import (
	"strings"

	"sbomstat/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// optionalSuffix marks checks whose failure only disables a feature.
const optionalSuffix = " (optional)"

// RunAll executes all applicable preflight checks for the given config.
// Output sink checks only run when the sink is configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("SBOM directory", cfg.Paths.SBOMDir),
		CheckReadableDirectory("Advisory directory", cfg.Paths.AdvisoryDir),
	}

	if strings.TrimSpace(cfg.Paths.Dictionary) != "" {
		results = append(results, CheckReadableFile("CPE dictionary"+optionalSuffix, cfg.Paths.Dictionary))
	}
	if cfg.Report.SQLitePath != "" {
		results = append(results, CheckOutputPath("SQLite report", cfg.Report.SQLitePath))
	}
	if cfg.Report.MetricsPath != "" {
		results = append(results, CheckOutputPath("Metrics textfile", cfg.Report.MetricsPath))
	}
	return results
}

// Failed returns the failing results, ignoring optional checks.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Passed || strings.HasSuffix(r.Name, optionalSuffix) {
			continue
		}
		out = append(out, r)
	}
	return out
}
