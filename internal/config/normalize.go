package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := lookupEnv(EnvSBOMData); ok {
		c.Paths.SBOMDir = value
	}
	if value, ok := lookupEnv(EnvCSAFData); ok {
		c.Paths.AdvisoryDir = value
	}
	if value, ok := lookupEnv(EnvDictionary); ok {
		c.Paths.Dictionary = value
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SBOMDir) == "" {
		c.Paths.SBOMDir = defaultSBOMDir
	}
	if c.Paths.SBOMDir, err = expandPath(c.Paths.SBOMDir); err != nil {
		return fmt.Errorf("paths.sbom_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AdvisoryDir) == "" {
		c.Paths.AdvisoryDir = defaultAdvisoryDir
	}
	if c.Paths.AdvisoryDir, err = expandPath(c.Paths.AdvisoryDir); err != nil {
		return fmt.Errorf("paths.advisory_dir: %w", err)
	}
	if c.Paths.Dictionary, err = expandPath(strings.TrimSpace(c.Paths.Dictionary)); err != nil {
		return fmt.Errorf("paths.dictionary: %w", err)
	}
	if c.Report.SQLitePath, err = expandPath(strings.TrimSpace(c.Report.SQLitePath)); err != nil {
		return fmt.Errorf("report.sqlite_path: %w", err)
	}
	if c.Report.MetricsPath, err = expandPath(strings.TrimSpace(c.Report.MetricsPath)); err != nil {
		return fmt.Errorf("report.metrics_path: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.ChannelCapacity == 0 {
		c.Pipeline.ChannelCapacity = defaultChannelCapacity
	}
	suffixes := make([]string, 0, len(c.Pipeline.Suffixes))
	seen := make(map[string]struct{}, len(c.Pipeline.Suffixes))
	for _, suffix := range c.Pipeline.Suffixes {
		normalized := strings.ToLower(strings.TrimSpace(suffix))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		suffixes = append(suffixes, normalized)
	}
	if len(suffixes) == 0 {
		suffixes = []string{defaultSBOMSuffix}
	}
	c.Pipeline.Suffixes = suffixes

	c.Advisories.Pattern = strings.TrimSpace(c.Advisories.Pattern)
	if c.Advisories.Pattern == "" {
		c.Advisories.Pattern = defaultAdvisoryPattern
	}
	c.Dictionary.Language = strings.TrimSpace(c.Dictionary.Language)
	if c.Dictionary.Language == "" {
		c.Dictionary.Language = defaultLanguage
	}
}

func (c *Config) normalizeReport() {
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	if c.Report.Format == "" {
		c.Report.Format = defaultReportFormat
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	}
}
