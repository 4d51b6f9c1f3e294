package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sbomstat/internal/config"
	"sbomstat/internal/logging"
	"sbomstat/internal/report"
)

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once and applies command line
// overrides on top of it.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyFlags(cmd, cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	changed := func(name string) bool {
		return cmd != nil && cmd.Flags().Changed(name)
	}
	if changed("format") {
		cfg.Report.Format = strings.ToLower(strings.TrimSpace(c.flags.format))
	}
	if changed("workers") {
		cfg.Pipeline.Workers = c.flags.workers
	}
	if changed("strict") {
		cfg.Pipeline.Strict = c.flags.strict
	}
	if changed("sqlite") {
		path, err := config.ExpandPath(strings.TrimSpace(c.flags.sqlite))
		if err != nil {
			return fmt.Errorf("--sqlite: %w", err)
		}
		cfg.Report.SQLitePath = path
	}
	if changed("metrics") {
		path, err := config.ExpandPath(strings.TrimSpace(c.flags.metrics))
		if err != nil {
			return fmt.Errorf("--metrics: %w", err)
		}
		cfg.Report.MetricsPath = path
	}
	return cfg.Validate()
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig(nil)
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) format() (report.Format, error) {
	cfg := c.configValue()
	if cfg == nil {
		return report.FormatTable, nil
	}
	return report.ParseFormat(cfg.Report.Format)
}

func (c *commandContext) interactive() bool {
	return !c.flags.noProgress && shouldColorize(os.Stderr)
}

// newRun tags ctx with a fresh run id.
func newRun(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return logging.WithRunID(ctx, id), id
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
