package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sbomstat/internal/config"
	"sbomstat/internal/dictionary"
	"sbomstat/internal/logging"
	"sbomstat/internal/resolver"
	"sbomstat/internal/tasks"
)

func newNamesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List the unique SBOM document names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, ctx, "names")
			if err != nil {
				return err
			}
			task := tasks.NewUniqueNames()
			stats, err := ingestSBOMs(s, task)
			if err != nil {
				return err
			}
			return s.finishFrequency(nounSBOMs, stats, task.Finalize())
		},
	}
}

func newMainPackagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "main-packages",
		Short: "Count the names of the packages each SBOM describes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, ctx, "main-packages")
			if err != nil {
				return err
			}
			task := tasks.NewUniqueMainPackages(s.logger)
			stats, err := ingestSBOMs(s, task)
			if err != nil {
				return err
			}
			return s.finishFrequency(nounSBOMs, stats, task.Finalize())
		},
	}
}

func newMainCPECommand(ctx *commandContext) *cobra.Command {
	var titles bool
	cmd := &cobra.Command{
		Use:   "main-cpe",
		Short: "Count the CPE identifiers of SBOM main packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !titles {
				s, err := newSession(cmd, ctx, "main-cpe")
				if err != nil {
					return err
				}
				task := tasks.NewMainCPE(s.logger)
				stats, err := ingestSBOMs(s, task)
				if err != nil {
					return err
				}
				return s.finishFrequency(nounSBOMs, stats, task.Finalize())
			}

			s, err := newSession(cmd, ctx, "main-cpe-titles")
			if err != nil {
				return err
			}
			path := strings.TrimSpace(s.cfg.Paths.Dictionary)
			if path == "" {
				return fmt.Errorf("--titles requires paths.dictionary (or %s)", config.EnvDictionary)
			}
			index, err := dictionary.Load(s.ctx, path, s.logger)
			if err != nil {
				return fmt.Errorf("load cpe dictionary: %w", err)
			}
			task := tasks.NewMainCPETitles(s.logger, index, s.cfg.Dictionary.Language)
			stats, err := ingestSBOMs(s, task)
			if err != nil {
				return err
			}
			return s.finishFrequency(nounSBOMs, stats, task.Finalize())
		},
	}
	cmd.Flags().BoolVar(&titles, "titles", false, "Report dictionary titles instead of raw identifiers")
	return cmd
}

func newAdvisoryCPECommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "advisory-cpe",
		Short: "Count the CPE identifiers named by CSAF advisories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, ctx, "advisory-cpe")
			if err != nil {
				return err
			}
			task := tasks.NewAdvisoryCPE()
			stats, err := ingestAdvisories(s, task)
			if err != nil {
				return err
			}
			return s.finishFrequency(nounAdvisories, stats, task.Finalize())
		},
	}
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Match advisory CPE identifiers against SBOM main package identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, ctx, "resolve")
			if err != nil {
				return err
			}

			advisories := tasks.NewAdvisoryCPE()
			advStats, err := ingestAdvisories(s, advisories)
			if err != nil {
				return err
			}
			s.summary(nounAdvisories, advStats)
			s.logger.Info("advisories collected",
				logging.Int("processed", advStats.Processed),
				logging.Int("identifiers", len(advisories.CPEs())),
			)

			sboms := tasks.NewMainCPE(s.logger)
			stats, err := ingestSBOMs(s, sboms)
			if err != nil {
				return err
			}

			result := resolver.Resolve(s.ctx, s.logger, advisories.CPEs(), sboms.CPEs())
			return s.finishMatch(stats, result)
		},
	}
}
