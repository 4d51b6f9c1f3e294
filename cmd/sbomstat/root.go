package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config     string
	format     string
	workers    int
	strict     bool
	sqlite     string
	metrics    string
	noProgress bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "sbomstat",
		Short:         "Statistics over SBOM and CSAF advisory corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format: table, text, csv, json, yaml")
	pf.IntVarP(&flags.workers, "workers", "w", 0, "Decompression workers (0 = one per CPU)")
	pf.BoolVar(&flags.strict, "strict", false, "Abort on unreadable or undecodable documents")
	pf.StringVar(&flags.sqlite, "sqlite", "", "Record the run in this SQLite database")
	pf.StringVar(&flags.metrics, "metrics", "", "Write Prometheus metrics to this textfile")
	pf.BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars")

	rootCmd.AddCommand(newNamesCommand(ctx))
	rootCmd.AddCommand(newMainPackagesCommand(ctx))
	rootCmd.AddCommand(newMainCPECommand(ctx))
	rootCmd.AddCommand(newAdvisoryCPECommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))

	return rootCmd
}
