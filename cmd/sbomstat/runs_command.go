package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sbomstat/internal/report"
)

type runView struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	RecordedAt time.Time `json:"recorded_at"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Hits       *int      `json:"hits,omitempty"`
	Misses     *int      `json:"misses,omitempty"`
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the SQLite report database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Report.SQLitePath == "" {
				return fmt.Errorf("no report database configured (set report.sqlite_path or pass --sqlite)")
			}
			sink, err := report.OpenSink(cmd.Context(), cfg.Report.SQLitePath)
			if err != nil {
				return fmt.Errorf("open report database: %w", err)
			}
			defer sink.Close()

			runs, err := sink.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				views := make([]runView, 0, len(runs))
				for _, r := range runs {
					views = append(views, runView(r))
				}
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.Kind,
					humanize.Time(r.RecordedAt),
					strconv.Itoa(r.Processed),
					strconv.Itoa(r.Skipped),
					optionalInt(r.Hits),
					optionalInt(r.Misses),
				})
			}
			aligns := []report.Alignment{
				report.AlignLeft, report.AlignLeft, report.AlignLeft,
				report.AlignRight, report.AlignRight, report.AlignRight, report.AlignRight,
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Table("",
				[]string{"Run", "Kind", "Recorded", "Processed", "Skipped", "Hits", "Misses"},
				rows, aligns, nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
