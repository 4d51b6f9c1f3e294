package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"sbomstat/internal/config"
	"sbomstat/internal/csaf"
	"sbomstat/internal/logging"
	"sbomstat/internal/metrics"
	"sbomstat/internal/pipeline"
	"sbomstat/internal/progress"
	"sbomstat/internal/report"
	"sbomstat/internal/resolver"
	"sbomstat/internal/sbom"
)

const (
	nounSBOMs      = "SBOMs"
	nounAdvisories = "advisories"
)

// session carries everything one report command needs: effective config, a
// run-scoped logger, output writers and the optional metrics recorder.
type session struct {
	ctx      context.Context
	cmd      *cobra.Command
	cc       *commandContext
	cfg      *config.Config
	logger   *slog.Logger
	kind     string
	runID    string
	format   report.Format
	recorder *metrics.Recorder
}

func newSession(cmd *cobra.Command, cc *commandContext, kind string) (*session, error) {
	cfg, err := cc.ensureConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return nil, err
	}
	format, err := cc.format()
	if err != nil {
		return nil, err
	}
	ctx, runID := newRun(cmd.Context())
	s := &session{
		ctx:    ctx,
		cmd:    cmd,
		cc:     cc,
		cfg:    cfg,
		logger: logging.WithContext(ctx, logger).With(logging.String("report", kind)),
		kind:   kind,
		runID:  runID,
		format: format,
	}
	if cfg.Report.MetricsPath != "" {
		s.recorder = metrics.NewRecorder(kind)
	}
	return s, nil
}

func (s *session) options() pipeline.Options {
	return pipeline.Options{
		Workers:  s.cfg.Pipeline.Workers,
		Capacity: s.cfg.Pipeline.ChannelCapacity,
		Strict:   s.cfg.Pipeline.Strict,
	}
}

func (s *session) sbomSource() pipeline.Source {
	return pipeline.DirSource{Dir: s.cfg.Paths.SBOMDir, Suffixes: s.cfg.Pipeline.Suffixes}
}

func (s *session) advisorySource() pipeline.Source {
	return pipeline.TreeSource{Root: s.cfg.Paths.AdvisoryDir, Pattern: s.cfg.Advisories.Pattern}
}

// summaryWriter keeps stdout parseable for machine formats.
func (s *session) summaryWriter() io.Writer {
	switch s.format {
	case report.FormatTable, report.FormatText:
		return s.cmd.OutOrStdout()
	default:
		return s.cmd.ErrOrStderr()
	}
}

func (s *session) summary(noun string, stats pipeline.Stats) {
	w := s.summaryWriter()
	fmt.Fprintf(w, "Processed %d %s\n", stats.Processed, noun)
	if skipped := stats.Skipped(); skipped > 0 {
		fmt.Fprintf(w, "Skipped %d unreadable or undecodable files\n", skipped)
	}
}

// ingest drives one pipeline run with progress and metrics observers attached.
func ingest[T any](s *session, source pipeline.Source, decode pipeline.Decoder[T], handler pipeline.Handler[T]) (pipeline.Stats, error) {
	reporter := progress.New(s.cmd.ErrOrStderr(), s.logger, s.cc.interactive())
	observers := []pipeline.Observer{reporter}
	if s.recorder != nil {
		observers = append(observers, s.recorder)
	}
	p := pipeline.New(source, decode, s.options(), s.logger, pipeline.Observers(observers...))
	stats, err := p.Run(s.ctx, handler)
	reporter.Close()
	return stats, err
}

func ingestSBOMs(s *session, handler pipeline.Handler[*sbom.Document]) (pipeline.Stats, error) {
	return ingest(s, s.sbomSource(), sbom.Decode, handler)
}

func ingestAdvisories(s *session, handler pipeline.Handler[*csaf.Advisory]) (pipeline.Stats, error) {
	return ingest(s, s.advisorySource(), csaf.Decode, handler)
}

// finishFrequency renders f and exports it to the configured sinks.
func (s *session) finishFrequency(noun string, stats pipeline.Stats, f *report.Frequency) error {
	s.summary(noun, stats)
	if err := report.RenderFrequency(s.cmd.OutOrStdout(), f, s.format); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if s.recorder != nil {
		s.recorder.SetUniqueKeys(f.Len())
	}
	if err := s.writeMetrics(); err != nil {
		return err
	}
	return s.record(func(ctx context.Context, sink *report.Sink) error {
		_, err := sink.RecordFrequency(ctx, report.Run{
			ID:        s.runID,
			Kind:      s.kind,
			Processed: stats.Processed,
			Skipped:   stats.Skipped(),
		}, f)
		return err
	})
}

// finishMatch renders result and exports it to the configured sinks.
func (s *session) finishMatch(stats pipeline.Stats, result resolver.Result) error {
	s.summary(nounSBOMs, stats)
	if err := report.RenderMatch(s.cmd.OutOrStdout(), result, s.format); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if s.recorder != nil {
		s.recorder.SetResolve(result.Hits, result.Misses, result.Skipped)
	}
	if err := s.writeMetrics(); err != nil {
		return err
	}
	return s.record(func(ctx context.Context, sink *report.Sink) error {
		_, err := sink.RecordMatch(ctx, report.Run{
			ID:        s.runID,
			Kind:      s.kind,
			Title:     "Advisory CPE resolution",
			Processed: stats.Processed,
		}, result)
		return err
	})
}

func (s *session) writeMetrics() error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.WriteTextfile(s.cfg.Report.MetricsPath); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	s.logger.Debug("metrics written", logging.String(logging.FieldPath, s.cfg.Report.MetricsPath))
	return nil
}

func (s *session) record(fn func(context.Context, *report.Sink) error) error {
	if s.cfg.Report.SQLitePath == "" {
		return nil
	}
	sink, err := report.OpenSink(s.ctx, s.cfg.Report.SQLitePath)
	if err != nil {
		return fmt.Errorf("open report database: %w", err)
	}
	defer sink.Close()
	if err := fn(s.ctx, sink); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	s.logger.Info("run recorded", logging.String(logging.FieldPath, sink.Path()))
	return nil
}
