// Package progress renders pipeline progress for people watching a run.
//
// On a terminal each stage gets a live go-pretty tracker. Without a terminal
// (CI logs, redirected output) progress is reported through the logger,
// sampled in ten percent steps so large corpora do not flood the log.
package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"sbomstat/internal/logging"
	"sbomstat/internal/pipeline"
)

// Reporter is a pipeline observer that owns output resources.
type Reporter interface {
	pipeline.Observer
	Close()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New picks a bar renderer when interactive is true and a log based reporter
// otherwise.
func New(w io.Writer, logger *slog.Logger, interactive bool) Reporter {
	if interactive {
		return NewBars(w)
	}
	return NewLog(logger)
}

var stageLabels = map[pipeline.Stage]string{
	pipeline.StageUnpack:  "Unpacking",
	pipeline.StageProcess: "Processing",
}

func label(stage pipeline.Stage) string {
	if l, ok := stageLabels[stage]; ok {
		return l
	}
	return string(stage)
}

// Bars draws one tracker per stage.
type Bars struct {
	mu       sync.Mutex
	writer   progress.Writer
	trackers map[pipeline.Stage]*progress.Tracker
	started  bool
}

// NewBars returns a terminal reporter writing to w.
func NewBars(w io.Writer) *Bars {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Value = true
	return &Bars{writer: pw, trackers: make(map[pipeline.Stage]*progress.Tracker)}
}

func (b *Bars) tracker(stage pipeline.Stage) *progress.Tracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.trackers[stage]
}

// StageStarted implements pipeline.Observer.
func (b *Bars) StageStarted(stage pipeline.Stage, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		b.started = true
		go b.writer.Render()
	}
	t := &progress.Tracker{Message: label(stage), Total: int64(total), Units: progress.UnitsDefault}
	b.trackers[stage] = t
	b.writer.AppendTracker(t)
}

// ItemDone implements pipeline.Observer.
func (b *Bars) ItemDone(stage pipeline.Stage, _ pipeline.Outcome) {
	if t := b.tracker(stage); t != nil {
		t.Increment(1)
	}
}

// StageMessage implements pipeline.Observer.
func (b *Bars) StageMessage(stage pipeline.Stage, msg string) {
	if t := b.tracker(stage); t != nil {
		t.UpdateMessage(label(stage) + ": " + msg)
	}
}

// StageFinished implements pipeline.Observer.
func (b *Bars) StageFinished(stage pipeline.Stage) {
	if t := b.tracker(stage); t != nil {
		t.UpdateMessage(label(stage))
		t.MarkAsDone()
	}
}

// Close stops rendering and waits for the final frame.
func (b *Bars) Close() {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return
	}
	deadline := time.Now().Add(time.Second)
	for !b.writer.IsRenderInProgress() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	b.writer.Stop()
	for b.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

type stageCount struct {
	total    int
	done     int
	failures map[pipeline.Outcome]int
	sampler  *logging.ProgressSampler
}

// Log reports sampled progress through a logger.
type Log struct {
	mu     sync.Mutex
	logger *slog.Logger
	stages map[pipeline.Stage]*stageCount
}

// NewLog returns a reporter that logs at info level.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Log{
		logger: logging.NewComponentLogger(logger, "progress"),
		stages: make(map[pipeline.Stage]*stageCount),
	}
}

// StageStarted implements pipeline.Observer.
func (l *Log) StageStarted(stage pipeline.Stage, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stages[stage] = &stageCount{
		total:    total,
		failures: make(map[pipeline.Outcome]int),
		sampler:  logging.NewProgressSampler(10),
	}
}

// ItemDone implements pipeline.Observer.
func (l *Log) ItemDone(stage pipeline.Stage, outcome pipeline.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sc, ok := l.stages[stage]
	if !ok {
		return
	}
	sc.done++
	if outcome != pipeline.OutcomeOK {
		sc.failures[outcome]++
	}
	if sc.sampler.ShouldLog(sc.done, sc.total, string(stage)) {
		l.logger.Info("progress",
			logging.String(logging.FieldStage, string(stage)),
			logging.Int("done", sc.done),
			logging.Int("total", sc.total),
		)
	}
}

// StageMessage implements pipeline.Observer.
func (l *Log) StageMessage(stage pipeline.Stage, msg string) {
	l.logger.Debug("progress message",
		logging.String(logging.FieldStage, string(stage)),
		logging.String("message", msg),
	)
}

// StageFinished implements pipeline.Observer.
func (l *Log) StageFinished(stage pipeline.Stage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sc, ok := l.stages[stage]
	if !ok {
		return
	}
	l.logger.Info("stage finished",
		logging.String(logging.FieldStage, string(stage)),
		logging.Int("done", sc.done),
		logging.Int("total", sc.total),
		logging.Int("decode_failures", sc.failures[pipeline.OutcomeDecodeFailed]),
		logging.Int("read_failures", sc.failures[pipeline.OutcomeReadFailed]),
	)
}

// Close implements Reporter.
func (l *Log) Close() {}
