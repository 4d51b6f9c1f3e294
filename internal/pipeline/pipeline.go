package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"sbomstat/internal/logging"
	"sbomstat/internal/scanner"
)

// DefaultCapacity is the channel capacity used when Options.Capacity is unset.
const DefaultCapacity = 10

var (
	// ErrAborted marks a run that stopped before every candidate was handled.
	ErrAborted = errors.New("pipeline aborted")
	// ErrAlreadyRun is returned when Run is called twice on one Pipeline.
	ErrAlreadyRun = errors.New("pipeline already run")
)

// State is the lifecycle position of a Pipeline.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateStreaming
	StateDraining
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Source enumerates candidates and opens them as decompressed streams.
type Source interface {
	Candidates(ctx context.Context) ([]scanner.Candidate, error)
	Open(ctx context.Context, candidate scanner.Candidate) (io.ReadCloser, error)
}

// Decoder turns the raw bytes of one document into a value.
type Decoder[T any] func([]byte) (T, error)

// Progress lets a handler annotate the processing stage.
type Progress interface {
	SetMessage(msg string)
}

// Handler consumes decoded documents one at a time on a single goroutine.
type Handler[T any] interface {
	Process(ctx context.Context, progress Progress, doc T) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[T any] func(ctx context.Context, progress Progress, doc T) error

// Process calls f.
func (f HandlerFunc[T]) Process(ctx context.Context, progress Progress, doc T) error {
	return f(ctx, progress, doc)
}

// Options tunes a run.
type Options struct {
	// Workers bounds concurrent unpacking. Values <= 0 use runtime.NumCPU().
	Workers int
	// Capacity bounds decoded documents waiting for the handler.
	Capacity int
	// Strict makes read and decode failures fatal.
	Strict bool
}

// Stats summarizes a run.
type Stats struct {
	Candidates     int
	Processed      int
	DecodeFailures int
	ReadFailures   int
}

// Skipped reports candidates that never reached the handler because they
// could not be read or decoded.
func (s Stats) Skipped() int {
	return s.DecodeFailures + s.ReadFailures
}

// Pipeline ingests every candidate of a Source into a Handler.
type Pipeline[T any] struct {
	source   Source
	decode   Decoder[T]
	opts     Options
	logger   *slog.Logger
	observer Observer

	state atomic.Int32
	ran   atomic.Bool
}

// New builds a pipeline. A nil logger or observer discards output.
func New[T any](source Source, decode Decoder[T], opts Options, logger *slog.Logger, observer Observer) *Pipeline[T] {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Pipeline[T]{
		source:   source,
		decode:   decode,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		observer: observer,
	}
}

// State reports the current lifecycle state. Safe for concurrent use.
func (p *Pipeline[T]) State() State {
	return State(p.state.Load())
}

// Options returns the effective options after defaults were applied.
func (p *Pipeline[T]) Options() Options {
	return p.opts
}

func (p *Pipeline[T]) setState(s State) {
	p.state.Store(int32(s))
}

type envelope[T any] struct {
	doc       T
	candidate scanner.Candidate
}

type run[T any] struct {
	p       *Pipeline[T]
	logger  *slog.Logger
	items   chan envelope[T]
	failed  chan struct{}
	once    sync.Once
	fatal   error
	cancel  context.CancelFunc
	decodes atomic.Int64
	reads   atomic.Int64
}

func (r *run[T]) fail(err error) {
	r.once.Do(func() {
		r.fatal = err
		close(r.failed)
		r.cancel()
	})
}

// Run executes the pipeline to completion. It may be called once.
func (p *Pipeline[T]) Run(ctx context.Context, handler Handler[T]) (Stats, error) {
	if !p.ran.CompareAndSwap(false, true) {
		return Stats{}, ErrAlreadyRun
	}
	logger := logging.WithContext(ctx, p.logger)
	var stats Stats

	p.setState(StateScanning)
	candidates, err := p.source.Candidates(ctx)
	if err != nil {
		p.setState(StateAborted)
		return stats, fmt.Errorf("%w: enumerate candidates: %w", ErrAborted, err)
	}
	stats.Candidates = len(candidates)
	var totalSize int64
	for _, c := range candidates {
		totalSize += c.Size
	}
	logger.Info("pipeline starting",
		logging.Int("candidates", len(candidates)),
		logging.String("input_size", humanize.Bytes(uint64(max(totalSize, 0)))),
		logging.Int("workers", p.opts.Workers),
		logging.Int("capacity", p.opts.Capacity),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r := &run[T]{
		p:      p,
		logger: logger,
		items:  make(chan envelope[T], p.opts.Capacity),
		failed: make(chan struct{}),
		cancel: cancel,
	}

	p.observer.StageStarted(StageUnpack, len(candidates))
	p.observer.StageStarted(StageProcess, len(candidates))
	p.setState(StateStreaming)

	produced := make(chan struct{})
	go func() {
		defer close(produced)
		r.produce(runCtx, candidates)
	}()

	processed, consumeErr := r.consume(runCtx, handler)
	if consumeErr != nil {
		r.fail(consumeErr)
	}
	<-produced

	stats.Processed = processed
	stats.DecodeFailures = int(r.decodes.Load())
	stats.ReadFailures = int(r.reads.Load())
	p.observer.StageFinished(StageUnpack)
	p.observer.StageFinished(StageProcess)

	select {
	case <-r.failed:
		p.setState(StateAborted)
		logger.Error("pipeline aborted",
			logging.Int("processed", stats.Processed),
			logging.Error(r.fatal),
		)
		return stats, r.fatal
	default:
	}

	p.setState(StateDone)
	logger.Info("pipeline complete",
		logging.Int("candidates", stats.Candidates),
		logging.Int("processed", stats.Processed),
		logging.Int("decode_failures", stats.DecodeFailures),
		logging.Int("read_failures", stats.ReadFailures),
	)
	return stats, nil
}

func (r *run[T]) produce(ctx context.Context, candidates []scanner.Candidate) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.p.opts.Workers)
	for _, candidate := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.unpack(gctx, candidate)
		})
	}
	if err := g.Wait(); err != nil {
		r.fail(err)
	}
	r.p.state.CompareAndSwap(int32(StateStreaming), int32(StateDraining))
	close(r.items)
}

func (r *run[T]) unpack(ctx context.Context, candidate scanner.Candidate) error {
	if ctx.Err() != nil {
		return nil
	}
	logger := r.logger.With(logging.String(logging.FieldPath, candidate.Path))

	data, err := r.read(ctx, candidate)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.reads.Add(1)
		r.p.observer.ItemDone(StageUnpack, OutcomeReadFailed)
		if r.p.opts.Strict {
			err = fmt.Errorf("%w: read %s: %w", ErrAborted, candidate.Name, err)
			r.fail(err)
			return err
		}
		logger.Warn("skipping unreadable document", logging.Error(err))
		return nil
	}

	doc, err := r.p.decode(data)
	if err != nil {
		r.decodes.Add(1)
		r.p.observer.ItemDone(StageUnpack, OutcomeDecodeFailed)
		if r.p.opts.Strict {
			err = fmt.Errorf("%w: decode %s: %w", ErrAborted, candidate.Name, err)
			r.fail(err)
			return err
		}
		logger.Warn("skipping undecodable document", logging.Error(err))
		return nil
	}
	r.p.observer.ItemDone(StageUnpack, OutcomeOK)
	logger.Debug("document decoded", logging.String("size", humanize.Bytes(uint64(len(data)))))

	select {
	case r.items <- envelope[T]{doc: doc, candidate: candidate}:
	case <-ctx.Done():
	}
	return nil
}

func (r *run[T]) read(ctx context.Context, candidate scanner.Candidate) ([]byte, error) {
	rc, err := r.p.source.Open(ctx, candidate)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(ctxReader{ctx: ctx, r: rc})
}

func (r *run[T]) consume(ctx context.Context, handler Handler[T]) (int, error) {
	progress := stageProgress{observer: r.p.observer, stage: StageProcess}
	processed := 0
	for {
		select {
		case <-r.failed:
			return processed, nil
		case <-ctx.Done():
			return processed, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
		default:
		}
		select {
		case <-r.failed:
			return processed, nil
		case <-ctx.Done():
			return processed, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
		case item, ok := <-r.items:
			if !ok {
				return processed, nil
			}
			if err := handler.Process(ctx, progress, item.doc); err != nil {
				return processed, fmt.Errorf("%w: process %s: %w", ErrAborted, item.candidate.Name, err)
			}
			processed++
			r.p.observer.ItemDone(StageProcess, OutcomeOK)
		}
	}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
