package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-report-service/internal/domain"
	"github.com/couchcryptid/quake-report-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into a display row.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.DisplayRow, error)
}

// BatchLoader writes multiple display rows to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, rows []domain.DisplayRow) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the real clock used for retry waits and batch timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// Pipeline moves earthquake messages from the extractor through the
// formatter to the loader, one batch at a time.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	batchSize   int

	// pending holds a formatted batch whose load failed. It is retried before
	// anything new is fetched, since the reader has already moved past it.
	pending *pendingBatch

	// ready flips once the first batch reaches the sink.
	ready atomic.Bool
}

type pendingBatch struct {
	rows    []domain.DisplayRow
	sources []domain.RawEvent
	started time.Time
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		batchSize:   batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness reports an error until at least one batch has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ready.Load() {
		return nil
	}
	return errors.New("no display rows published yet")
}

// Run consumes batches until ctx is cancelled. Source and sink failures are
// retried with exponential backoff; Run itself only returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newBackoff(200*time.Millisecond, 5*time.Second)

	for ctx.Err() == nil {
		err := p.runOnce(ctx)
		switch {
		case err == nil:
			retry.reset()
		case ctx.Err() != nil:
		default:
			p.wait(ctx, retry.next())
		}
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runOnce loads the pending batch if there is one, otherwise extracts and
// formats a new batch and loads that. A non-nil error means the load or
// extract should be retried after a backoff; nothing was committed.
func (p *Pipeline) runOnce(ctx context.Context) error {
	if p.pending == nil {
		if err := p.extractAndFormat(ctx); err != nil {
			return err
		}
		if p.pending == nil {
			return nil
		}
	}
	return p.publish(ctx)
}

// extractAndFormat fetches one batch and stores its formatted rows as pending.
func (p *Pipeline) extractAndFormat(ctx context.Context) error {
	start := p.clock.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("extract batch failed", "error", err)
		}
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	rows, formatted := p.format(ctx, batch)
	if len(rows) > 0 {
		p.pending = &pendingBatch{rows: rows, sources: formatted, started: start}
	}
	return nil
}

// publish loads the pending batch and commits its sources. On failure the
// batch stays pending.
func (p *Pipeline) publish(ctx context.Context) error {
	b := p.pending
	if err := p.loader.LoadBatch(ctx, b.rows); err != nil {
		if ctx.Err() == nil {
			p.logger.Error("load batch failed, will retry", "error", err, "batch_size", len(b.rows))
		}
		return err
	}
	p.pending = nil

	p.metrics.MessagesProduced.Add(float64(len(b.rows)))
	for i := range b.rows {
		p.metrics.RowsByBucket.WithLabelValues(b.rows[i].Display.Bucket.String()).Inc()
	}
	for _, raw := range b.sources {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(p.clock.Since(b.started).Seconds())
	p.ready.Store(true)
	return nil
}

// format transforms every message in the batch. Messages that cannot be
// decoded are committed immediately so they are not redelivered; the rest
// are returned alongside their rows and committed after the load succeeds.
func (p *Pipeline) format(ctx context.Context, batch []domain.RawEvent) ([]domain.DisplayRow, []domain.RawEvent) {
	rows := make([]domain.DisplayRow, 0, len(batch))
	formatted := make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		row, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		rows = append(rows, row)
		formatted = append(formatted, raw)
	}
	return rows, formatted
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// wait blocks for d on the pipeline clock or until ctx is done.
func (p *Pipeline) wait(ctx context.Context, d time.Duration) {
	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.Chan():
	}
}

// backoff doubles from initial up to ceiling on each consecutive failure.
type backoff struct {
	initial, ceiling, current time.Duration
}

func newBackoff(initial, ceiling time.Duration) *backoff {
	return &backoff{initial: initial, ceiling: ceiling, current: initial}
}

// next returns the delay to apply now and advances the sequence.
func (b *backoff) next() time.Duration {
	d := b.current
	b.current = min(b.current*2, b.ceiling)
	return d
}

func (b *backoff) reset() {
	b.current = b.initial
}
