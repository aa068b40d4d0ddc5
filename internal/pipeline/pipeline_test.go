package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/quake-report-service/internal/domain"
	"github.com/couchcryptid/quake-report-service/internal/observability"
	"github.com/couchcryptid/quake-report-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	mu      sync.Mutex
	batches [][]domain.RawEvent
	errs    []error
	calls   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	m.calls.Add(1)
	m.mu.Lock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		m.mu.Unlock()
		return nil, err
	}
	if len(m.batches) > 0 {
		b := m.batches[0]
		m.batches = m.batches[1:]
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()

	// block until context cancelled to simulate waiting for messages
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.DisplayRow, error) {
	if m.err != nil {
		return domain.DisplayRow{}, m.err
	}
	return domain.DisplayRow{ID: string(raw.Key), Display: domain.DisplayFields{Bucket: 6}}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.DisplayRow
	errs   []error
	done   chan struct{}
}

func newMockLoader() *mockLoader {
	return &mockLoader{done: make(chan struct{}, 10)}
}

func (m *mockLoader) LoadBatch(_ context.Context, rows []domain.DisplayRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	m.loaded = append(m.loaded, rows...)
	m.done <- struct{}{}
	return nil
}

func (m *mockLoader) rows() []domain.DisplayRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DisplayRow(nil), m.loaded...)
}

func rawEvent(key string) domain.RawEvent {
	return domain.RawEvent{Key: []byte(key), Value: []byte(`{}`), Topic: "raw-earthquakes"}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawEvent("a"), rawEvent("b")}}}
	ldr := newMockLoader()
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	rows := ldr.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)
	require.NoError(t, p.CheckReadiness(ctx))

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsByBucket.WithLabelValues("6")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{}
	ldr := newMockLoader()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.rows())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsAndCommits(t *testing.T) {
	var commits atomic.Int64
	raw := rawEvent("bad")
	raw.Commit = func(_ context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := newMockLoader()
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad data")}, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.rows())
	assert.Equal(t, int64(1), commits.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TransformErrors), 0)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	committed := make(chan struct{}, 1)
	raw := rawEvent("a")
	raw.Commit = func(_ context.Context) error {
		committed <- struct{}{}
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := newMockLoader()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	select {
	case <-committed:
	default:
		t.Fatal("expected offset commit after load")
	}
	assert.Len(t, ldr.rows(), 1)
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	fc := clockwork.NewFakeClock()
	ext := &mockExtractor{
		errs:    []error{errors.New("broker unavailable")},
		batches: [][]domain.RawEvent{{rawEvent("a")}},
	}
	ldr := newMockLoader()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10, pipeline.WithClock(fc))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	// The pipeline sleeps on the fake clock after the failed extract.
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	assert.Empty(t, ldr.rows())
	fc.Advance(200 * time.Millisecond)

	select {
	case <-ldr.done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for load after backoff")
	}
	assert.Len(t, ldr.rows(), 1)

	cancel()
	require.NoError(t, <-errCh)
}

func TestPipeline_Run_LoadErrorRetriesSameBatch(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var commits atomic.Int64
	a := rawEvent("a")
	a.Commit = func(_ context.Context) error {
		commits.Add(1)
		return nil
	}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{a}, {rawEvent("b")}}}
	ldr := newMockLoader()
	ldr.errs = []error{errors.New("sink down")}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10, pipeline.WithClock(fc))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	assert.Equal(t, int64(0), commits.Load(), "failed batch must not be committed")
	assert.Equal(t, int64(1), ext.calls.Load(), "no new fetch while a batch is pending")
	fc.Advance(200 * time.Millisecond)

	for range 2 {
		select {
		case <-ldr.done:
		case <-ctx.Done():
			t.Fatal("timed out waiting for loads after backoff")
		}
	}
	rows := ldr.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)
	assert.Equal(t, int64(1), commits.Load())

	cancel()
	require.NoError(t, <-errCh)
}
