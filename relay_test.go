package graphsync

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type staticConsumer struct {
	events []Event
	err    error
}

func (c staticConsumer) Fetch(context.Context, FetchOptions) ([]Event, error) {
	return c.events, c.err
}

type captureConsumer struct {
	opts []FetchOptions
}

func (c *captureConsumer) Fetch(_ context.Context, opts FetchOptions) ([]Event, error) {
	c.opts = append(c.opts, opts)

	return nil, nil
}

// cancelConsumer cancels the run context on its first fetch and returns no events.
type cancelConsumer struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelConsumer) Fetch(context.Context, FetchOptions) ([]Event, error) {
	c.calls++
	c.cancel()

	return nil, nil
}

type pendingConsumer struct {
	count int
	err   error
	calls int
}

func (c *pendingConsumer) Fetch(context.Context, FetchOptions) ([]Event, error) {
	return nil, nil
}

func (c *pendingConsumer) PendingCount(context.Context, FetchOptions) (int, error) {
	c.calls++

	return c.count, c.err
}

type recordingDispatcher struct {
	batches [][]Event
	err     error
	hook    func()
}

func (d *recordingDispatcher) DispatchBatch(_ context.Context, events []Event) error {
	d.batches = append(d.batches, events)
	if d.hook != nil {
		d.hook()
	}

	return d.err
}

type captureMetrics struct {
	mu           sync.Mutex
	batchSizes   []int
	durations    []time.Duration
	outcomes     map[OutcomeKind]int
	unrouted     []AggregateType
	pending      int
	pendingCalls int
}

func (m *captureMetrics) ObserveBatchDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, d)
}

func (m *captureMetrics) ObserveBatchSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSizes = append(m.batchSizes, size)
}

func (m *captureMetrics) AddOutcome(_ AggregateType, kind OutcomeKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[OutcomeKind]int)
	}
	m.outcomes[kind]++
}

func (m *captureMetrics) AddUnrouted(aggregate AggregateType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unrouted = append(m.unrouted, aggregate)
}

func (m *captureMetrics) SetPending(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = count
	m.pendingCalls++
}

func testEvents(n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{
			ID:            uuid.New(),
			AggregateType: AggregateLineage,
			TableName:     "data_lineage",
			Op:            OpInsert,
			AggregateID:   "product:p-1",
		}
	}

	return events
}

func TestRelayProcessOnce(t *testing.T) {
	events := testEvents(3)
	dispatcher := &recordingDispatcher{}
	metrics := &captureMetrics{}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(250 * time.Millisecond)}
	clock := ClockFunc(func() time.Time {
		now := ticks[0]
		ticks = ticks[1:]

		return now
	})

	relay := NewRelay(staticConsumer{events: events}, dispatcher, WithMetrics(metrics), WithClock(clock))
	ok, err := relay.ProcessOnce(context.Background())
	if err != nil {
		t.Fatalf("process once: %v", err)
	}
	if !ok {
		t.Fatalf("expected batch to be processed")
	}
	if len(dispatcher.batches) != 1 || len(dispatcher.batches[0]) != 3 {
		t.Fatalf("expected one batch of 3 events, got %v", dispatcher.batches)
	}
	if !slices.Equal(metrics.batchSizes, []int{3}) {
		t.Fatalf("unexpected batch sizes: %v", metrics.batchSizes)
	}
	if len(metrics.durations) != 1 || metrics.durations[0] != 250*time.Millisecond {
		t.Fatalf("unexpected durations: %v", metrics.durations)
	}
}

func TestRelayProcessOnceNoEvents(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	relay := NewRelay(staticConsumer{}, dispatcher)

	ok, err := relay.ProcessOnce(context.Background())
	if err != nil {
		t.Fatalf("process once: %v", err)
	}
	if ok {
		t.Fatalf("expected empty poll")
	}
	if len(dispatcher.batches) != 0 {
		t.Fatalf("dispatcher must not be called for an empty batch")
	}
}

func TestRelayProcessOnceFetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	relay := NewRelay(staticConsumer{err: fetchErr}, &recordingDispatcher{})

	ok, err := relay.ProcessOnce(context.Background())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if ok {
		t.Fatalf("expected no batch on fetch error")
	}
}

func TestRelayProcessOnceDispatchError(t *testing.T) {
	markErr := errors.New("mark failed")
	relay := NewRelay(staticConsumer{events: testEvents(1)}, &recordingDispatcher{err: markErr})

	ok, err := relay.ProcessOnce(context.Background())
	if !errors.Is(err, markErr) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected batch to be reported as fetched")
	}
}

func TestRelayRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	consumer := &captureConsumer{}
	relay := NewRelay(consumer, &recordingDispatcher{})
	if err := relay.Run(ctx); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
	if len(consumer.opts) != 0 {
		t.Fatalf("expected no fetch after cancel, got %d", len(consumer.opts))
	}
}

func TestRelayRunCancelDuringIdleWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &cancelConsumer{cancel: cancel}
	relay := NewRelay(consumer, &recordingDispatcher{}, WithPollInterval(time.Hour))

	done := make(chan error, 1)
	go func() {
		done <- relay.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("relay did not stop after cancel")
	}
	if consumer.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", consumer.calls)
	}
}

func TestRelayRunReturnsFetchError(t *testing.T) {
	fetchErr := errors.New("connection reset")
	relay := NewRelay(staticConsumer{err: fetchErr}, &recordingDispatcher{})

	err := relay.Run(context.Background())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestRelayRunSwallowsCancelDuringDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := &recordingDispatcher{err: context.Canceled, hook: cancel}
	relay := NewRelay(staticConsumer{events: testEvents(2)}, dispatcher)

	if err := relay.Run(ctx); err != nil {
		t.Fatalf("expected nil when dispatch is interrupted by shutdown, got %v", err)
	}
	if len(dispatcher.batches) != 1 {
		t.Fatalf("expected one dispatched batch, got %d", len(dispatcher.batches))
	}
}

func TestRelayFetchOptionsDefaults(t *testing.T) {
	consumer := &captureConsumer{}
	relay := NewRelay(consumer, &recordingDispatcher{})

	if _, err := relay.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if len(consumer.opts) != 1 {
		t.Fatalf("expected one fetch, got %d", len(consumer.opts))
	}
	opts := consumer.opts[0]
	if opts.BatchSize != defaultBatchSize {
		t.Fatalf("expected batch size %d, got %d", defaultBatchSize, opts.BatchSize)
	}
	if opts.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("expected max attempts %d, got %d", defaultMaxAttempts, opts.MaxAttempts)
	}
	if !slices.Equal(opts.Tables, DefaultTables()) {
		t.Fatalf("unexpected tables: %v", opts.Tables)
	}
	if !slices.Equal(opts.AggregateTypes, DefaultAggregateTypes()) {
		t.Fatalf("unexpected aggregate types: %v", opts.AggregateTypes)
	}
}

func TestRelayFetchOptionsOverrides(t *testing.T) {
	consumer := &captureConsumer{}
	relay := NewRelay(consumer, &recordingDispatcher{},
		WithBatchSize(10),
		WithMaxAttempts(3),
		WithTables("audit_log"),
		WithAggregateTypes(AggregateAudit),
	)

	if _, err := relay.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	opts := consumer.opts[0]
	if opts.BatchSize != 10 || opts.MaxAttempts != 3 {
		t.Fatalf("unexpected limits: %+v", opts)
	}
	if !slices.Equal(opts.Tables, []string{"audit_log"}) {
		t.Fatalf("unexpected tables: %v", opts.Tables)
	}
	if !slices.Equal(opts.AggregateTypes, []AggregateType{AggregateAudit}) {
		t.Fatalf("unexpected aggregate types: %v", opts.AggregateTypes)
	}
}

func TestRelayPendingCountDisabledByDefault(t *testing.T) {
	consumer := &pendingConsumer{count: 5}
	metrics := &captureMetrics{}
	relay := NewRelay(consumer, &recordingDispatcher{}, WithMetrics(metrics))

	if _, err := relay.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if consumer.calls != 0 || metrics.pendingCalls != 0 {
		t.Fatalf("expected no pending sampling, got %d calls", consumer.calls)
	}
}

func TestRelayPendingCountEnabled(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	consumer := &pendingConsumer{count: 7}
	metrics := &captureMetrics{}
	relay := NewRelay(consumer, &recordingDispatcher{},
		WithMetrics(metrics),
		WithPendingInterval(time.Minute),
		WithClock(ClockFunc(func() time.Time { return now })),
	)

	for i := 0; i < 2; i++ {
		if _, err := relay.ProcessOnce(context.Background()); err != nil {
			t.Fatalf("process once: %v", err)
		}
	}
	if consumer.calls != 1 {
		t.Fatalf("expected a single sample within the interval, got %d", consumer.calls)
	}
	if metrics.pending != 7 {
		t.Fatalf("expected pending 7, got %d", metrics.pending)
	}

	now = now.Add(2 * time.Minute)
	if _, err := relay.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if consumer.calls != 2 || metrics.pendingCalls != 2 {
		t.Fatalf("expected a second sample after the interval, got %d", consumer.calls)
	}
}

func TestRelayPendingCountErrorIsNotFatal(t *testing.T) {
	consumer := &pendingConsumer{err: errors.New("timeout")}
	metrics := &captureMetrics{}
	relay := NewRelay(consumer, &recordingDispatcher{}, WithMetrics(metrics), WithPendingInterval(time.Minute))

	if _, err := relay.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("pending count errors must not fail the poll: %v", err)
	}
	if metrics.pendingCalls != 0 {
		t.Fatalf("expected no gauge update on error")
	}
}

func TestNewRelayPanicsOnNil(t *testing.T) {
	for name, build := range map[string]func(){
		"consumer":   func() { NewRelay(nil, &recordingDispatcher{}) },
		"dispatcher": func() { NewRelay(staticConsumer{}, nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			build()
		})
	}
}
