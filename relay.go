package graphsync

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Relay drives fetch, dispatch and idle-wait cycles against the outbox.
//
// A Relay is strictly sequential. Horizontal scale comes from running more worker processes against the same
// table; the store's SKIP LOCKED fetch keeps them from picking the same rows in one fetch window.
type Relay struct {
	consumer   Consumer
	dispatcher BatchDispatcher
	cfg        RelayConfig

	pendingMu sync.Mutex
	pendingAt time.Time
}

// NewRelay constructs a Relay with defaults and optional settings.
func NewRelay(consumer Consumer, dispatcher BatchDispatcher, opts ...RelayOption) *Relay {
	if consumer == nil {
		panic("graphsync: nil Consumer")
	}
	if dispatcher == nil {
		panic("graphsync: nil BatchDispatcher")
	}

	var cfg RelayConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Relay{
		consumer:   consumer,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Run polls until ctx is cancelled or the store fails.
//
// Fetch and mark errors are returned instead of retried: a broken relational connection must stop the worker.
func (r *Relay) Run(ctx context.Context) error {
	r.cfg.Logger.Info("relay started",
		"batch_size", r.cfg.BatchSize,
		"poll_interval", r.cfg.PollInterval.String(),
		"max_attempts", r.cfg.MaxAttempts,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		processed, err := r.ProcessOnce(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			r.cfg.Logger.Error("relay stopped", "err", err)

			return err
		}
		if processed {
			continue
		}

		if err := r.sleep(ctx, r.cfg.PollInterval); err != nil {
			return nil
		}
	}
}

// ProcessOnce fetches and dispatches a single batch. It reports whether any event was fetched.
func (r *Relay) ProcessOnce(ctx context.Context) (bool, error) {
	events, err := r.consumer.Fetch(ctx, r.cfg.fetchOptions())
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		r.maybeRecordPending(ctx)

		return false, nil
	}

	r.cfg.Metrics.ObserveBatchSize(len(events))
	start := r.cfg.Clock.Now()
	err = r.dispatcher.DispatchBatch(ctx, events)
	r.cfg.Metrics.ObserveBatchDuration(r.cfg.Clock.Now().Sub(start))

	return true, err
}

func (r *Relay) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Relay) maybeRecordPending(ctx context.Context) {
	counter, ok := r.consumer.(PendingCounter)
	if !ok {
		return
	}
	if r.cfg.PendingInterval <= 0 {
		return
	}
	if ctx.Err() != nil {
		return
	}

	now := r.cfg.Clock.Now()
	r.pendingMu.Lock()
	nextAllowed := r.pendingAt.Add(r.cfg.PendingInterval)
	if !r.pendingAt.IsZero() && now.Before(nextAllowed) {
		r.pendingMu.Unlock()

		return
	}
	r.pendingAt = now
	r.pendingMu.Unlock()

	count, err := counter.PendingCount(ctx, r.cfg.fetchOptions())
	if err != nil {
		r.cfg.Logger.Warn("outbox pending count failed", "err", err)

		return
	}

	r.cfg.Metrics.SetPending(count)
}
