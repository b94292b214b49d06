package graphsync

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BatchDispatcher applies a fetched batch.
type BatchDispatcher interface {
	// DispatchBatch handles events strictly in order. A returned error aborts the worker.
	DispatchBatch(ctx context.Context, events []Event) error
}

// Dispatcher routes events to pipelines and records the outcome in the outbox.
type Dispatcher struct {
	marker    Marker
	pipelines map[AggregateType]Pipeline
	cfg       DispatcherConfig
	tracer    trace.Tracer
}

var _ BatchDispatcher = (*Dispatcher)(nil)

// NewDispatcher constructs a Dispatcher over a fixed aggregate type lookup.
func NewDispatcher(marker Marker, pipelines map[AggregateType]Pipeline, opts ...DispatcherOption) *Dispatcher {
	if marker == nil {
		panic("graphsync: nil Marker")
	}

	var cfg DispatcherConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	routes := make(map[AggregateType]Pipeline, len(pipelines))
	for aggregate, pipeline := range pipelines {
		if pipeline == nil {
			panic(fmt.Sprintf("graphsync: nil Pipeline for %q", aggregate))
		}
		routes[aggregate] = pipeline
	}

	return &Dispatcher{
		marker:    marker,
		pipelines: routes,
		cfg:       cfg,
		tracer:    cfg.TracerProvider.Tracer(tracerName),
	}
}

// DispatchBatch implements BatchDispatcher.
func (d *Dispatcher) DispatchBatch(ctx context.Context, events []Event) error {
	for i := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.Dispatch(ctx, events[i]); err != nil {
			return err
		}
	}

	return nil
}

// Dispatch handles a single event and updates its outbox row.
//
// Unknown aggregate types leave the row untouched so it is offered again on the next poll.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) (Disposition, error) {
	pipeline, ok := d.pipelines[event.AggregateType]
	if !ok {
		d.cfg.Metrics.AddUnrouted(event.AggregateType)
		d.cfg.Logger.Warn("unhandled aggregate type",
			"event_id", event.ID.String(),
			"aggregate_type", string(event.AggregateType),
			"aggregate_id", event.AggregateID,
		)

		return DispositionUntouched, nil
	}

	ctx, span := d.tracer.Start(ctx, "graphsync.dispatch", trace.WithAttributes(
		attribute.String("outbox.event_id", event.ID.String()),
		attribute.String("outbox.aggregate_type", string(event.AggregateType)),
		attribute.String("outbox.aggregate_id", event.AggregateID),
		attribute.String("outbox.op", string(event.Op.Normalize())),
		attribute.Int("outbox.attempts", event.Attempts),
	))
	defer span.End()

	outcome := d.handle(ctx, pipeline, event)
	if outcome.Kind == OutcomeFailed && ctx.Err() != nil {
		// Shutdown interrupted the pipeline; the row stays pending without burning an attempt.
		span.SetStatus(codes.Error, "canceled")

		return DispositionUntouched, ctx.Err()
	}
	span.SetAttributes(attribute.String("graphsync.outcome", outcome.Kind.String()))
	d.cfg.Metrics.AddOutcome(event.AggregateType, outcome.Kind)

	markCtx := context.WithoutCancel(ctx)
	if outcome.Terminal() {
		if err := d.marker.MarkProcessed(markCtx, event.ID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "mark processed failed")

			return DispositionUntouched, fmt.Errorf("%w: processed %s: %w", ErrMarkFailed, event.ID, err)
		}
		d.logOutcome(event, outcome, ErrorClassNone)

		return DispositionProcessed, nil
	}

	class := d.cfg.Classifier(ctx, event, outcome.Err)
	span.RecordError(outcome.Err)
	span.SetStatus(codes.Error, outcome.Reason)
	if err := d.marker.MarkFailed(markCtx, event.ID, outcome.Err); err != nil {
		return DispositionUntouched, fmt.Errorf("%w: failed %s: %w", ErrMarkFailed, event.ID, err)
	}
	d.logOutcome(event, outcome, class)

	return DispositionFailed, nil
}

func (d *Dispatcher) handle(ctx context.Context, pipeline Pipeline, event Event) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Failed(fmt.Errorf("%w: %v", ErrPipelinePanic, rec))
		}
	}()

	outcome = pipeline.Handle(ctx, event)
	if outcome.Kind == OutcomeFailed && outcome.Err == nil {
		outcome = Failed(nil)
	}

	return outcome
}

func (d *Dispatcher) logOutcome(event Event, outcome Outcome, class ErrorClass) {
	args := []any{
		"event_id", event.ID.String(),
		"aggregate_type", string(event.AggregateType),
		"aggregate_id", event.AggregateID,
		"op", string(event.Op.Normalize()),
		"outcome", outcome.Kind.String(),
	}

	switch outcome.Kind {
	case OutcomeApplied:
		d.cfg.Logger.Info("outbox event applied", args...)
	case OutcomeSkippedNotFound, OutcomeSkippedUnsupported:
		d.cfg.Logger.Warn("outbox event skipped", append(args, "reason", outcome.Reason)...)
	default:
		d.cfg.Logger.Error("outbox event failed", append(args,
			"reason", outcome.Reason,
			"error_class", class.String(),
			"attempts", event.Attempts+1,
		)...)
	}
}
