package graphsync

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 5
	defaultPendingCheck = 0
	tracerName          = "github.com/velmie/graphsync"
)

// RelayConfig defines how the Relay polls the outbox.
type RelayConfig struct {
	BatchSize       int
	PollInterval    time.Duration
	MaxAttempts     int
	Tables          []string
	AggregateTypes  []AggregateType
	Clock           Clock
	Logger          Logger
	Metrics         Metrics
	PendingInterval time.Duration
}

func (c RelayConfig) withDefaults() RelayConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Tables == nil {
		c.Tables = DefaultTables()
	}
	if c.AggregateTypes == nil {
		c.AggregateTypes = DefaultAggregateTypes()
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.PendingInterval <= 0 {
		c.PendingInterval = defaultPendingCheck
	}

	return c
}

func (c RelayConfig) fetchOptions() FetchOptions {
	return FetchOptions{
		BatchSize:      c.BatchSize,
		MaxAttempts:    c.MaxAttempts,
		Tables:         c.Tables,
		AggregateTypes: c.AggregateTypes,
	}
}

// RelayOption configures Relay behavior.
type RelayOption func(*RelayConfig)

// WithBatchSize sets the number of events fetched per batch.
func WithBatchSize(size int) RelayOption {
	return func(c *RelayConfig) {
		c.BatchSize = size
	}
}

// WithPollInterval sets the delay after an empty poll.
func WithPollInterval(interval time.Duration) RelayOption {
	return func(c *RelayConfig) {
		c.PollInterval = interval
	}
}

// WithMaxAttempts sets the attempts ceiling above which events are no longer fetched.
func WithMaxAttempts(attempts int) RelayOption {
	return func(c *RelayConfig) {
		c.MaxAttempts = attempts
	}
}

// WithTables sets the source table allow-list.
func WithTables(tables ...string) RelayOption {
	return func(c *RelayConfig) {
		c.Tables = tables
	}
}

// WithAggregateTypes sets the aggregate type allow-list.
func WithAggregateTypes(types ...AggregateType) RelayOption {
	return func(c *RelayConfig) {
		c.AggregateTypes = types
	}
}

// WithClock sets the Relay clock.
func WithClock(clock Clock) RelayOption {
	return func(c *RelayConfig) {
		c.Clock = clock
	}
}

// WithLogger sets the relay logger.
func WithLogger(logger Logger) RelayOption {
	return func(c *RelayConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the relay metrics recorder.
func WithMetrics(metrics Metrics) RelayOption {
	return func(c *RelayConfig) {
		c.Metrics = metrics
	}
}

// WithPendingInterval sets the minimum interval between pending count samples.
// Use a positive value to enable sampling or zero to keep it disabled.
// The default is disabled.
func WithPendingInterval(interval time.Duration) RelayOption {
	return func(c *RelayConfig) {
		c.PendingInterval = interval
	}
}

// DispatcherConfig defines how the Dispatcher reports outcomes.
type DispatcherConfig struct {
	Logger         Logger
	Metrics        Metrics
	Classifier     ErrorClassifier
	TracerProvider trace.TracerProvider
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.Classifier == nil {
		c.Classifier = defaultErrorClassifier
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}

	return c
}

// DispatcherOption configures Dispatcher behavior.
type DispatcherOption func(*DispatcherConfig)

// WithDispatchLogger sets the logger receiving one outcome record per event.
func WithDispatchLogger(logger Logger) DispatcherOption {
	return func(c *DispatcherConfig) {
		c.Logger = logger
	}
}

// WithDispatchMetrics sets the metrics recorder for outcomes.
func WithDispatchMetrics(metrics Metrics) DispatcherOption {
	return func(c *DispatcherConfig) {
		c.Metrics = metrics
	}
}

// WithErrorClassifier overrides failure classification.
func WithErrorClassifier(classifier ErrorClassifier) DispatcherOption {
	return func(c *DispatcherConfig) {
		c.Classifier = classifier
	}
}

// WithTracerProvider sets the provider used for per-event spans.
func WithTracerProvider(provider trace.TracerProvider) DispatcherOption {
	return func(c *DispatcherConfig) {
		c.TracerProvider = provider
	}
}
