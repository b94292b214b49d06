package graph

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/velmie/graphsync"
)

const (
	defaultMaxPoolSize    = 10
	defaultMaxRetryTime   = 30 * time.Second
	defaultAcquireTimeout = 30 * time.Second
	tracerName            = "github.com/velmie/graphsync/graph"
)

// Config holds client settings beyond the connection credentials.
type Config struct {
	Database       string
	MaxPoolSize    int
	MaxRetryTime   time.Duration
	AcquireTimeout time.Duration
	Logger         graphsync.Logger
	TracerProvider trace.TracerProvider
}

func (c Config) withDefaults() Config {
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = defaultMaxPoolSize
	}
	if c.MaxRetryTime <= 0 {
		c.MaxRetryTime = defaultMaxRetryTime
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = defaultAcquireTimeout
	}
	if c.Logger == nil {
		c.Logger = graphsync.NopLogger{}
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}

	return c
}

// Option configures the client.
type Option func(*Config)

// WithDatabase selects the Neo4j database; empty uses the server default.
func WithDatabase(name string) Option {
	return func(c *Config) {
		c.Database = name
	}
}

// WithMaxPoolSize bounds the driver's connection pool.
func WithMaxPoolSize(n int) Option {
	return func(c *Config) {
		c.MaxPoolSize = n
	}
}

// WithMaxRetryTime bounds how long the driver retries a transient write before giving up.
func WithMaxRetryTime(d time.Duration) Option {
	return func(c *Config) {
		c.MaxRetryTime = d
	}
}

// WithLogger sets the client logger.
func WithLogger(logger graphsync.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTracerProvider sets the tracer provider for write spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}
