package sqlstore

import "github.com/velmie/graphsync"

// DefaultTable is the outbox table read when none is configured.
const DefaultTable = "outbox_events"

// Config defines outbox store behavior.
type Config struct {
	Table string
	Clock graphsync.Clock
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.Clock == nil {
		c.Clock = graphsync.SystemClock{}
	}

	return c
}

// Option configures the outbox store.
type Option func(*Config)

// WithTable sets the outbox table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithClock sets the time source used for processed_at.
func WithClock(clock graphsync.Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}
