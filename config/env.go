package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.string("PIPELINE_NAME", &cfg.Pipeline.Name)

	env.string("DATABASE_URL", &cfg.Database.URL)
	env.string("SUPABASE_CONN_STRING", &cfg.Database.URL)
	env.string("DATABASE_DRIVER", &cfg.Database.Driver)

	env.string("NEO4J_URI", &cfg.Neo4j.URI)
	env.string("NEO4J_USER", &cfg.Neo4j.User)
	env.string("NEO4J_PASSWORD", &cfg.Neo4j.Password)
	env.string("NEO4J_DATABASE", &cfg.Neo4j.Database)

	env.string("OUTBOX_TABLE", &cfg.Outbox.Table)
	env.list("OUTBOX_TABLES", &cfg.Outbox.Tables)
	env.list("OUTBOX_AGGREGATE_TYPES", &cfg.Outbox.AggregateTypes)
	env.int("BATCH_SIZE", &cfg.Outbox.BatchSize)
	env.int("MAX_ATTEMPTS", &cfg.Outbox.MaxAttempts)
	env.seconds("POLL_INTERVAL_SECONDS", &cfg.Outbox.PollInterval)

	env.string("LOG_LEVEL", &cfg.Log.Level)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	env.string("METRICS_ADDR", &cfg.Metrics.Addr)

	env.bool("OTEL_ENABLED", &cfg.Tracing.Enabled)
	env.string("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	env.float("OTEL_SAMPLING_RATIO", &cfg.Tracing.SamplingRatio)

	return env.err
}

// envReader keeps the first parse error so every setter can stay a one-liner.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)

	return v, v != ""
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config: %s=%q: %w", key, value, err)
	}
}

func (e *envReader) string(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = f
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = b
}

func (e *envReader) seconds(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = time.Duration(f * float64(time.Second))
}
