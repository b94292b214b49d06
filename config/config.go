// Package config loads worker settings from an optional YAML file overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when the merged configuration fails validation.
var ErrInvalid = errors.New("config: invalid")

// Config is consumed read-only after Load returns.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Outbox   OutboxConfig   `yaml:"outbox"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type PipelineConfig struct {
	Name string `yaml:"name" validate:"required"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver" validate:"oneof=postgres postgresql pgx mysql"`
	URL             string        `yaml:"url" validate:"required"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" validate:"gte=0"`
}

type Neo4jConfig struct {
	URI          string        `yaml:"uri" validate:"required"`
	User         string        `yaml:"user" validate:"required"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database"`
	MaxPoolSize  int           `yaml:"max_pool_size" validate:"gte=0"`
	MaxRetryTime time.Duration `yaml:"max_retry_time" validate:"gte=0"`
}

type OutboxConfig struct {
	Table           string        `yaml:"table" validate:"required"`
	Tables          []string      `yaml:"tables" validate:"min=1,dive,required"`
	AggregateTypes  []string      `yaml:"aggregate_types" validate:"min=1,dive,required"`
	BatchSize       int           `yaml:"batch_size" validate:"gt=0"`
	MaxAttempts     int           `yaml:"max_attempts" validate:"gt=0"`
	PollInterval    time.Duration `yaml:"poll_interval" validate:"gt=0"`
	PendingInterval time.Duration `yaml:"pending_interval" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig enables the /metrics, /healthz and /readyz listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

type TracingConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Endpoint      string  `yaml:"endpoint" validate:"required_if=Enabled true"`
	SamplingRatio float64 `yaml:"sampling_ratio" validate:"gte=0,lte=1"`
}

// Default returns the settings used when neither file nor environment set a value.
func Default() Config {
	return Config{
		Pipeline: PipelineConfig{Name: "utility-lineage"},
		Database: DatabaseConfig{Driver: "postgres"},
		Neo4j:    Neo4jConfig{User: "neo4j"},
		Outbox: OutboxConfig{
			Table:           "outbox_events",
			Tables:          []string{"data_lineage", "vendor_product_mappings", "audit_log", "data_quality_scores"},
			AggregateTypes:  []string{"lineage_entity", "vendor_product_mapping", "audit_event", "data_quality_entity"},
			BatchSize:       100,
			MaxAttempts:     5,
			PollInterval:    5 * time.Second,
			PendingInterval: time.Minute,
		},
		Log:     LogConfig{Level: "info"},
		Tracing: TracingConfig{Endpoint: "localhost:4317", SamplingRatio: 1},
	}
}

// Load reads path (skipped when empty), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}
