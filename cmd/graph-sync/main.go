// Command graph-sync polls the relational outbox and mirrors lineage, vendor mapping, audit and data quality
// changes into Neo4j.
//
// Run several instances against the same outbox table to scale out; SKIP LOCKED fetches keep them apart.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/config"
	"github.com/velmie/graphsync/graph"
	"github.com/velmie/graphsync/internal/storage"
	"github.com/velmie/graphsync/pipeline"
	"github.com/velmie/graphsync/sqlstore"
	"github.com/velmie/graphsync/telemetry"
)

const (
	serviceName     = "graph-sync"
	shutdownTimeout = 10 * time.Second
)

func main() {
	var (
		configPath string
		once       bool
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "", "Optional YAML config file; environment variables override it")
	flag.BoolVar(&once, "once", false, "Process a single batch and exit")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	if err := run(configPath, once, verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, once, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	workerID := uuid.NewString()
	logger := telemetry.NewLogger(os.Stdout, cfg.Log.Level, serviceName, cfg.Pipeline.Name, workerID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SamplingRatio,
		InstanceID:  workerID,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "err", err)
		}
	}()

	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	pool := sqlstore.DefaultPool()
	if cfg.Database.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.Database.MaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		pool.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	}

	db, err := storage.Open(ctx, dialect, cfg.Database.URL, pool)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("database close failed", "err", err)
		}
	}()

	store, err := sqlstore.NewStore(db, dialect, sqlstore.WithTable(cfg.Outbox.Table))
	if err != nil {
		return err
	}
	snapshots, err := sqlstore.NewSnapshots(db, dialect)
	if err != nil {
		return err
	}

	client, err := graph.NewClient(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password,
		graph.WithDatabase(cfg.Neo4j.Database),
		graph.WithMaxPoolSize(cfg.Neo4j.MaxPoolSize),
		graph.WithMaxRetryTime(cfg.Neo4j.MaxRetryTime),
		graph.WithLogger(logger),
		graph.WithTracerProvider(tp),
	)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("graph close failed", "err", err)
		}
	}()
	if err := client.VerifyConnectivity(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg, cfg.Pipeline.Name)

	dispatcher := graphsync.NewDispatcher(store, pipeline.NewSet(snapshots, client, logger),
		graphsync.WithDispatchLogger(logger),
		graphsync.WithDispatchMetrics(metrics),
		graphsync.WithTracerProvider(tp),
	)

	aggregateTypes := make([]graphsync.AggregateType, 0, len(cfg.Outbox.AggregateTypes))
	for _, name := range cfg.Outbox.AggregateTypes {
		aggregateTypes = append(aggregateTypes, graphsync.AggregateType(name))
	}
	relay := graphsync.NewRelay(store, dispatcher,
		graphsync.WithBatchSize(cfg.Outbox.BatchSize),
		graphsync.WithPollInterval(cfg.Outbox.PollInterval),
		graphsync.WithMaxAttempts(cfg.Outbox.MaxAttempts),
		graphsync.WithTables(cfg.Outbox.Tables...),
		graphsync.WithAggregateTypes(aggregateTypes...),
		graphsync.WithPendingInterval(cfg.Outbox.PendingInterval),
		graphsync.WithLogger(logger),
		graphsync.WithMetrics(metrics),
	)

	if cfg.Metrics.Addr != "" {
		srv := telemetry.NewServer(cfg.Metrics.Addr, telemetry.NewMux(reg,
			telemetry.ReadyCheck{Name: string(dialect), Check: store.Ping},
			telemetry.ReadyCheck{Name: "neo4j", Check: client.VerifyConnectivity},
		))
		go serve(srv, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("graph sync starting",
		"driver", string(dialect),
		"outbox_table", cfg.Outbox.Table,
		"tables", cfg.Outbox.Tables,
		"aggregate_types", cfg.Outbox.AggregateTypes,
		"once", once,
	)

	if once {
		processed, err := relay.ProcessOnce(ctx)
		if err != nil {
			return err
		}
		logger.Info("single batch done", "fetched", processed)

		return nil
	}

	return relay.Run(ctx)
}

func serve(srv *http.Server, logger *slog.Logger) {
	logger.Info("metrics listener started", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics listener failed", "err", err)
	}
}
