// Command outbox-stats prints per aggregate type counts of pending, exhausted and processed outbox events.
//
// Exhausted events reached the attempts ceiling and are never fetched again; use -fail-on-exhausted in a cron job
// to alert on them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"

	"github.com/velmie/graphsync/internal/storage"
	"github.com/velmie/graphsync/sqlstore"
)

const (
	exitUsage     = 2
	exitExhausted = 3
	queryTimeout  = 30 * time.Second
)

type report struct {
	MaxAttempts int                       `json:"max_attempts"`
	Aggregates  []sqlstore.AggregateStats `json:"aggregates"`
}

func (r report) exhausted() int64 {
	var total int64
	for _, st := range r.Aggregates {
		total += st.Exhausted
	}

	return total
}

func main() {
	var (
		dsn             string
		driver          string
		table           string
		maxAttempts     int
		format          string
		failOnExhausted bool
	)

	flag.StringVar(&dsn, "dsn", os.Getenv("SUPABASE_CONN_STRING"), "Database DSN (defaults to $SUPABASE_CONN_STRING)")
	flag.StringVar(&driver, "driver", "postgres", "Database driver: postgres or mysql")
	flag.StringVar(&table, "table", sqlstore.DefaultTable, "Outbox table name")
	flag.IntVar(&maxAttempts, "max-attempts", 5, "Attempts ceiling the workers run with")
	flag.StringVar(&format, "format", "table", "Output format: table or json")
	flag.BoolVar(&failOnExhausted, "fail-on-exhausted", false, "Exit with status 3 when exhausted events exist")
	flag.Parse()

	if dsn == "" {
		fmt.Fprintln(os.Stderr, "dsn is required")
		flag.Usage()
		os.Exit(exitUsage)
	}
	if format != "table" && format != "json" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", format)
		flag.Usage()
		os.Exit(exitUsage)
	}

	rep, err := collect(dsn, driver, table, maxAttempts)
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
	if err := write(os.Stdout, format, rep); err != nil {
		log.Print(err)
		os.Exit(1)
	}
	if failOnExhausted && rep.exhausted() > 0 {
		os.Exit(exitExhausted)
	}
}

func collect(dsn, driver, table string, maxAttempts int) (report, error) {
	dialect, err := sqlstore.ParseDialect(driver)
	if err != nil {
		return report{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pool := sqlstore.Pool{MaxOpenConns: 1}
	db, err := storage.Open(ctx, dialect, dsn, pool)
	if err != nil {
		return report{}, err
	}
	defer db.Close()

	store, err := sqlstore.NewStore(db, dialect, sqlstore.WithTable(table))
	if err != nil {
		return report{}, err
	}
	stats, err := store.Stats(ctx, maxAttempts)
	if err != nil {
		return report{}, err
	}

	return report{MaxAttempts: maxAttempts, Aggregates: stats}, nil
}

func write(w io.Writer, format string, rep report) error {
	if format == "json" {
		out, err := sonic.ConfigStd.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGGREGATE_TYPE\tPENDING\tEXHAUSTED\tPROCESSED")
	for _, st := range rep.Aggregates {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", st.AggregateType, st.Pending, st.Exhausted, st.Processed)
	}

	return tw.Flush()
}
