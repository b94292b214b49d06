package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/velmie/graphsync"
)

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(nil, Postgres); !errors.Is(err, ErrDBRequired) {
		t.Fatalf("expected ErrDBRequired, got %v", err)
	}

	db := &sql.DB{}
	if _, err := NewStore(db, Dialect("oracle")); !errors.Is(err, ErrUnknownDialect) {
		t.Fatalf("expected ErrUnknownDialect, got %v", err)
	}
	if _, err := NewStore(db, MySQL, WithTable("outbox;drop")); !errors.Is(err, ErrInvalidTableName) {
		t.Fatalf("expected ErrInvalidTableName, got %v", err)
	}

	store, err := NewStore(db, Postgres)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.cfg.Table != DefaultTable {
		t.Fatalf("expected default table, got %q", store.cfg.Table)
	}
}

func TestMustNewStorePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustNewStore(nil, Postgres)
}

func TestFetchPendingValidation(t *testing.T) {
	store := MustNewStore(&sql.DB{}, MySQL)
	ctx := context.Background()

	if _, err := store.FetchPending(ctx, nil, graphsync.FetchOptions{BatchSize: 1, MaxAttempts: 1}); !errors.Is(err, ErrTxRequired) {
		t.Fatalf("expected ErrTxRequired, got %v", err)
	}
	if _, err := store.FetchPending(ctx, &sql.Tx{}, graphsync.FetchOptions{MaxAttempts: 1}); !errors.Is(err, graphsync.ErrInvalidBatchSize) {
		t.Fatalf("expected ErrInvalidBatchSize, got %v", err)
	}
	if _, err := store.FetchPending(ctx, &sql.Tx{}, graphsync.FetchOptions{BatchSize: 1}); !errors.Is(err, graphsync.ErrInvalidMaxAttempts) {
		t.Fatalf("expected ErrInvalidMaxAttempts, got %v", err)
	}
}

func TestTruncateError(t *testing.T) {
	if got := truncateError(nil); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}

	short := errors.New("boom")
	if got := truncateError(short); got != "boom" {
		t.Fatalf("expected message unchanged, got %q", got)
	}

	long := errors.New(strings.Repeat("é", MaxErrorLen+50))
	got := truncateError(long)
	if n := utf8.RuneCountInString(got); n != MaxErrorLen {
		t.Fatalf("expected %d characters, got %d", MaxErrorLen, n)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf-8 after truncation")
	}
}
