package graphsync

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
)

// ErrorClass groups failures for logging and metrics.
type ErrorClass int

const (
	// ErrorClassNone is used for outcomes without an error.
	ErrorClassNone ErrorClass = iota
	// ErrorClassTransient covers connectivity failures of either store.
	ErrorClassTransient
	// ErrorClassApplication covers every other failure while loading or writing.
	ErrorClassApplication
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassTransient:
		return "transient_infra"
	case ErrorClassApplication:
		return "application_fault"
	default:
		return "none"
	}
}

// ErrorClassifier decides which class a pipeline failure belongs to.
// Both classes are retried through redelivery; the class only labels the outcome.
type ErrorClassifier func(ctx context.Context, event Event, err error) ErrorClass

type transient interface {
	Transient() bool
}

// ClassifyError is the default ErrorClassifier logic.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}

	var tr transient
	if errors.As(err, &tr) && tr.Transient() {
		return ErrorClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassTransient
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTransient
	}

	return ErrorClassApplication
}

func defaultErrorClassifier(_ context.Context, _ Event, err error) ErrorClass {
	return ClassifyError(err)
}
