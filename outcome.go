package graphsync

import "fmt"

// OutcomeKind classifies how a pipeline handled an event.
type OutcomeKind int

const (
	// OutcomeApplied means graph mutations were written.
	OutcomeApplied OutcomeKind = iota
	// OutcomeSkippedNotFound means the relational source row is absent and nothing could be applied.
	OutcomeSkippedNotFound
	// OutcomeSkippedUnsupported means the event references an entity type or key set that cannot be mapped.
	OutcomeSkippedUnsupported
	// OutcomeFailed means loading or writing failed and the event should be retried.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeApplied:
		return "applied"
	case OutcomeSkippedNotFound:
		return "skipped_not_found"
	case OutcomeSkippedUnsupported:
		return "skipped_unsupported"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of handling a single event.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}

// Applied reports a successful graph write.
func Applied() Outcome {
	return Outcome{Kind: OutcomeApplied}
}

// SkippedNotFound reports that the source row no longer exists.
func SkippedNotFound(reason string) Outcome {
	return Outcome{Kind: OutcomeSkippedNotFound, Reason: reason}
}

// SkippedUnsupported reports an event that can never be mapped onto the graph.
func SkippedUnsupported(reason string) Outcome {
	return Outcome{Kind: OutcomeSkippedUnsupported, Reason: reason}
}

// Failed reports a retryable failure. A nil error is replaced with ErrPipelineFailed.
func Failed(err error) Outcome {
	if err == nil {
		err = ErrPipelineFailed
	}

	return Outcome{Kind: OutcomeFailed, Reason: err.Error(), Err: err}
}

// Terminal reports whether the event should be marked processed.
// Skips are terminal: the event is permanently unsatisfiable and redelivery would loop forever.
func (o Outcome) Terminal() bool {
	return o.Kind != OutcomeFailed
}
