package graphsync

// Disposition is what the dispatcher did to the outbox row of an event.
type Disposition int16

const (
	// DispositionUntouched means the row was left as fetched and will be offered again.
	DispositionUntouched Disposition = 0
	// DispositionProcessed means processed_at was set.
	DispositionProcessed Disposition = 1
	// DispositionFailed means attempts was incremented and the row stays pending.
	DispositionFailed Disposition = -1
)

func (d Disposition) String() string {
	switch d {
	case DispositionProcessed:
		return "processed"
	case DispositionFailed:
		return "failed"
	default:
		return "untouched"
	}
}
