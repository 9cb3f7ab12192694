package scanner

import (
	"context"
	"fmt"

	"github.com/deeprave/gstats-sub001/pkg/events"
)

// Source is one scanner subcomponent: a producer of one data type's
// worth of events.MessagePayload for a scan. Built-in sources (commit
// history, working-tree file state) and any host-supplied source both
// satisfy this interface uniformly.
type Source interface {
	// DataType names the batch this source produces, carried on the
	// ScanDataReady event published once Produce returns.
	DataType() string
	// Produce returns every payload this source contributes to the
	// scan. A non-fatal problem should be reported by returning data
	// collected so far alongside a non-nil, non-Fatal error; a fatal
	// problem should be wrapped with Fatal so the orchestrator aborts
	// the scan instead of continuing past it.
	Produce(ctx context.Context) ([]events.MessagePayload, error)
}

// FatalError marks a Source error as unrecoverable: the orchestrator
// publishes ScanError{fatal:true} and aborts the scan instead of
// recording a warning and continuing to the next source.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %s", e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so the orchestrator treats it as scan-aborting.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}
