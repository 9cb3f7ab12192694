package scanner

import "errors"

// ErrDrainTimeout is returned by waitQueueDrained when the queue still
// holds retained entries once the configured idle timeout elapses.
var ErrDrainTimeout = errors.New("scanner: timed out waiting for queue to drain")
