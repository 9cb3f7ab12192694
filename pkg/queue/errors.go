package queue

import "errors"

// Sentinel errors matching the QueueError taxonomy of spec.md §7.
var (
	ErrBackpressure      = errors.New("queue: backpressure, hard limit exceeded")
	ErrConsumerNotFound  = errors.New("queue: consumer not found")
	ErrAlreadyRegistered = errors.New("queue: consumer already registered")
	ErrShuttingDown      = errors.New("queue: shutting down")
)
