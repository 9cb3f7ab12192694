package queue

// ConsumerPreferences declares how a consumer wants to be served. It is
// currently informational (buffer-size hinting for future batched
// reads); ReadNext always delivers one message at a time in sequence
// order regardless of BufferSize.
type ConsumerPreferences struct {
	BufferSize int
}

// ConsumerHandle identifies a registered consumer. It cannot outlive its
// registration: once DeregisterConsumer(handle.ID) has been called, the
// handle is inert — Acknowledge on a dropped handle's ID is a no-op,
// never an error (spec.md §9).
type ConsumerHandle struct {
	ID string
}

// cursor is the queue's private bookkeeping for one consumer.
type cursor struct {
	id             string
	registeredAt   uint64 // tail sequence at registration time; only seq > registeredAt is visible
	lastRead       uint64 // highest sequence delivered via ReadNext so far
	ackedWatermark uint64 // highest sequence acknowledged so far
}
