package queue

import (
	"context"
	"sync"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/google/uuid"
)

type bufferedEntry struct {
	msg       events.ScanMessage
	sizeBytes int64
}

// Queue is a single logical FIFO of events.ScanMessage with independent
// per-consumer read cursors. See the package doc for the retention and
// backpressure model.
type Queue struct {
	id     string
	limits Limits
	bus    *notify.Manager[events.QueueEvent]

	mu        sync.Mutex
	cond      *sync.Cond
	entries   []bufferedEntry
	nextSeq   uint64
	totalSize int64 // sum of retained entries' sizeBytes
	consumers map[string]*cursor
	lastLevel events.MemoryPressureLevel
	closed    bool

	scanMu    sync.Mutex
	scanStats map[string]*ScanAccounting
}

// ScanAccounting tracks per-scan message counters driven by the
// orchestrator calling RecordScanStarted/RecordScanDataReady/
// RecordScanCompleted as it publishes the corresponding ScanEvents
// (spec.md §4.3, "Statistics and scan accounting").
type ScanAccounting struct {
	StartedAt     time.Time
	MessageCount  int
	Completed     bool
	CompletedAt   time.Time
	TotalDuration time.Duration
}

// New constructs a Queue with the given limits, publishing its
// lifecycle events on bus.
func New(limits Limits, bus *notify.Manager[events.QueueEvent]) *Queue {
	q := &Queue{
		id:        uuid.NewString(),
		limits:    limits.normalized(),
		bus:       bus,
		consumers: make(map[string]*cursor),
		scanStats: make(map[string]*ScanAccounting),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// ID returns the queue's unique identifier, used to tag published
// QueueEvents.
func (q *Queue) ID() string { return q.id }

// Enqueue appends msg with a freshly assigned monotone sequence number.
// Returns ErrBackpressure if the hard limit (limits.HardMultiplier ×
// the soft limit) would be exceeded; the message is not enqueued in
// that case. Returns ErrShuttingDown if Close has already been called.
// A message that no registered consumer needs is released at once.
// QueueFull is published only on the enqueue that crosses a soft limit.
func (q *Queue) Enqueue(payload events.MessagePayload) (uint64, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrShuttingDown
	}

	msg := events.ScanMessage{
		Header:  events.MessageHeader{Sequence: q.nextSeq + 1, Timestamp: time.Now()},
		Payload: payload,
	}
	size := msg.SizeBytes()

	hardCount := q.limits.hardMessages()
	hardBytes := q.limits.hardMemoryBytes()
	wouldCount := len(q.entries) + 1
	wouldBytes := q.totalSize + size
	if (hardCount > 0 && wouldCount > hardCount) || (hardBytes > 0 && wouldBytes > hardBytes) {
		q.mu.Unlock()
		return 0, ErrBackpressure
	}

	q.nextSeq = msg.Header.Sequence
	q.entries = append(q.entries, bufferedEntry{msg: msg, sizeBytes: size})
	q.totalSize += size
	q.releaseLocked()
	count := len(q.entries)
	totalSize := q.totalSize

	crossedFull := (q.limits.MaxMessages > 0 && count == q.limits.MaxMessages) ||
		(q.limits.MaxMemoryBytes > 0 && totalSize >= q.limits.MaxMemoryBytes && totalSize-size < q.limits.MaxMemoryBytes)
	level := q.limits.pressureLevel(count, totalSize)
	levelChanged := level != q.lastLevel
	q.lastLevel = level

	q.cond.Broadcast()
	q.mu.Unlock()

	q.publish(events.NewMessageAdded(q.id, 1, size))
	if crossedFull {
		q.publish(events.NewQueueFull(q.id, count))
	}
	if levelChanged {
		q.publish(events.NewMemoryPressure(q.id, level))
	}

	return msg.Header.Sequence, nil
}

// RegisterConsumer creates a new consumer cursor starting at the
// current tail: the consumer will not receive messages enqueued before
// registration. Publishes ConsumerRegistered.
func (q *Queue) RegisterConsumer(_ ConsumerPreferences) (ConsumerHandle, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ConsumerHandle{}, ErrShuttingDown
	}
	id := uuid.NewString()
	q.consumers[id] = &cursor{id: id, registeredAt: q.nextSeq, lastRead: q.nextSeq, ackedWatermark: q.nextSeq}
	q.mu.Unlock()

	q.publish(events.NewConsumerRegistered(q.id, id))
	return ConsumerHandle{ID: id}, nil
}

// DeregisterConsumer drops a consumer's cursor. Any messages retained
// only on its account may now be released. Returns ErrConsumerNotFound
// if id is not registered.
func (q *Queue) DeregisterConsumer(id string) error {
	q.mu.Lock()
	if _, exists := q.consumers[id]; !exists {
		q.mu.Unlock()
		return ErrConsumerNotFound
	}
	delete(q.consumers, id)
	q.releaseLocked()
	q.cond.Broadcast()
	q.mu.Unlock()

	q.publish(events.NewConsumerDeregistered(q.id, id))
	return nil
}

// ReadNext blocks until a message beyond the consumer's cursor is
// available, the queue is closed, or ctx is cancelled. It returns
// (msg, true, nil) on delivery, (zero, false, nil) once the queue is
// closed and drained for this consumer, or (zero, false, ctx.Err()) on
// cancellation. Delivery order for a single consumer equals enqueue
// order (strictly increasing sequence).
func (q *Queue) ReadNext(ctx context.Context, id string) (events.ScanMessage, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	c, exists := q.consumers[id]
	if !exists {
		return events.ScanMessage{}, false, ErrConsumerNotFound
	}

	done := make(chan struct{})
	defer close(done)
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				q.mu.Lock()
				q.cond.Broadcast()
				q.mu.Unlock()
			case <-done:
			}
		}()
	}

	for {
		if ctx != nil && ctx.Err() != nil {
			return events.ScanMessage{}, false, ctx.Err()
		}
		if idx, ok := q.findNextLocked(c); ok {
			entry := q.entries[idx]
			c.lastRead = entry.msg.Header.Sequence
			return entry.msg, true, nil
		}
		if q.closed {
			return events.ScanMessage{}, false, nil
		}
		q.cond.Wait()
	}
}

func (q *Queue) findNextLocked(c *cursor) (int, bool) {
	for i, e := range q.entries {
		if e.msg.Header.Sequence > c.lastRead {
			return i, true
		}
	}
	return 0, false
}

// Acknowledge advances the consumer's acknowledged high-watermark to
// seq. Once every consumer registered before seq was enqueued has
// acknowledged it (or been deregistered), the entry is released and
// MessageProcessed is published; if the queue becomes empty,
// QueueEmpty is also published. Acknowledge on an unregistered id is a
// no-op, matching the "dropped handle" rule in spec.md §9.
func (q *Queue) Acknowledge(id string, seq uint64) {
	q.mu.Lock()
	c, exists := q.consumers[id]
	if !exists {
		q.mu.Unlock()
		return
	}
	if seq > c.ackedWatermark {
		c.ackedWatermark = seq
	}
	released := q.releaseLocked()
	empty := len(q.entries) == 0
	q.mu.Unlock()

	for _, seq := range released {
		q.publish(events.NewMessageProcessed(q.id, seq))
	}
	if empty && len(released) > 0 {
		q.publish(events.NewQueueEmpty(q.id))
	}
}

// releaseLocked pops entries off the head of the buffer while no
// remaining consumer still needs them, returning the sequences released.
// Callers must hold q.mu.
func (q *Queue) releaseLocked() []uint64 {
	var released []uint64
	for len(q.entries) > 0 {
		head := q.entries[0]
		if q.neededLocked(head.msg.Header.Sequence) {
			break
		}
		q.entries = q.entries[1:]
		q.totalSize -= head.sizeBytes
		released = append(released, head.msg.Header.Sequence)
	}
	return released
}

func (q *Queue) neededLocked(seq uint64) bool {
	for _, c := range q.consumers {
		if c.registeredAt < seq && c.ackedWatermark < seq {
			return true
		}
	}
	return false
}

// Size returns the number of entries currently retained.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// MemoryUsage returns the sum of retained entries' estimated size.
func (q *Queue) MemoryUsage() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalSize
}

// Close marks the queue closed: ReadNext returns (zero, false, nil) for
// every consumer once its backlog is drained, and Enqueue refuses new
// messages.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *Queue) publish(evt events.QueueEvent) {
	if q.bus == nil {
		return
	}
	_ = q.bus.Publish(context.Background(), evt)
}
