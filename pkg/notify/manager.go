package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMaxSubscribers = 1000
	defaultTimeout        = 5 * time.Second
)

// Manager is a generic typed publish/subscribe bus for one event family
// T (see pkg/events for the families this module defines). See the
// package doc for the delivery pipeline and ordering guarantees.
type Manager[T any] struct {
	maxSubscribers int
	timeout        time.Duration
	logger         zerolog.Logger

	mu          sync.RWMutex
	subscribers map[string]*subscriberRecord[T]
	order       []string

	statsMu sync.Mutex
	stats   Stats

	shuttingDown atomic.Bool
}

// Option configures a Manager at construction time.
type Option[T any] func(*Manager[T])

// WithMaxSubscribers overrides the default subscriber capacity (1000).
func WithMaxSubscribers[T any](n int) Option[T] {
	return func(m *Manager[T]) { m.maxSubscribers = n }
}

// WithDefaultTimeout overrides the default per-delivery timeout (5s).
func WithDefaultTimeout[T any](d time.Duration) Option[T] {
	return func(m *Manager[T]) { m.timeout = d }
}

// WithLogger attaches a component logger used for delivery-failure
// warnings. If unset, a disabled logger is used.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(m *Manager[T]) { m.logger = logger }
}

// NewManager constructs a Manager for event family T.
func NewManager[T any](opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{
		maxSubscribers: defaultMaxSubscribers,
		timeout:        defaultTimeout,
		logger:         zerolog.Nop(),
		subscribers:    make(map[string]*subscriberRecord[T]),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SubscribeOption configures one subscription.
type SubscribeOption[T any] func(*subscriberRecord[T])

// WithFilter declares the subscriber's event filter (default AcceptAll).
func WithFilter[T any](f Filter[T]) SubscribeOption[T] {
	return func(r *subscriberRecord[T]) { r.filter = f }
}

// WithRateLimit declares the subscriber's rate limit (default: none).
func WithRateLimit[T any](rl RateLimit) SubscribeOption[T] {
	return func(r *subscriberRecord[T]) {
		r.rateLimit = &rl
		r.window = newSlidingWindow(&rl)
	}
}

// Subscribe registers sub to receive future published events. Returns
// ErrSubscriberAlreadyExists if sub.ID() is already registered,
// ErrAtCapacity if the manager is at its subscriber limit, or
// ErrShuttingDown if Shutdown has already been called.
func (m *Manager[T]) Subscribe(sub Subscriber[T], opts ...SubscribeOption[T]) error {
	if m.shuttingDown.Load() {
		return ErrShuttingDown
	}

	rec := newSubscriberRecord[T](sub, AcceptAll[T](), nil)
	for _, opt := range opts {
		opt(rec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shuttingDown.Load() {
		return ErrShuttingDown
	}
	if _, exists := m.subscribers[sub.ID()]; exists {
		return ErrSubscriberAlreadyExists
	}
	if len(m.subscribers) >= m.maxSubscribers {
		return ErrAtCapacity
	}

	m.subscribers[sub.ID()] = rec
	m.order = append(m.order, sub.ID())
	return nil
}

// Unsubscribe removes a previously registered subscriber. Returns
// ErrSubscriberNotFound if id is not registered.
func (m *Manager[T]) Unsubscribe(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.subscribers[id]; !exists {
		return ErrSubscriberNotFound
	}
	delete(m.subscribers, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// HasSubscriber reports whether id is currently registered.
func (m *Manager[T]) HasSubscriber(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.subscribers[id]
	return exists
}

// SubscriberCount returns the number of currently registered subscribers.
func (m *Manager[T]) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Publish delivers event to every currently registered subscriber, in
// registration order, applying each subscriber's filter, rate limit,
// and delivery timeout. A subscriber's filtered/rate-limited/failed/
// timed-out delivery is recorded in statistics and never aborts
// delivery to the rest. Returns ErrShuttingDown if Shutdown has already
// been called.
func (m *Manager[T]) Publish(ctx context.Context, event T) error {
	return m.publish(ctx, event, nil)
}

// PublishTo delivers event to exactly one subscriber, identified by id,
// applying the same filter/rate-limit/timeout pipeline as Publish.
// Returns ErrSubscriberNotFound if id is not registered, or
// ErrShuttingDown if Shutdown has already been called.
func (m *Manager[T]) PublishTo(ctx context.Context, id string, event T) error {
	m.mu.RLock()
	_, exists := m.subscribers[id]
	m.mu.RUnlock()
	if !exists {
		return ErrSubscriberNotFound
	}
	return m.publish(ctx, event, &id)
}

func (m *Manager[T]) publish(ctx context.Context, event T, only *string) error {
	if m.shuttingDown.Load() {
		return ErrShuttingDown
	}

	m.mu.RLock()
	var targets []*subscriberRecord[T]
	if only != nil {
		if rec, exists := m.subscribers[*only]; exists {
			targets = []*subscriberRecord[T]{rec}
		}
	} else {
		targets = make([]*subscriberRecord[T], 0, len(m.order))
		for _, id := range m.order {
			targets = append(targets, m.subscribers[id])
		}
	}
	m.mu.RUnlock()

	m.statsMu.Lock()
	m.stats.Published++
	m.statsMu.Unlock()

	for _, rec := range targets {
		m.deliverOne(ctx, rec, event)
	}
	return nil
}

func (m *Manager[T]) deliverOne(ctx context.Context, rec *subscriberRecord[T], event T) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !rec.filter.Accept(event) {
		rec.stats.Filtered++
		return
	}
	rec.stats.Received++

	if !rec.window.allow(time.Now()) {
		rec.stats.Dropped++
		if rec.rateLimit != nil && rec.rateLimit.Overflow == OverflowError {
			rec.stats.Failures++
			m.recordGlobal(false, true, 0)
			m.logger.Warn().Str("subscriber", rec.sub.ID()).Msg("rate limit exceeded")
			return
		}
		m.recordGlobal(false, false, 0)
		return
	}

	deliveryCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- rec.sub.Notify(deliveryCtx, event)
	}()

	select {
	case err := <-errCh:
		elapsed := time.Since(start)
		if err != nil {
			rec.stats.Failures++
			m.recordGlobal(false, true, elapsed)
			m.logger.Warn().Str("subscriber", rec.sub.ID()).Err(err).Msg("delivery failed")
			return
		}
		rec.stats.Processed++
		rec.stats.totalDeliveryNs += elapsed.Nanoseconds()
		m.recordGlobal(true, false, elapsed)
	case <-deliveryCtx.Done():
		rec.stats.Failures++
		elapsed := time.Since(start)
		m.recordGlobal(false, true, elapsed)
		m.logger.Warn().Str("subscriber", rec.sub.ID()).Dur("timeout", m.timeout).Msg("delivery timed out")
	}
}

func (m *Manager[T]) recordGlobal(delivered, failed bool, elapsed time.Duration) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	switch {
	case delivered:
		m.stats.Delivered++
		m.stats.totalDeliveryNs += elapsed.Nanoseconds()
		m.stats.deliveredSamples++
	case failed:
		m.stats.Failures++
	default:
		m.stats.Dropped++
	}
}

// Stats returns a snapshot of the manager's aggregate statistics.
func (m *Manager[T]) Stats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

// SubscriberStats returns a snapshot of one subscriber's statistics.
func (m *Manager[T]) SubscriberStats(id string) (SubscriberStats, bool) {
	m.mu.RLock()
	rec, exists := m.subscribers[id]
	m.mu.RUnlock()
	if !exists {
		return SubscriberStats{}, false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.stats, true
}

// Shutdown flips the manager into a permanently refusing state: all
// current subscribers are dropped and every subsequent Publish/
// PublishTo/Subscribe call fails with ErrShuttingDown. Shutdown is
// idempotent.
func (m *Manager[T]) Shutdown() {
	if !m.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = make(map[string]*subscriberRecord[T])
	m.order = nil
}
