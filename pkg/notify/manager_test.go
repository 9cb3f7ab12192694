package notify

import (
	"context"
	"testing"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSubscriber struct {
	id    string
	count int
}

func (c *countingSubscriber) ID() string { return c.id }
func (c *countingSubscriber) Notify(context.Context, events.ScanEvent) error {
	c.count++
	return nil
}

func TestManagerPublishDeliversToAllSubscribers(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	a := &countingSubscriber{id: "a"}
	b := &countingSubscriber{id: "b"}
	require.NoError(t, m.Subscribe(a))
	require.NoError(t, m.Subscribe(b))

	require.NoError(t, m.Publish(context.Background(), events.NewScanStarted("s1")))

	assert.Equal(t, 1, a.count)
	assert.Equal(t, 1, b.count)
	assert.Equal(t, uint64(1), m.Stats().Published)
	assert.Equal(t, uint64(2), m.Stats().Delivered)
}

func TestManagerSubscribeRejectsDuplicateID(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	require.NoError(t, m.Subscribe(&countingSubscriber{id: "a"}))
	err := m.Subscribe(&countingSubscriber{id: "a"})
	assert.ErrorIs(t, err, ErrSubscriberAlreadyExists)
}

func TestManagerUnsubscribeRemovesDeliveryTarget(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	a := &countingSubscriber{id: "a"}
	require.NoError(t, m.Subscribe(a))
	require.NoError(t, m.Unsubscribe("a"))
	assert.False(t, m.HasSubscriber("a"))

	require.NoError(t, m.Publish(context.Background(), events.NewScanStarted("s1")))
	assert.Equal(t, 0, a.count)
}

func TestManagerShutdownRefusesFurtherActivity(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	require.NoError(t, m.Subscribe(&countingSubscriber{id: "a"}))
	m.Shutdown()
	m.Shutdown() // idempotent

	assert.False(t, m.HasSubscriber("a"))
	assert.ErrorIs(t, m.Publish(context.Background(), events.NewScanStarted("s1")), ErrShuttingDown)
	assert.ErrorIs(t, m.Subscribe(&countingSubscriber{id: "b"}), ErrShuttingDown)
}

// TestManagerRateLimitDropsOverflowEvents covers S4's notify scenario:
// a subscriber capped at 2 events/second with overflow=Drop, publishing
// 5 events in a 100ms window, observes events_processed==2 and
// events_dropped==3, while the manager's own global delivered count
// matches the processed count.
func TestManagerRateLimitDropsOverflowEvents(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	sub := &countingSubscriber{id: "limited"}
	require.NoError(t, m.Subscribe(sub, WithRateLimit[events.ScanEvent](RateLimit{
		MaxEventsPerSecond: 2,
		Overflow:           OverflowDrop,
	})))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Publish(ctx, events.NewScanProgress("s1", float64(i)/5, "scanning")))
	}

	stats, ok := m.SubscriberStats("limited")
	require.True(t, ok)
	assert.Equal(t, uint64(2), stats.Processed)
	assert.Equal(t, uint64(3), stats.Dropped)
	assert.Equal(t, 2, sub.count)
	assert.Equal(t, uint64(2), m.Stats().Delivered)
}

func TestManagerRateLimitOverflowErrorRecordsFailure(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	sub := &countingSubscriber{id: "strict"}
	require.NoError(t, m.Subscribe(sub, WithRateLimit[events.ScanEvent](RateLimit{
		MaxEventsPerSecond: 1,
		Overflow:           OverflowError,
	})))

	ctx := context.Background()
	require.NoError(t, m.Publish(ctx, events.NewScanProgress("s1", 0, "scanning")))
	require.NoError(t, m.Publish(ctx, events.NewScanProgress("s1", 0.5, "scanning")))

	stats, ok := m.SubscriberStats("strict")
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.Processed)
	assert.Equal(t, uint64(1), stats.Failures)
}

func TestManagerPublishToSingleSubscriber(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	a := &countingSubscriber{id: "a"}
	b := &countingSubscriber{id: "b"}
	require.NoError(t, m.Subscribe(a))
	require.NoError(t, m.Subscribe(b))

	require.NoError(t, m.PublishTo(context.Background(), "a", events.NewScanStarted("s1")))
	assert.Equal(t, 1, a.count)
	assert.Equal(t, 0, b.count)
}

func TestManagerPublishToUnknownSubscriberErrors(t *testing.T) {
	m := NewManager[events.ScanEvent]()
	err := m.PublishTo(context.Background(), "ghost", events.NewScanStarted("s1"))
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestManagerAtCapacityRejectsSubscribe(t *testing.T) {
	m := NewManager[events.ScanEvent](WithMaxSubscribers[events.ScanEvent](1))
	require.NoError(t, m.Subscribe(&countingSubscriber{id: "a"}))
	err := m.Subscribe(&countingSubscriber{id: "b"})
	assert.ErrorIs(t, err, ErrAtCapacity)
}
