package plugin

import (
	"context"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/log"
	"github.com/deeprave/gstats-sub001/pkg/queue"
	"github.com/rs/zerolog"
)

// ConsumerPump drives a Consumer plugin's ReadNext/ProcessMessage/
// Acknowledge loop against a Queue, and doubles as a
// notify.Subscriber[events.QueueEvent] so a caller can additionally
// route QueueEvents to Consumer.HandleQueueEvent. One Pump wraps
// exactly one Consumer, mirroring Adapter's one-wrapper-per-Plugin
// shape for the scan-event side.
type ConsumerPump struct {
	pluginID string
	queue    *queue.Queue
	consumer Consumer
	logger   zerolog.Logger
}

// NewConsumerPump constructs a Pump for consumer, identified by
// pluginID in logs.
func NewConsumerPump(q *queue.Queue, pluginID string, consumer Consumer) *ConsumerPump {
	return &ConsumerPump{
		pluginID: pluginID,
		queue:    q,
		consumer: consumer,
		logger:   log.WithPluginID(pluginID),
	}
}

// ID satisfies notify.Subscriber so a Pump can be registered directly
// on a queue-event bus.
func (p *ConsumerPump) ID() string { return p.pluginID }

// Notify satisfies notify.Subscriber[events.QueueEvent], forwarding
// every event to the wrapped Consumer.
func (p *ConsumerPump) Notify(_ context.Context, event events.QueueEvent) error {
	return p.consumer.HandleQueueEvent(event)
}

// Run registers a consumer cursor, calls StartConsuming, then loops
// ReadNext -> ProcessMessage -> Acknowledge until the queue closes or
// ctx is cancelled. It always calls StopConsuming and
// DeregisterConsumer before returning. A ProcessMessage error is logged
// and does not stop the loop — one bad message should not starve every
// message behind it, matching the queue's at-least-once delivery model
// (spec.md §4.3).
func (p *ConsumerPump) Run(ctx context.Context) error {
	handle, err := p.queue.RegisterConsumer(p.consumer.Preferences())
	if err != nil {
		return err
	}
	defer func() { _ = p.queue.DeregisterConsumer(handle.ID) }()

	if err := p.consumer.StartConsuming(handle); err != nil {
		return err
	}
	defer func() {
		if err := p.consumer.StopConsuming(); err != nil {
			p.logger.Warn().Err(err).Msg("stop consuming failed")
		}
	}()

	for {
		msg, ok, err := p.queue.ReadNext(ctx, handle.ID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := p.consumer.ProcessMessage(handle, msg); err != nil {
			p.logger.Warn().Err(err).Uint64("sequence", msg.Header.Sequence).Msg("process message failed")
		}
		p.queue.Acknowledge(handle.ID, msg.Header.Sequence)
	}
}
