package metrics

import (
	"context"

	"github.com/deeprave/gstats-sub001/pkg/events"
)

// PluginEventSubscriber implements notify.Subscriber[events.PluginEvent],
// incrementing PluginErrorsTotal on every PluginErrorEvent it observes. It
// lives in pkg/metrics rather than pkg/plugin so that pkg/plugin never
// needs to import pkg/metrics (pkg/metrics already depends on
// pkg/plugin for Collector's registry stats; the reverse import would
// cycle).
type PluginEventSubscriber struct {
	id string
}

// NewPluginEventSubscriber constructs a subscriber identified by id for
// registration on a plugin-event bus.
func NewPluginEventSubscriber(id string) *PluginEventSubscriber {
	return &PluginEventSubscriber{id: id}
}

func (s *PluginEventSubscriber) ID() string { return s.id }

func (s *PluginEventSubscriber) Notify(_ context.Context, event events.PluginEvent) error {
	if e, ok := event.(events.PluginErrorEvent); ok {
		PluginErrorsTotal.WithLabelValues(e.PluginID()).Inc()
	}
	return nil
}
