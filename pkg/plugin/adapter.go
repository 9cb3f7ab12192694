package plugin

import (
	"context"
	"sync"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/log"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/rs/zerolog"
)

// Adapter implements notify.Subscriber[events.ScanEvent], letting a
// Plugin react to the scan lifecycle without the registry or
// notify.Manager knowing anything about plugin internals (spec.md
// §4.4). One Adapter wraps exactly one Plugin; cmd/gstats creates one
// per plugin and subscribes it to the scan bus.
//
// Dispatch table (spec.md §4.4): ScanStarted/ScanProgress are
// informational only. ScanWarning is logged but not forwarded.
// ScanDataReady/DataReady are routed to the plugin only if Handles (or,
// for DataReady, IsAggregator) returns true. A non-fatal ScanError is
// forwarded to the plugin so it may degrade; a fatal one transitions
// the plugin to Error and queues a self-deregistration request rather
// than calling back into the Manager from inside Notify — see the
// package doc and notify.Subscriber's documented reentrancy hazard.
// ScanCompleted is forwarded as a finalize hook, the seam a processing
// plugin uses to build and publish its DataExport.
type Adapter struct {
	plugin   Plugin
	registry *Registry
	bus      *notify.Manager[events.ScanEvent]
	logger   zerolog.Logger

	deregisterOnce sync.Once
	deregisterCh   chan string
}

// NewAdapter constructs an Adapter for p, registered against registry
// and wired onto bus. The caller is still responsible for calling
// bus.Subscribe with the returned Adapter.
func NewAdapter(p Plugin, registry *Registry, bus *notify.Manager[events.ScanEvent]) *Adapter {
	return &Adapter{
		plugin:       p,
		registry:     registry,
		bus:          bus,
		logger:       log.WithPluginID(p.Info().Name),
		deregisterCh: make(chan string, 1),
	}
}

// ID satisfies notify.Subscriber.
func (a *Adapter) ID() string { return a.plugin.Info().Name }

// Notify satisfies notify.Subscriber. An event the plugin does not
// handle returns nil; a dispatched event returns the error, if any,
// from the plugin's Execute.
func (a *Adapter) Notify(ctx context.Context, event events.ScanEvent) error {
	switch e := event.(type) {
	case events.ScanDataReady:
		if !a.plugin.Handles(e.DataType) {
			return nil
		}
		return a.execute(ctx, "process_data", map[string]any{
			"scan_id":       e.ScanID(),
			"data_type":     e.DataType,
			"message_count": e.MessageCount,
		})

	case events.DataReady:
		if !a.plugin.IsAggregator() {
			return nil
		}
		return a.execute(ctx, "aggregate", map[string]any{
			"scan_id":   e.ScanID(),
			"plugin_id": e.PluginID,
			"data_type": e.DataType,
		})

	case events.ScanError:
		if e.Fatal {
			a.handleFatal(e)
			return nil
		}
		return a.execute(ctx, "handle_error", map[string]any{
			"scan_id": e.ScanID(),
			"text":    e.Text,
		})

	case events.ScanCompleted:
		return a.execute(ctx, "finalize", map[string]any{
			"scan_id":  e.ScanID(),
			"duration": e.Duration,
			"warnings": e.Warnings,
		})

	case events.ScanWarning:
		a.logger.Warn().Str("text", e.Text).Bool("recoverable", e.Recoverable).Msg("scan warning")
		return nil

	case events.ScanStarted, events.ScanProgress:
		// Informational only; no default function to dispatch to.
		return nil

	default:
		return nil
	}
}

// execute drives the plugin's lifecycle state through the graph in
// state.go on the way to and from Execute: Initialized -> Running ->
// Processing while the call is in flight, then back down to
// Initialized, so AreAllActivePluginsIdle correctly reports a plugin
// mid-Execute as not idle.
func (a *Adapter) execute(ctx context.Context, function string, args map[string]any) error {
	if err := a.registry.TransitionState(a.ID(), events.PluginRunning); err != nil {
		a.logger.Warn().Err(err).Msg("plugin state transition to running failed")
	}
	if err := a.registry.TransitionState(a.ID(), events.PluginProcessing); err != nil {
		a.logger.Warn().Err(err).Msg("plugin state transition to processing failed")
	}
	defer func() {
		if err := a.registry.TransitionState(a.ID(), events.PluginRunning); err != nil {
			a.logger.Warn().Err(err).Msg("plugin state transition back to running failed")
		}
		if err := a.registry.TransitionState(a.ID(), events.PluginInitialized); err != nil {
			a.logger.Warn().Err(err).Msg("plugin state transition back to initialized failed")
		}
	}()

	_, err := a.plugin.Execute(ctx, Request{Function: function, Args: args})
	if err != nil {
		a.logger.Warn().Err(err).Str("function", function).Msg("plugin execute failed")
	}
	return err
}

// handleFatal transitions the plugin to Error and queues a
// self-deregistration request, processed by DrainDeregistrations rather
// than inline, so Notify never calls back into the Manager that is
// currently dispatching to it.
func (a *Adapter) handleFatal(e events.ScanError) {
	_ = a.registry.TransitionState(a.ID(), events.PluginError)
	a.logger.Error().Str("reason", e.Text).Msg("fatal scan error, queuing self-deregistration")
	select {
	case a.deregisterCh <- a.ID():
	default:
	}
}

// DrainDeregistrations waits for this adapter's self-deregistration
// request, unsubscribes and unregisters the plugin, and returns; it
// also returns if ctx is cancelled first. Run it in its own goroutine
// once per Adapter;
// it is the only place Unsubscribe/Unregister are called on this
// adapter's behalf.
func (a *Adapter) DrainDeregistrations(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-a.deregisterCh:
			if a.bus != nil {
				_ = a.bus.Unsubscribe(id)
			}
			if err := a.registry.Unregister(ctx, id); err != nil {
				a.logger.Warn().Err(err).Msg("self-deregistration failed")
			}
			return
		}
	}
}
