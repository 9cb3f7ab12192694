// Package export implements the aggregator plugin that collects every
// processing plugin's DataExport for a scan and renders them as one
// combined report, grounded on original_source's ExportPlugin and its
// DataCoordinator (ported separately as pkg/export.Coordinator).
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/deeprave/gstats-sub001/pkg/events"
	exportpkg "github.com/deeprave/gstats-sub001/pkg/export"
	"github.com/deeprave/gstats-sub001/pkg/export/format"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/deeprave/gstats-sub001/pkg/plugin"
	"github.com/rs/zerolog"
)

const Name = "export"

// Plugin collects events.PluginDataReady payloads published by other
// processing plugins and, once every expected plugin has reported in
// for a scan, formats and writes the combined result.
//
// Unlike commits and metrics, Plugin's real trigger is its own
// subscription to the plugin event bus (Notify), not the Adapter's
// Execute dispatch: the grounding source's ExportPlugin reacts to
// PluginEvent::DataReady directly, independent of whatever the scan
// orchestrator forwards. Execute's "aggregate" case re-runs the same
// check so the spec.md §4.4 "DataReady (from another plugin), forward
// if aggregator" path is still honored and harmless to call twice.
type Plugin struct {
	info   plugin.Info
	bus    *notify.Manager[events.PluginEvent]
	cfg    exportpkg.Config
	logger zerolog.Logger
	out    io.Writer // overridden in tests; nil resolves from cfg.OutputFile or stdout

	mu          sync.Mutex
	coordinator *exportpkg.Coordinator
	scanID      string

	// completions queues PluginCompleted events for DrainCompletions to
	// publish off the goroutine that delivered the triggering Notify
	// call. Publishing bus-wide back onto p.bus from inside Notify would
	// reenter the manager's per-subscriber lock for this same Plugin
	// (notify/subscriber.go's documented reentrancy hazard) and stall
	// until the delivery timeout fires.
	completions chan events.PluginCompleted
}

// New constructs the export plugin, expecting one DataExport from each
// name in expectedPlugins before it will render anything.
func New(expectedPlugins []string, cfg exportpkg.Config, bus *notify.Manager[events.PluginEvent]) *Plugin {
	return &Plugin{
		info: plugin.Info{
			Name:          Name,
			Version:       "1.0.0",
			PluginType:    plugin.TypeOutput,
			Priority:      100,
			LoadByDefault: true,
			Capabilities:  []string{"export_aggregation"},
		},
		bus:         bus,
		cfg:         cfg,
		coordinator: exportpkg.NewCoordinator(expectedPlugins),
		completions: make(chan events.PluginCompleted, 1),
	}
}

func (p *Plugin) Info() plugin.Info { return p.info }

func (p *Plugin) Initialize(_ context.Context, pctx *plugin.Context) error {
	if pctx != nil {
		p.logger = pctx.Logger
	}
	return nil
}

func (p *Plugin) Cleanup(context.Context) error { return nil }

func (p *Plugin) AdvertisedFunctions() []plugin.FunctionInfo {
	return []plugin.FunctionInfo{
		{Name: "aggregate", Description: "Render the combined export once every expected plugin has reported", IsDefault: true},
	}
}

func (p *Plugin) DefaultFunction() string { return "aggregate" }

func (p *Plugin) AsConsumer() (plugin.Consumer, bool) { return nil, false }

func (p *Plugin) Handles(string) bool { return false }

func (p *Plugin) IsAggregator() bool { return true }

// ID satisfies notify.Subscriber[events.PluginEvent]. The caller
// subscribes Plugin directly to the plugin event bus alongside
// wrapping it in an Adapter for the scan bus.
func (p *Plugin) ID() string { return p.info.Name }

// Notify satisfies notify.Subscriber[events.PluginEvent], collecting
// PluginDataReady payloads as they arrive and rendering once complete.
func (p *Plugin) Notify(_ context.Context, event events.PluginEvent) error {
	dataReady, ok := event.(events.PluginDataReady)
	if !ok {
		return nil
	}
	p.mu.Lock()
	p.scanID = dataReady.ScanID
	p.mu.Unlock()
	p.coordinator.AddData(dataReady.PluginID(), dataReady.Export)
	return p.maybeRender()
}

func (p *Plugin) Execute(_ context.Context, req plugin.Request) (plugin.Response, error) {
	switch req.Function {
	case "aggregate", "process_data", "handle_error", "finalize":
		if err := p.maybeRender(); err != nil {
			return plugin.Response{}, err
		}
		return plugin.Response{}, nil
	default:
		return plugin.Response{}, fmt.Errorf("export: unknown function %q", req.Function)
	}
}

// maybeRender formats and writes the combined export once the
// coordinator has heard from every expected plugin, then clears it so
// the next scan starts fresh. Safe to call when incomplete or already
// cleared; it is then a no-op.
func (p *Plugin) maybeRender() error {
	p.mu.Lock()
	if !p.coordinator.IsComplete() {
		p.mu.Unlock()
		return nil
	}
	data := p.coordinator.GetAllData()
	p.mu.Unlock()

	formatter, err := format.Select(p.cfg.OutputFormat)
	if err != nil {
		p.logger.Error().Err(err).Msg("export: unsupported output format")
		return err
	}
	rendered, err := formatter.Format(data, p.cfg)
	if err != nil {
		p.logger.Error().Err(err).Msg("export: format failed")
		return err
	}

	w, closer, err := p.writer()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	if _, err := io.WriteString(w, rendered); err != nil {
		return fmt.Errorf("export: writing output: %w", err)
	}

	if p.bus != nil {
		completed := events.NewPluginCompleted(p.info.Name, 0, len(data), len(data))
		select {
		case p.completions <- completed:
		default:
			p.logger.Warn().Msg("export: completion queue full, dropping PluginCompleted")
		}
	}

	p.mu.Lock()
	p.coordinator.Clear()
	p.mu.Unlock()
	return nil
}

// DrainCompletions publishes queued PluginCompleted events onto the
// plugin event bus, one at a time, until ctx is cancelled. Run it in
// its own goroutine once, alongside Adapter.DrainDeregistrations, so
// maybeRender never calls back into the bus from inside Notify.
func (p *Plugin) DrainCompletions(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case completed := <-p.completions:
			_ = p.bus.Publish(context.Background(), completed)
		}
	}
}

func (p *Plugin) writer() (io.Writer, io.Closer, error) {
	if p.out != nil {
		return p.out, nil, nil
	}
	if p.cfg.OutputFile == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(p.cfg.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("export: opening output file: %w", err)
	}
	return f, f, nil
}
