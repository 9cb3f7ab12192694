// Package commits implements a processing plugin that tallies commits
// by author, grounded on original_source's CommitsPlugin.
package commits

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/deeprave/gstats-sub001/pkg/plugin"
	"github.com/deeprave/gstats-sub001/pkg/queue"
	"github.com/rs/zerolog"
)

const Name = "commits"

// Plugin tallies commit counts by author from CommitInfo messages,
// publishing a tabular DataExport when the scan that produced them
// completes.
type Plugin struct {
	info   plugin.Info
	bus    *notify.Manager[events.PluginEvent]
	logger zerolog.Logger

	mu          sync.Mutex
	commitCount int
	authorStats map[string]int
}

// New constructs the commits plugin. bus may be nil, in which case
// finalize builds but does not publish its DataExport (useful in
// tests that only want the accumulated counts).
func New(bus *notify.Manager[events.PluginEvent]) *Plugin {
	return &Plugin{
		info: plugin.Info{
			Name:          Name,
			Version:       "1.0.0",
			PluginType:    plugin.TypeProcessing,
			Priority:      5,
			LoadByDefault: true,
			Capabilities:  []string{"commit_analysis", "author_tracking"},
		},
		bus:         bus,
		authorStats: make(map[string]int),
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
		{Name: "commit_analysis", Description: "Aggregate commit counts", IsDefault: true},
		{Name: "author_analysis", Description: "Rank authors by commit count"},
	}
}

func (p *Plugin) DefaultFunction() string { return "commit_analysis" }

func (p *Plugin) AsConsumer() (plugin.Consumer, bool) { return p, true }

func (p *Plugin) Handles(dataType string) bool { return dataType == "commits" }

func (p *Plugin) IsAggregator() bool { return false }

// Execute handles the functions the Adapter dispatches (process_data,
// handle_error, finalize) plus the plugin's own advertised analysis
// functions. Actual message consumption happens via the Consumer half,
// driven by a plugin.ConsumerPump, not through process_data's args.
func (p *Plugin) Execute(_ context.Context, req plugin.Request) (plugin.Response, error) {
	switch req.Function {
	case "process_data":
		return plugin.Response{}, nil
	case "handle_error":
		return plugin.Response{}, nil
	case "finalize":
		return p.finalize(req)
	case "commit_analysis":
		return p.commitAnalysis(), nil
	case "author_analysis":
		return p.authorAnalysis(), nil
	default:
		return plugin.Response{}, fmt.Errorf("commits: unknown function %q", req.Function)
	}
}

func (p *Plugin) commitAnalysis() plugin.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	avg := 0.0
	if len(p.authorStats) > 0 {
		avg = float64(p.commitCount) / float64(len(p.authorStats))
	}
	return plugin.Response{Result: map[string]any{
		"total_commits":          p.commitCount,
		"unique_authors":         len(p.authorStats),
		"avg_commits_per_author": avg,
	}}
}

type authorCount struct {
	name  string
	count int
}

func (p *Plugin) authorAnalysis() plugin.Response {
	p.mu.Lock()
	ranked := rankAuthors(p.authorStats)
	p.mu.Unlock()

	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	entries := make([]map[string]any, 0, len(top))
	for _, a := range top {
		entries = append(entries, map[string]any{"name": a.name, "commits": a.count})
	}
	return plugin.Response{Result: map[string]any{
		"total_authors": len(ranked),
		"top_authors":   entries,
	}}
}

func rankAuthors(stats map[string]int) []authorCount {
	ranked := make([]authorCount, 0, len(stats))
	for name, count := range stats {
		ranked = append(ranked, authorCount{name: name, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}

// finalize builds the commit summary DataExport and publishes it as
// PluginDataReady, the Adapter's forwarded ScanCompleted hook.
func (p *Plugin) finalize(req plugin.Request) (plugin.Response, error) {
	scanID, _ := req.Args["scan_id"].(string)

	p.mu.Lock()
	ranked := rankAuthors(p.authorStats)
	commitCount := p.commitCount
	p.mu.Unlock()

	export := events.NewDataExport(p.info.Name, "Commits by Author", events.DataTabular)
	export.Description = "Commit counts grouped by author"
	export.Schema = events.Schema{Columns: []events.Column{
		{Name: "author", Type: events.ColumnString},
		{Name: "commits", Type: events.ColumnInteger},
	}}
	rows := make([]events.Row, 0, len(ranked))
	for _, a := range ranked {
		rows = append(rows, events.Row{Values: []any{a.name, a.count}})
	}
	export.Payload = events.Payload{Rows: rows}

	if p.bus != nil {
		_ = p.bus.Publish(context.Background(), events.NewPluginDataReady(p.info.Name, scanID, export))
	}

	return plugin.Response{Result: map[string]any{"commit_count": commitCount}}, nil
}

// Consumer half: accumulates CommitInfo payloads read off the queue.

func (p *Plugin) StartConsuming(queue.ConsumerHandle) error { return nil }

func (p *Plugin) ProcessMessage(_ queue.ConsumerHandle, msg events.ScanMessage) error {
	commit, ok := msg.Payload.(events.CommitInfo)
	if !ok {
		return nil
	}
	p.mu.Lock()
	p.commitCount++
	p.authorStats[commit.Author]++
	p.mu.Unlock()
	return nil
}

func (p *Plugin) HandleQueueEvent(events.QueueEvent) error { return nil }

func (p *Plugin) StopConsuming() error { return nil }

func (p *Plugin) Preferences() queue.ConsumerPreferences {
	return queue.ConsumerPreferences{BufferSize: 64}
}
