// Package metrics implements a processing plugin that aggregates
// per-file size and language statistics, grounded on original_source's
// MetricsPlugin (adapted: ScanMessage's FileInfo payload carries size
// and detected language rather than raw file content, so the
// comment/complexity line-scanning original_source does has no
// equivalent here — there is no content to scan).
package metrics

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

const Name = "metrics"

type languageTotals struct {
	fileCount int
	sizeBytes int64
}

// Plugin aggregates FileInfo messages by language, publishing a
// tabular DataExport when the scan that produced them completes.
type Plugin struct {
	info   plugin.Info
	bus    *notify.Manager[events.PluginEvent]
	logger zerolog.Logger

	mu         sync.Mutex
	totalFiles int
	totalBytes int64
	byLanguage map[string]*languageTotals
}

// New constructs the metrics plugin. bus may be nil, matching
// commits.New's test-friendly behavior.
func New(bus *notify.Manager[events.PluginEvent]) *Plugin {
	return &Plugin{
		info: plugin.Info{
			Name:          Name,
			Version:       "1.0.0",
			PluginType:    plugin.TypeProcessing,
			Priority:      5,
			LoadByDefault: true,
			Capabilities:  []string{"file_statistics"},
		},
		bus:        bus,
		byLanguage: make(map[string]*languageTotals),
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
		{Name: "file_statistics", Description: "Aggregate file counts and sizes by language", IsDefault: true},
	}
}

func (p *Plugin) DefaultFunction() string { return "file_statistics" }

func (p *Plugin) AsConsumer() (plugin.Consumer, bool) { return p, true }

func (p *Plugin) Handles(dataType string) bool { return dataType == "files" }

func (p *Plugin) IsAggregator() bool { return false }

func (p *Plugin) Execute(_ context.Context, req plugin.Request) (plugin.Response, error) {
	switch req.Function {
	case "process_data":
		return plugin.Response{}, nil
	case "handle_error":
		return plugin.Response{}, nil
	case "finalize":
		return p.finalize(req)
	case "file_statistics":
		return p.fileStatistics(), nil
	default:
		return plugin.Response{}, fmt.Errorf("metrics: unknown function %q", req.Function)
	}
}

func (p *Plugin) fileStatistics() plugin.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	return plugin.Response{Result: map[string]any{
		"total_files":    p.totalFiles,
		"total_bytes":    p.totalBytes,
		"language_count": len(p.byLanguage),
	}}
}

type languageRow struct {
	language  string
	fileCount int
	sizeBytes int64
}

func (p *Plugin) rankedLanguages() []languageRow {
	rows := make([]languageRow, 0, len(p.byLanguage))
	for lang, totals := range p.byLanguage {
		rows = append(rows, languageRow{language: lang, fileCount: totals.fileCount, sizeBytes: totals.sizeBytes})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].sizeBytes != rows[j].sizeBytes {
			return rows[i].sizeBytes > rows[j].sizeBytes
		}
		return rows[i].language < rows[j].language
	})
	return rows
}

func (p *Plugin) finalize(req plugin.Request) (plugin.Response, error) {
	scanID, _ := req.Args["scan_id"].(string)

	p.mu.Lock()
	rows := p.rankedLanguages()
	totalFiles := p.totalFiles
	p.mu.Unlock()

	export := events.NewDataExport(p.info.Name, "Files by Language", events.DataTabular)
	export.Description = "File count and total size grouped by detected language"
	export.Schema = events.Schema{Columns: []events.Column{
		{Name: "language", Type: events.ColumnString},
		{Name: "files", Type: events.ColumnInteger},
		{Name: "bytes", Type: events.ColumnInteger},
	}}
	exportRows := make([]events.Row, 0, len(rows))
	for _, r := range rows {
		exportRows = append(exportRows, events.Row{Values: []any{r.language, r.fileCount, r.sizeBytes}})
	}
	export.Payload = events.Payload{Rows: exportRows}

	if p.bus != nil {
		_ = p.bus.Publish(context.Background(), events.NewPluginDataReady(p.info.Name, scanID, export))
	}

	return plugin.Response{Result: map[string]any{"total_files": totalFiles}}, nil
}

// Consumer half: accumulates FileInfo payloads read off the queue.

func (p *Plugin) StartConsuming(queue.ConsumerHandle) error { return nil }

func (p *Plugin) ProcessMessage(_ queue.ConsumerHandle, msg events.ScanMessage) error {
	file, ok := msg.Payload.(events.FileInfo)
	if !ok {
		return nil
	}
	lang := file.Language
	if lang == "" {
		lang = "unknown"
	}
	p.mu.Lock()
	p.totalFiles++
	p.totalBytes += file.SizeBytes
	totals, exists := p.byLanguage[lang]
	if !exists {
		totals = &languageTotals{}
		p.byLanguage[lang] = totals
	}
	totals.fileCount++
	totals.sizeBytes += file.SizeBytes
	p.mu.Unlock()
	return nil
}

func (p *Plugin) HandleQueueEvent(events.QueueEvent) error { return nil }

func (p *Plugin) StopConsuming() error { return nil }

func (p *Plugin) Preferences() queue.ConsumerPreferences {
	return queue.ConsumerPreferences{BufferSize: 64}
}
