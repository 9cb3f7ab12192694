/*
Package metrics provides Prometheus metrics collection and exposition for
the notification bus, queue, plugin registry, scan orchestrator, and
export pipeline.

Metrics are defined and registered at package init, and exposed over
HTTP for scraping via Handler(). A Collector periodically samples
internally-tracked stats (notify.Manager.Stats, queue size/memory,
registry state counts) into the package's gauges; event-driven counters
(scans completed, plugin errors, queue backpressure) are incremented
directly by the packages that observe those events.

# Metrics Catalog

Notification bus (one set of label values per event family: scan,
queue, plugin):

gstats_events_published_total{family}: cumulative Manager.Stats().Published
gstats_events_delivered_total{family}: cumulative Manager.Stats().Delivered
gstats_events_dropped_total{family}:   cumulative Manager.Stats().Dropped
gstats_events_failed_total{family}:    cumulative Manager.Stats().Failures
gstats_subscribers_total{family}:      current subscriber count

These four event counters are Gauges, not Counters: the underlying
Manager already tracks them as running totals, so the Collector Sets
the gauge to the current total on each sample rather than incrementing
a separate counter (which would double-count every poll).

Queue:

gstats_queue_messages_total:     current retained entry count
gstats_queue_memory_bytes:       current estimated retained memory
gstats_queue_backpressure_total: Enqueue calls rejected by the hard limit

Plugin registry:

gstats_plugins_active:        current active plugin count
gstats_plugins_by_state{state}: current plugin count per lifecycle state
gstats_plugin_errors_total{plugin}: cumulative PluginErrorEvent events, incremented
  by a PluginEventSubscriber subscribed to the plugin-event bus

Scan orchestrator:

gstats_scans_total{outcome}: scans completed, by outcome (ok/warnings/aborted)
gstats_scan_duration_seconds: scan wall-clock duration
gstats_scan_messages_produced{data_type}: messages produced per scan, by data type

Export:

gstats_export_duration_seconds{format}: time to format and write an export

# Usage

	import "github.com/deeprave/gstats-sub001/pkg/metrics"

	collector := metrics.NewCollector(scanBus, queueBus, pluginBus, q, registry)
	collector.Start(15 * time.Second)
	defer collector.Stop()

	http.Handle("/metrics", metrics.Handler())

# Design Patterns

Package init registration: every metric is registered via
prometheus.MustRegister in init(), so it is visible on /metrics before
any collection occurs.

Subscriber-based wiring: because pkg/metrics itself depends on
pkg/notify, pkg/queue, and pkg/plugin for Collector's constructor
parameters, those packages cannot depend back on pkg/metrics without an
import cycle. Counters driven by specific events (plugin errors, scan
outcomes, queue backpressure) are instead incremented either by a small
notify.Subscriber living in pkg/metrics itself (PluginEventSubscriber)
or by the calling package that already imports pkg/metrics for other
reasons (pkg/scanner, which has no reverse dependency from pkg/metrics).
*/
package metrics
