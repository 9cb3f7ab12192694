package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Notification bus metrics (pkg/notify). These mirror
	// notify.Manager.Stats, which already tracks cumulative counts
	// internally, so the collector Sets these gauges to the manager's
	// current totals each sample rather than incrementing a separate
	// Prometheus counter (which would double-count on every poll).
	EventsPublishedTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gstats_events_published_total",
			Help: "Cumulative number of events published by event family",
		},
		[]string{"family"},
	)

	EventsDeliveredTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gstats_events_delivered_total",
			Help: "Cumulative number of successful event deliveries by event family",
		},
		[]string{"family"},
	)

	EventsDroppedTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gstats_events_dropped_total",
			Help: "Cumulative number of events dropped (filtered or rate limited) by event family",
		},
		[]string{"family"},
	)

	EventsFailedTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gstats_events_failed_total",
			Help: "Cumulative number of failed event deliveries by event family",
		},
		[]string{"family"},
	)

	SubscribersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gstats_subscribers_total",
			Help: "Current number of subscribers by event family",
		},
		[]string{"family"},
	)

	// Queue metrics (pkg/queue)
	QueueMessagesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gstats_queue_messages_total",
			Help: "Current number of messages retained in the queue",
		},
	)

	QueueMemoryBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gstats_queue_memory_bytes",
			Help: "Current estimated memory footprint of retained queue messages",
		},
	)

	QueueBackpressureTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gstats_queue_backpressure_total",
			Help: "Total number of Enqueue calls rejected by backpressure",
		},
	)

	// Plugin registry metrics (pkg/plugin)
	PluginsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gstats_plugins_active",
			Help: "Current number of active plugins",
		},
	)

	PluginsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gstats_plugins_by_state",
			Help: "Current number of plugins in each lifecycle state",
		},
		[]string{"state"},
	)

	PluginErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gstats_plugin_errors_total",
			Help: "Total number of PluginError events by plugin",
		},
		[]string{"plugin"},
	)

	// Scan orchestrator metrics (pkg/scanner)
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gstats_scans_total",
			Help: "Total number of scans completed, by outcome",
		},
		[]string{"outcome"},
	)

	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gstats_scan_duration_seconds",
			Help:    "Scan duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScanMessagesProduced = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gstats_scan_messages_produced",
			Help:    "Number of messages produced per scan by data type",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"data_type"},
	)

	// Export metrics (pkg/export)
	ExportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gstats_export_duration_seconds",
			Help:    "Time taken to format and write an export, by output format",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(EventsDeliveredTotal)
	prometheus.MustRegister(EventsDroppedTotal)
	prometheus.MustRegister(EventsFailedTotal)
	prometheus.MustRegister(SubscribersTotal)

	prometheus.MustRegister(QueueMessagesTotal)
	prometheus.MustRegister(QueueMemoryBytes)
	prometheus.MustRegister(QueueBackpressureTotal)

	prometheus.MustRegister(PluginsActive)
	prometheus.MustRegister(PluginsByState)
	prometheus.MustRegister(PluginErrorsTotal)

	prometheus.MustRegister(ScansTotal)
	prometheus.MustRegister(ScanDuration)
	prometheus.MustRegister(ScanMessagesProduced)

	prometheus.MustRegister(ExportDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
