package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/log"
	"github.com/deeprave/gstats-sub001/pkg/metrics"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/deeprave/gstats-sub001/pkg/plugin"
	"github.com/deeprave/gstats-sub001/pkg/queue"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds the orchestrator's tunables.
type Config struct {
	// ProgressInterval bounds how often ScanProgress is published,
	// regardless of how many sources run within that window. Zero
	// disables throttling (every source completion publishes progress).
	ProgressInterval time.Duration
	// IdleTimeout bounds how long the orchestrator waits, after all
	// production is enqueued, for the queue to drain and every active
	// plugin to report idle before finalizing the scan.
	IdleTimeout time.Duration
	// DrainPollInterval is the polling cadence used while waiting for
	// the queue to drain.
	DrainPollInterval time.Duration
}

func (c Config) normalized() Config {
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = 200 * time.Millisecond
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.DrainPollInterval <= 0 {
		c.DrainPollInterval = 20 * time.Millisecond
	}
	return c
}

// Orchestrator drives one scan at a time per instance: generate a scan
// ID, enqueue every Source's production, publish lifecycle events, then
// wait for the queue to drain and plugins to go idle before declaring
// the scan complete. Grounded on scheduler.Scheduler.run's
// single-driving-loop shape, generalized from a fixed ticker to a
// one-shot production pass plus a bounded idle wait.
type Orchestrator struct {
	queue    *queue.Queue
	bus      *notify.Manager[events.ScanEvent]
	registry *plugin.Registry
	logger   zerolog.Logger
	cfg      Config
}

// NewOrchestrator constructs an Orchestrator over the given queue,
// scan-event bus, and plugin registry.
func NewOrchestrator(q *queue.Queue, bus *notify.Manager[events.ScanEvent], registry *plugin.Registry, cfg Config) *Orchestrator {
	return &Orchestrator{
		queue:    q,
		bus:      bus,
		registry: registry,
		logger:   log.WithComponent("scanner"),
		cfg:      cfg.normalized(),
	}
}

// Run executes the eight-step scan algorithm over sources, returning
// the generated scan ID. A fatal Source error aborts the scan
// immediately after publishing ScanError{fatal:true}; the returned
// error in that case is the fatal cause. WaitForAllPluginsIdle timing
// out is not itself a Run error: per step 8, the orchestrator publishes
// a non-fatal ScanError and still finalizes the scan.
func (o *Orchestrator) Run(ctx context.Context, sources []Source) (string, error) {
	scanID := newScanID()
	logger := log.WithScanID(scanID)
	start := time.Now()

	o.queue.RecordScanStarted(scanID)
	o.publish(ctx, events.NewScanStarted(scanID))
	logger.Info().Int("sources", len(sources)).Msg("scan started")

	limiter := rate.NewLimiter(rate.Every(o.cfg.ProgressInterval), 1)
	var warnings []string

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			o.publish(ctx, events.NewScanError(scanID, "scan cancelled", true))
			metrics.ScansTotal.WithLabelValues("aborted").Inc()
			return scanID, err
		}

		payloads, err := src.Produce(ctx)
		if err != nil {
			var fatal *FatalError
			if errors.As(err, &fatal) {
				o.publish(ctx, events.NewScanError(scanID, err.Error(), true))
				logger.Error().Err(err).Str("data_type", src.DataType()).Msg("fatal source error, aborting scan")
				metrics.ScansTotal.WithLabelValues("aborted").Inc()
				return scanID, err
			}
			warnings = append(warnings, err.Error())
			o.publish(ctx, events.NewScanWarning(scanID, err.Error(), true))
			logger.Warn().Err(err).Str("data_type", src.DataType()).Msg("recoverable source error")
		}

		for _, payload := range payloads {
			if _, err := o.queue.Enqueue(payload); err != nil {
				if errors.Is(err, queue.ErrBackpressure) {
					metrics.QueueBackpressureTotal.Inc()
				}
				o.publish(ctx, events.NewScanError(scanID, err.Error(), true))
				metrics.ScansTotal.WithLabelValues("aborted").Inc()
				return scanID, fmt.Errorf("enqueue %s: %w", src.DataType(), err)
			}
		}
		if len(payloads) > 0 {
			o.queue.RecordScanDataReady(scanID, len(payloads))
			o.publish(ctx, events.NewScanDataReady(scanID, src.DataType(), len(payloads)))
			metrics.ScanMessagesProduced.WithLabelValues(src.DataType()).Observe(float64(len(payloads)))
		}

		if limiter.Allow() || i == len(sources)-1 {
			fraction := float64(i+1) / float64(len(sources))
			o.publish(ctx, events.NewScanProgress(scanID, fraction, src.DataType()))
		}
	}

	if err := o.waitQueueDrained(ctx); err != nil {
		o.publish(ctx, events.NewScanError(scanID, "shutdown timeout: "+err.Error(), false))
		warnings = append(warnings, err.Error())
	} else if err := o.registry.WaitForAllPluginsIdle(ctx, o.cfg.IdleTimeout); err != nil {
		o.publish(ctx, events.NewScanError(scanID, "shutdown timeout: "+err.Error(), false))
		warnings = append(warnings, err.Error())
	}

	o.queue.RecordScanCompleted(scanID)
	duration := time.Since(start)
	o.publish(ctx, events.NewScanCompleted(scanID, duration, warnings))
	logger.Info().Dur("duration", duration).Int("warnings", len(warnings)).Msg("scan completed")

	outcome := "ok"
	if len(warnings) > 0 {
		outcome = "warnings"
	}
	metrics.ScansTotal.WithLabelValues(outcome).Inc()
	metrics.ScanDuration.Observe(duration.Seconds())

	return scanID, nil
}

// waitQueueDrained polls the queue's retained entry count down to zero,
// bounded by cfg.IdleTimeout, at the fixed cfg.DrainPollInterval rather
// than registry.WaitForAllPluginsIdle's doubling backoff (the queue side of step 6's
// conjunction, kept as a plain poll rather than a condition variable
// since the orchestrator has no standing subscription to queue size).
func (o *Orchestrator) waitQueueDrained(ctx context.Context) error {
	deadline := time.Now().Add(o.cfg.IdleTimeout)
	for {
		if o.queue.Size() == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrDrainTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.cfg.DrainPollInterval):
		}
	}
}

func (o *Orchestrator) publish(ctx context.Context, evt events.ScanEvent) {
	if o.bus == nil {
		return
	}
	_ = o.bus.Publish(ctx, evt)
}

// newScanID generates a time-ordered unique scan identifier, grounded
// on scheduler's use of uuid.New for entity IDs but prefixed with a
// nanosecond timestamp so scan IDs sort chronologically by construction
// (spec.md §4.6 step 1: "time-ordered unique string").
func newScanID() string {
	return fmt.Sprintf("scan-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}
