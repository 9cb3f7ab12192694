/*
Package log provides structured logging using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("notify")                  │          │
	│  │  - WithScanID("scan-abc123")                │          │
	│  │  - WithPluginID("plugin-commits")           │          │
	│  │  - WithQueueID("queue-xyz")                 │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Usage

Initializing the Logger:

	import "github.com/deeprave/gstats-sub001/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
		Output:     os.Stdout,
	})

Simple Logging:

	log.Info("scan orchestrator starting")
	log.Debug("checking plugin registry state")
	log.Warn("queue approaching soft limit")
	log.Error("failed to initialize plugin")
	log.Fatal("cannot start without configuration") // exits process

Component Loggers:

	registryLog := log.WithComponent("plugin-registry")
	registryLog.Info().Msg("registry ready")
	registryLog.Debug().Str("plugin", "commits").Msg("activating plugin")

Context Logger Helpers:

	scanLog := log.WithScanID("scan-abc123")
	scanLog.Info().Msg("scan started")

	pluginLog := log.WithPluginID("commits")
	pluginLog.Info().Msg("plugin initialized")

	queueLog := log.WithQueueID("queue-xyz")
	queueLog.Warn().Msg("memory pressure elevated")

# Log Output Examples

JSON Format (Production):

	{"level":"info","component":"plugin-registry","time":"2024-10-13T10:30:00Z","message":"registry ready"}
	{"level":"info","component":"scanner","scan_id":"scan-1","time":"2024-10-13T10:30:01Z","message":"scan started"}
	{"level":"error","component":"notify","plugin_id":"commits","error":"timeout","time":"2024-10-13T10:30:02Z","message":"delivery failed"}

Console Format (Development):

	10:30:00 INF registry ready component=plugin-registry
	10:30:01 INF scan started component=scanner scan_id=scan-1
	10:30:02 ERR delivery failed component=notify plugin_id=commits error=timeout

# Integration Points

This package integrates with:

  - pkg/notify: logs subscriber registration, rate limiting, and delivery failures
  - pkg/queue: logs backpressure and memory-pressure transitions
  - pkg/plugin: logs state transitions and activation failures
  - pkg/scanner: logs scan lifecycle and progress
  - pkg/export: logs formatter selection and aggregation completeness

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Component loggers derive from it via With().Str(...)
*/
package log
