package events

import "time"

// SystemEvent is the closed set of host-level events unrelated to any
// single scan or plugin.
type SystemEvent interface {
	isSystemEvent()
}

// SystemStartup is published once when the host process finishes
// wiring the coordination fabric.
type SystemStartup struct {
	Timestamp time.Time
}

func (SystemStartup) isSystemEvent() {}

// SystemShutdown is published when the host process begins shutting
// down. Graceful is false if shutdown was forced (e.g. a timeout
// expired while waiting for plugins to idle).
type SystemShutdown struct {
	Graceful  bool
	Timestamp time.Time
}

func (SystemShutdown) isSystemEvent() {}

// ConfigurationChanged is published after the host reloads its
// configuration (pkg/config).
type ConfigurationChanged struct {
	Timestamp time.Time
}

func (ConfigurationChanged) isSystemEvent() {}

// ResourceWarning reports a host-level resource concern (e.g. the
// queue's memory pressure escalating to Critical).
type ResourceWarning struct {
	Text      string
	Timestamp time.Time
}

func (ResourceWarning) isSystemEvent() {}
