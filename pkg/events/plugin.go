package events

import "time"

// PluginState is the lifecycle state of a registered plugin. The zero
// value is Unloaded. Transitions are performed only by the registry
// (pkg/plugin).
type PluginState int

const (
	PluginUnloaded PluginState = iota
	PluginLoaded
	PluginInitialized
	PluginRunning
	PluginProcessing
	PluginError
	PluginShuttingDown
)

func (s PluginState) String() string {
	switch s {
	case PluginUnloaded:
		return "unloaded"
	case PluginLoaded:
		return "loaded"
	case PluginInitialized:
		return "initialized"
	case PluginRunning:
		return "running"
	case PluginProcessing:
		return "processing"
	case PluginError:
		return "error"
	case PluginShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Idle reports whether the state counts as idle for
// registry.AreAllActivePluginsIdle: Initialized or Error.
func (s PluginState) Idle() bool {
	return s == PluginInitialized || s == PluginError
}

// PluginEvent is the closed set of events published about a plugin's
// own lifecycle, as distinct from the ScanEvent family it may also
// subscribe to.
type PluginEvent interface {
	isPluginEvent()
	PluginID() string
}

type pluginIDBase struct {
	ID string
}

func (b pluginIDBase) PluginID() string { return b.ID }

// PluginStarted is published when a plugin transitions into Running.
type PluginStarted struct {
	pluginIDBase
	Timestamp time.Time
}

func (PluginStarted) isPluginEvent() {}

// PluginCompleted is published when a plugin finishes a unit of work.
type PluginCompleted struct {
	pluginIDBase
	ProcessingTime   time.Duration
	ItemsProcessed   int
	ResultsGenerated int
}

func (PluginCompleted) isPluginEvent() {}

// ResultsReady is published when a plugin has results available for
// inspection, independent of the DataExport aggregation protocol.
type ResultsReady struct {
	pluginIDBase
	Timestamp time.Time
}

func (ResultsReady) isPluginEvent() {}

// PluginErrorEvent reports a plugin-level error. Recoverable errors let the
// plugin continue in a degraded mode; non-recoverable ones are surfaced
// by the registry as a transition into the Error state. Named
// PluginErrorEvent because PluginError is already the PluginState value.
type PluginErrorEvent struct {
	pluginIDBase
	Text        string
	Recoverable bool
}

func (PluginErrorEvent) isPluginEvent() {}

// PluginStateChanged is published by the registry on every state
// transition (see plugin.Registry.TransitionState).
type PluginStateChanged struct {
	pluginIDBase
	Old PluginState
	New PluginState
}

func (PluginStateChanged) isPluginEvent() {}

// PluginDataReady carries a plugin's completed DataExport to the export
// plugin's Data Coordinator. Named PluginDataReady (rather than
// DataReady, which the ScanEvent family already uses) to avoid a type
// collision between the two families in call sites that import both.
type PluginDataReady struct {
	pluginIDBase
	ScanID string
	Export *DataExport
}

func (PluginDataReady) isPluginEvent() {}

// Constructors below stamp the plugin ID onto each variant so producers
// outside this package (pkg/plugin) never need to name the unexported
// pluginIDBase type directly.

func NewPluginStarted(pluginID string) PluginStarted {
	e := PluginStarted{Timestamp: time.Now()}
	e.ID = pluginID
	return e
}

func NewPluginCompleted(pluginID string, processingTime time.Duration, itemsProcessed, resultsGenerated int) PluginCompleted {
	e := PluginCompleted{ProcessingTime: processingTime, ItemsProcessed: itemsProcessed, ResultsGenerated: resultsGenerated}
	e.ID = pluginID
	return e
}

func NewResultsReady(pluginID string) ResultsReady {
	e := ResultsReady{Timestamp: time.Now()}
	e.ID = pluginID
	return e
}

func NewPluginError(pluginID, text string, recoverable bool) PluginErrorEvent {
	e := PluginErrorEvent{Text: text, Recoverable: recoverable}
	e.ID = pluginID
	return e
}

func NewPluginStateChanged(pluginID string, old, new_ PluginState) PluginStateChanged {
	e := PluginStateChanged{Old: old, New: new_}
	e.ID = pluginID
	return e
}

func NewPluginDataReady(pluginID, scanID string, export *DataExport) PluginDataReady {
	e := PluginDataReady{ScanID: scanID, Export: export}
	e.ID = pluginID
	return e
}
