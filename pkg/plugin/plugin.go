package plugin

import (
	"context"

	"github.com/deeprave/gstats-sub001/pkg/discovery"
	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/queue"
	"github.com/rs/zerolog"
)

// Type classifies what a plugin does, per spec.md §6.
type Type int

const (
	TypeNotification Type = iota
	TypeProcessing
	TypeOutput
	TypeComposite
)

func (t Type) String() string {
	switch t {
	case TypeNotification:
		return "notification"
	case TypeProcessing:
		return "processing"
	case TypeOutput:
		return "output"
	case TypeComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// FunctionInfo describes one function a plugin advertises, per
// spec.md §6.
type FunctionInfo struct {
	Name        string
	Aliases     []string
	Description string
	IsDefault   bool
}

// Info is the identity and capability record a plugin reports via
// Plugin.Info(), per spec.md §6.
type Info struct {
	Name          string
	Version       string
	APIVersion    int
	PluginType    Type
	Priority      int // higher sorts first in GetByType/GetWithCapability; no default is applied, so an unset Priority is 0 (the builtin plugins set 5)
	LoadByDefault bool
	Capabilities  []string
	Dependencies  []discovery.Dependency
}

// Context is handed to Plugin.Initialize, carrying host-provided
// configuration and a component-scoped logger.
type Context struct {
	Config map[string]any
	Logger zerolog.Logger
}

// Request/Response are the generic execute-time payloads a plugin's
// advertised functions operate on. Concrete plugins define their own
// argument/result shapes via the Args/Result maps.
type Request struct {
	Function string
	Args     map[string]any
}

type Response struct {
	Result map[string]any
}

// Consumer is the optional queue-facing half of a plugin, returned by
// Plugin.AsConsumer for plugins that process ScanMessages from the
// queue rather than (or in addition to) reacting to ScanEvents.
type Consumer interface {
	StartConsuming(handle queue.ConsumerHandle) error
	ProcessMessage(handle queue.ConsumerHandle, msg events.ScanMessage) error
	HandleQueueEvent(evt events.QueueEvent) error
	StopConsuming() error
	Preferences() queue.ConsumerPreferences
}

// Plugin is the contract every analyzer, exporter, or notification
// consumer implements, per spec.md §6.
type Plugin interface {
	Info() Info
	Initialize(ctx context.Context, pctx *Context) error
	Execute(ctx context.Context, req Request) (Response, error)
	Cleanup(ctx context.Context) error
	AdvertisedFunctions() []FunctionInfo
	DefaultFunction() string

	// AsConsumer returns the plugin's queue.Consumer half and true if
	// the plugin processes ScanMessages directly, or (nil, false) if it
	// only reacts to ScanEvents via the subscriber adapter.
	AsConsumer() (Consumer, bool)

	// Handles reports whether the plugin is interested in a given
	// ScanDataReady data type, used by the subscriber adapter (§4.4).
	Handles(dataType string) bool

	// IsAggregator reports whether the plugin wants to receive other
	// plugins' DataReady events (true only for export/aggregator
	// plugins), used by the subscriber adapter (§4.4).
	IsAggregator() bool
}
