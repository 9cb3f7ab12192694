package plugin

import "github.com/deeprave/gstats-sub001/pkg/events"

// allowedTransitions enumerates the legal state graph described in the
// package doc. TransitionState rejects any pair not listed here, except
// that every state may transition to itself and any state may
// transition to PluginError.
var allowedTransitions = map[events.PluginState]map[events.PluginState]bool{
	events.PluginUnloaded: {
		events.PluginLoaded: true,
	},
	events.PluginLoaded: {
		events.PluginInitialized: true,
	},
	events.PluginInitialized: {
		events.PluginRunning:      true,
		events.PluginShuttingDown: true,
	},
	events.PluginRunning: {
		events.PluginProcessing:  true,
		events.PluginInitialized: true,
	},
	events.PluginProcessing: {
		events.PluginRunning:      true,
		events.PluginInitialized: true,
	},
	events.PluginShuttingDown: {
		events.PluginUnloaded: true,
	},
	events.PluginError: {
		events.PluginShuttingDown: true,
		events.PluginInitialized:  true,
	},
}

func canTransition(from, to events.PluginState) bool {
	if from == to {
		return true
	}
	if to == events.PluginError {
		return true
	}
	if next, ok := allowedTransitions[from]; ok {
		return next[to]
	}
	return false
}
