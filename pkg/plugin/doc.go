/*
Package plugin implements the plugin registry (spec.md §4.2): ownership
of plugin instances, their lifecycle state machine, activation tracking,
capability/type indexes, and the idle-coordination primitives the scan
orchestrator waits on before finalizing a scan. It also implements the
plugin subscriber adapter (spec.md §4.4) that lets a Plugin react to
ScanEvents without the registry or notify.Manager knowing anything about
plugin internals.

# State machine

	Unloaded → Loaded → Initialized ⇄ Running → Initialized
	                         │            │
	                         ▼            ▼
	                    ShuttingDown   Processing (idle-blocking work state)
	                         │
	                      (terminal)

Error(text) is a sink reachable from any state and counts as idle for
coordination purposes (spec.md §3). TransitionState is the only allowed
mutator; every transition publishes events.PluginStateChanged on the
registry's own notify.Manager[events.PluginEvent].

Teacher precedent: github.com/cuemby/warren's manager.WarrenFSM.Apply
enforces "one entry point mutates state, every mutation is an explicit,
named operation" for cluster state; TransitionState applies the same
discipline to plugin state, and the registry's single sync.RWMutex over
its plugin table mirrors the coarse per-subsystem locking used
throughout that codebase's scheduler and reconciler packages.
*/
package plugin
