// Package scanner implements the scan orchestrator: the component that
// drives one end-to-end scan by pulling data out of a set of Sources,
// pushing it through the queue, and publishing the ScanEvent lifecycle
// the rest of the system (processing plugins, the export aggregator,
// logging sinks) reacts to.
//
// The eight-step algorithm mirrors scheduler.Scheduler.run's ticker
// loop and reconciler.Reconciler's periodic health-check cadence: a
// single driving loop that does work, emits progress, and defers to a
// bounded wait before declaring itself done. Where the teacher polls
// cluster state, Orchestrator.Run polls queue drain and plugin
// idleness (registry.WaitForAllPluginsIdle) before finalizing a scan.
package scanner
