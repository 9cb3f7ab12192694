// Package export implements the Data Coordinator (spec.md §4.5) that
// collects each processing plugin's events.DataExport for a scan and,
// once every expected plugin has reported, hands the complete set to
// a Formatter for rendering.
//
// Grounded on original_source/src/plugin/builtin/export/mod.rs's
// ExportPlugin.handle_data_ready_event / DataCoordinator: add data as
// it arrives, check completeness against the expected-plugin set, then
// format and clear for the next scan. This package owns only the
// collect/complete/format pipeline; the events.PluginEvent subscription
// that drives it lives in the builtin export plugin (pkg/plugin/builtin)
// which adapts Coordinator to the scan lifecycle.
package export
