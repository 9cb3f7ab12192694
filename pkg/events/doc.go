/*
Package events defines the event taxonomy shared by every producer and
consumer in the gstats coordination fabric: the typed event families
published on a notify.Manager, the immutable message envelope carried
by the scan queue, and the DataExport shape that flows from processing
plugins into the export plugin.

# Event families

Four tagged unions, each a closed Go interface satisfied only by the
unexported-method marker structs declared in this package:

  - ScanEvent   — scan lifecycle: started, progress, warnings, data
    readiness, errors, completion, and a processing plugin's DataReady
    signal.
  - QueueEvent  — queue lifecycle: message added/processed, empty/full,
    memory pressure, consumer registration.
  - PluginEvent — plugin lifecycle: started, completed, results ready,
    errors, state transitions, and DataReady carrying a DataExport.
  - SystemEvent — host-level events: startup, shutdown, configuration
    change, resource warnings.

Each family is consumed through a notify.Manager[T] instantiated for
that family's interface type; dispatch is a type switch, not string
matching, so adding a variant is a compile-time-checked change at every
call site.

# ScanMessage and DataExport

ScanMessage is the unit of work flowing through the multi-consumer
queue (queue package): an immutable header (sequence, timestamp) plus a
closed payload interface. DataExport is the immutable, schema-bearing
snapshot a processing plugin hands to the export plugin; once
published it is never mutated, so it may be held by multiple
subscribers without copying.
*/
package events
