/*
Package queue implements the multi-consumer scan message queue: a
single logical FIFO of events.ScanMessage values with independent
per-consumer read cursors, acknowledgment-gated retention, memory
accounting, and backpressure signalling (spec.md §4.3).

# Architecture

	┌─────────────────────────── Queue ─────────────────────────────┐
	│                                                                 │
	│  Enqueue(msg) ──▶ [ seq:1 | seq:2 | seq:3 | ... | seq:N ]      │
	│                          ▲            ▲              ▲         │
	│                          │            │              │         │
	│                     consumer A    consumer B     consumer C    │
	│                     cursor=1      cursor=2        cursor=N      │
	│                                                                 │
	│  An entry is released once every consumer registered at its     │
	│  enqueue time has acknowledged it or been deregistered.         │
	└─────────────────────────────────────────────────────────────────┘

Teacher precedent: the stop-channel + mutex pattern used throughout
github.com/cuemby/warren's pkg/scheduler and pkg/reconciler loops, here
guarding one buffer instead of cluster state, plus a condition variable
so ReadNext can block until new data arrives or the queue is closed.

Per spec.md §5, no method performs a channel send/receive while holding
the queue's mutex beyond what is needed to update the buffer; consumers
block on a sync.Cond, not on a lock held across I/O.
*/
package queue
