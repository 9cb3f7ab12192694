/*
Package notify provides a generic, typed publish/subscribe bus:
Manager[T] distributes values of one event family T (see pkg/events) to
a set of registered Subscriber[T]s.

# Architecture

Manager[T] generalizes the teacher's single untyped event broker
(github.com/cuemby/warren's pkg/events.Broker, a non-blocking
channel-fanout broadcaster) into one bus per event family, with the
per-subscriber controls spec.md §4.1 requires layered on top:

	┌──────────────────── Manager[T] ───────────────────────────┐
	│                                                             │
	│  Publish(event) ──┬─▶ subscriber 1: filter → rate limit →  │
	│                    │                deliver (timeout-bound) │
	│                    ├─▶ subscriber 2: ...                    │
	│                    └─▶ subscriber N: ...                    │
	│                                                             │
	│  One subscriber's filtered/rate-limited/failed/timed-out    │
	│  delivery never aborts delivery to the rest; every outcome  │
	│  is recorded in that subscriber's Stats and the Manager's   │
	│  aggregate Stats.                                           │
	└─────────────────────────────────────────────────────────────┘

# Ordering and concurrency

Deliveries to a single subscriber happen in publish order (the Manager
serializes per-subscriber dispatch via that subscriber's own mutex);
across subscribers there is no ordering guarantee beyond each observing
a prefix of the publish sequence, matching spec.md §5.

# Rate limiting

Each subscriber may declare a RateLimit of max events per rolling
1-second window. The window is tracked as a deque of accept timestamps
per subscriber rather than a token bucket, because spec.md §8 property 6
and scenario S4 require an exact rolling-window accept/drop count
(golang.org/x/time/rate's token bucket does not reproduce this —
see DESIGN.md).
*/
package notify
