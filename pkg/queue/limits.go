package queue

import "github.com/deeprave/gstats-sub001/pkg/events"

// Limits configures the queue's soft and hard capacity and the
// percentage bands used to classify memory pressure.
type Limits struct {
	MaxMessages    int
	MaxMemoryBytes int64

	// HardMultiplier sets the hard limit, beyond which Enqueue returns
	// ErrBackpressure, as a multiple of the soft limit. Defaults to 2.0.
	HardMultiplier float64

	// ModerateBand, HighBand, and CriticalBand are the fractions of the
	// soft memory limit at which the pressure level escalates.
	// Default to 0.5, 0.75, and 0.9.
	ModerateBand float64
	HighBand     float64
	CriticalBand float64
}

// DefaultLimits returns sensible defaults for local-first, single-host
// operation.
func DefaultLimits() Limits {
	return Limits{
		MaxMessages:    10_000,
		MaxMemoryBytes: 64 * 1024 * 1024,
		HardMultiplier: 2.0,
		ModerateBand:   0.5,
		HighBand:       0.75,
		CriticalBand:   0.9,
	}
}

func (l Limits) normalized() Limits {
	if l.HardMultiplier <= 1.0 {
		l.HardMultiplier = 2.0
	}
	if l.ModerateBand <= 0 {
		l.ModerateBand = 0.5
	}
	if l.HighBand <= 0 {
		l.HighBand = 0.75
	}
	if l.CriticalBand <= 0 {
		l.CriticalBand = 0.9
	}
	return l
}

func (l Limits) hardMessages() int {
	return int(float64(l.MaxMessages) * l.HardMultiplier)
}

func (l Limits) hardMemoryBytes() int64 {
	return int64(float64(l.MaxMemoryBytes) * l.HardMultiplier)
}

func (l Limits) pressureLevel(count int, bytes int64) events.MemoryPressureLevel {
	ratio := 0.0
	if l.MaxMemoryBytes > 0 {
		ratio = float64(bytes) / float64(l.MaxMemoryBytes)
	}
	if l.MaxMessages > 0 {
		if r := float64(count) / float64(l.MaxMessages); r > ratio {
			ratio = r
		}
	}
	switch {
	case ratio >= l.CriticalBand:
		return events.MemoryCritical
	case ratio >= l.HighBand:
		return events.MemoryHigh
	case ratio >= l.ModerateBand:
		return events.MemoryModerate
	default:
		return events.MemoryNormal
	}
}
