package events

import "time"

// ScanEvent is the closed set of events published over the lifetime of a
// single scan. Only types declared in this package implement it.
type ScanEvent interface {
	isScanEvent()
	ScanID() string
}

type scanIDBase struct {
	ID string
}

func (b scanIDBase) ScanID() string { return b.ID }

// ScanStarted marks the beginning of a scan.
type ScanStarted struct {
	scanIDBase
	Timestamp time.Time
}

func (ScanStarted) isScanEvent() {}

// ScanProgress reports fractional completion of a scan phase.
type ScanProgress struct {
	scanIDBase
	Fraction float64 // 0..1
	Phase    string
}

func (ScanProgress) isScanEvent() {}

// ScanWarning reports a non-fatal defect encountered during scanning.
type ScanWarning struct {
	scanIDBase
	Text        string
	Recoverable bool
}

func (ScanWarning) isScanEvent() {}

// ScanDataReady announces that a batch of one data type has been fully
// enqueued for processing plugins to consume.
type ScanDataReady struct {
	scanIDBase
	DataType     string
	MessageCount int
}

func (ScanDataReady) isScanEvent() {}

// ScanError reports a scan-level error. Fatal errors trigger plugin
// self-deregistration via the subscriber adapter (see plugin package).
type ScanError struct {
	scanIDBase
	Text  string
	Fatal bool
}

func (ScanError) isScanEvent() {}

// ScanCompleted marks the end of a scan.
type ScanCompleted struct {
	scanIDBase
	Duration time.Duration
	Warnings []string
}

func (ScanCompleted) isScanEvent() {}

// DataReady is published by a processing plugin once it has a complete
// DataExport ready for aggregation. It rides the ScanEvent bus so that
// any aggregator (the export plugin) can subscribe to it alongside the
// scanner's own lifecycle events, matching spec.md's §3 data model
// (DataReady appears in both the ScanEvent and PluginEvent families;
// the PluginEvent variant additionally carries the export payload).
type DataReady struct {
	scanIDBase
	PluginID string
	DataType string
}

func (DataReady) isScanEvent() {}

// Constructors below stamp the scan ID onto each variant so producers
// outside this package (pkg/scanner) never need to name the unexported
// scanIDBase type directly.

// NewScanStarted constructs a ScanStarted event with the current time.
func NewScanStarted(scanID string) ScanStarted {
	e := ScanStarted{Timestamp: time.Now()}
	e.ID = scanID
	return e
}

func NewScanProgress(scanID string, fraction float64, phase string) ScanProgress {
	e := ScanProgress{Fraction: fraction, Phase: phase}
	e.ID = scanID
	return e
}

func NewScanWarning(scanID, text string, recoverable bool) ScanWarning {
	e := ScanWarning{Text: text, Recoverable: recoverable}
	e.ID = scanID
	return e
}

func NewScanDataReady(scanID, dataType string, messageCount int) ScanDataReady {
	e := ScanDataReady{DataType: dataType, MessageCount: messageCount}
	e.ID = scanID
	return e
}

func NewScanError(scanID, text string, fatal bool) ScanError {
	e := ScanError{Text: text, Fatal: fatal}
	e.ID = scanID
	return e
}

func NewScanCompleted(scanID string, duration time.Duration, warnings []string) ScanCompleted {
	e := ScanCompleted{Duration: duration, Warnings: warnings}
	e.ID = scanID
	return e
}

func NewDataReady(scanID, pluginID, dataType string) DataReady {
	e := DataReady{PluginID: pluginID, DataType: dataType}
	e.ID = scanID
	return e
}
