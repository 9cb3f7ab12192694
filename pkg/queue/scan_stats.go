package queue

import "time"

// RecordScanStarted begins per-scan accounting. Called by the scan
// orchestrator alongside publishing events.ScanStarted (spec.md §4.3,
// "Statistics and scan accounting").
func (q *Queue) RecordScanStarted(scanID string) {
	q.scanMu.Lock()
	defer q.scanMu.Unlock()
	q.scanStats[scanID] = &ScanAccounting{StartedAt: time.Now()}
}

// RecordScanDataReady accumulates count messages against scanID's
// running total. Called alongside publishing events.ScanDataReady.
func (q *Queue) RecordScanDataReady(scanID string, count int) {
	q.scanMu.Lock()
	defer q.scanMu.Unlock()
	acc, exists := q.scanStats[scanID]
	if !exists {
		acc = &ScanAccounting{StartedAt: time.Now()}
		q.scanStats[scanID] = acc
	}
	acc.MessageCount += count
}

// RecordScanCompleted finalizes per-scan accounting. Called alongside
// publishing events.ScanCompleted.
func (q *Queue) RecordScanCompleted(scanID string) {
	q.scanMu.Lock()
	defer q.scanMu.Unlock()
	acc, exists := q.scanStats[scanID]
	if !exists {
		return
	}
	acc.Completed = true
	acc.CompletedAt = time.Now()
	acc.TotalDuration = acc.CompletedAt.Sub(acc.StartedAt)
}

// ScanStats returns a snapshot of the accounting for scanID.
func (q *Queue) ScanStats(scanID string) (ScanAccounting, bool) {
	q.scanMu.Lock()
	defer q.scanMu.Unlock()
	acc, exists := q.scanStats[scanID]
	if !exists {
		return ScanAccounting{}, false
	}
	return *acc, true
}
