package main

import (
	"context"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/events"
)

// synthRepo is a small, fixed dataset standing in for a real checkout,
// used by the demo scan so cmd/gstats is exercisable without a git
// binary or a cloned repository on disk.
var synthRepo = []struct {
	hash      string
	author    string
	message   string
	additions int
	deletions int
}{
	{"a1b2c3d", "alice", "initial commit", 120, 0},
	{"b2c3d4e", "bob", "add queue backpressure", 64, 12},
	{"c3d4e5f", "alice", "fix plugin adapter dispatch", 18, 4},
	{"d4e5f6a", "carol", "wire metrics collector", 95, 6},
	{"e5f6a7b", "alice", "export formatter: console output", 70, 2},
	{"f6a7b8c", "bob", "tests for consumer pump", 140, 3},
}

var synthFiles = []struct {
	path     string
	size     int64
	language string
}{
	{"pkg/queue/queue.go", 7800, "go"},
	{"pkg/notify/manager.go", 6200, "go"},
	{"pkg/plugin/adapter.go", 4100, "go"},
	{"pkg/scanner/orchestrator.go", 5300, "go"},
	{"pkg/export/format/json.go", 1800, "go"},
	{"README.md", 3200, "markdown"},
	{"Makefile", 900, "makefile"},
	{"docs/architecture.md", 11400, "markdown"},
}

// commitSource produces one CommitInfo per entry in synthRepo.
type commitSource struct{}

func (commitSource) DataType() string { return "commits" }

func (commitSource) Produce(ctx context.Context) ([]events.MessagePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payloads := make([]events.MessagePayload, 0, len(synthRepo))
	now := time.Now()
	for i, c := range synthRepo {
		payloads = append(payloads, events.CommitInfo{
			Hash:      c.hash,
			Author:    c.author,
			Message:   c.message,
			Timestamp: now.Add(-time.Duration(len(synthRepo)-i) * time.Hour),
			Additions: c.additions,
			Deletions: c.deletions,
		})
	}
	return payloads, nil
}

// fileSource produces one FileInfo per entry in synthFiles.
type fileSource struct{}

func (fileSource) DataType() string { return "files" }

func (fileSource) Produce(ctx context.Context) ([]events.MessagePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payloads := make([]events.MessagePayload, 0, len(synthFiles))
	for _, f := range synthFiles {
		payloads = append(payloads, events.FileInfo{
			Path:      f.path,
			SizeBytes: f.size,
			Language:  f.language,
		})
	}
	return payloads, nil
}
