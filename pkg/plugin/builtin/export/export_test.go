package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/events"
	exportpkg "github.com/deeprave/gstats-sub001/pkg/export"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/deeprave/gstats-sub001/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tabularExport(pluginID, title string) *events.DataExport {
	exp := events.NewDataExport(pluginID, title, events.DataTabular)
	exp.Schema = events.Schema{Columns: []events.Column{{Name: "name", Type: events.ColumnString}}}
	exp.Payload = events.Payload{Rows: []events.Row{{Values: []any{"x"}}}}
	return exp
}

func TestNotifyDoesNotRenderUntilAllExpectedPluginsReport(t *testing.T) {
	var buf bytes.Buffer
	p := New([]string{"commits", "metrics"}, exportpkg.Config{OutputFormat: exportpkg.FormatConsole}, nil)
	p.out = &buf

	err := p.Notify(context.Background(), events.NewPluginDataReady("commits", "scan-1", tabularExport("commits", "Commits")))
	require.NoError(t, err)

	assert.Empty(t, buf.String())
	assert.False(t, p.coordinator.IsComplete())
}

func TestNotifyRendersAndClearsOnceComplete(t *testing.T) {
	var buf bytes.Buffer
	bus := notify.NewManager[events.PluginEvent]()
	completed := make(chan events.PluginCompleted, 1)
	_ = bus.Subscribe(captureCompleted{ch: completed})

	p := New([]string{"commits", "metrics"}, exportpkg.Config{OutputFormat: exportpkg.FormatConsole}, bus)
	p.out = &buf

	drainCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.DrainCompletions(drainCtx)

	ctx := context.Background()
	require.NoError(t, p.Notify(ctx, events.NewPluginDataReady("commits", "scan-1", tabularExport("commits", "Commits"))))
	require.NoError(t, p.Notify(ctx, events.NewPluginDataReady("metrics", "scan-1", tabularExport("metrics", "Files"))))

	out := buf.String()
	assert.Contains(t, out, "Commits")
	assert.Contains(t, out, "Files")

	select {
	case e := <-completed:
		assert.Equal(t, Name, e.PluginID())
	case <-time.After(time.Second):
		t.Fatal("expected PluginCompleted to be published")
	}

	assert.False(t, p.coordinator.IsComplete())
	assert.Empty(t, p.coordinator.PendingPlugins())
}

// TestNotifyQueuesCompletionWithoutCallingBackIntoNotify covers the
// reentrancy hazard DrainCompletions exists to avoid: maybeRender must
// not publish PluginCompleted synchronously from within Notify, since
// the manager delivering that Notify call still holds this same
// subscriber's per-record lock. Queuing it instead means Notify returns
// promptly even with nothing draining completions yet.
func TestNotifyQueuesCompletionWithoutCallingBackIntoNotify(t *testing.T) {
	var buf bytes.Buffer
	bus := notify.NewManager[events.PluginEvent]()
	p := New([]string{"commits"}, exportpkg.Config{OutputFormat: exportpkg.FormatConsole}, bus)
	p.out = &buf

	done := make(chan error, 1)
	go func() {
		done <- p.Notify(context.Background(), events.NewPluginDataReady("commits", "scan-1", tabularExport("commits", "Commits")))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Notify should return without waiting for anything to drain the completion queue")
	}

	select {
	case completed := <-p.completions:
		assert.Equal(t, Name, completed.PluginID())
	default:
		t.Fatal("expected a PluginCompleted queued for DrainCompletions")
	}
}

func TestExecuteAggregateIsIdempotentWhenAlreadyComplete(t *testing.T) {
	var buf bytes.Buffer
	p := New([]string{"commits"}, exportpkg.Config{OutputFormat: exportpkg.FormatConsole}, nil)
	p.out = &buf

	require.NoError(t, p.Notify(context.Background(), events.NewPluginDataReady("commits", "scan-1", tabularExport("commits", "Commits"))))
	firstLen := buf.Len()
	require.Greater(t, firstLen, 0)

	_, err := p.Execute(context.Background(), plugin.Request{Function: "aggregate"})
	require.NoError(t, err)
	assert.Equal(t, firstLen, buf.Len(), "aggregate should be a no-op once the coordinator has been cleared")
}

func TestMaybeRenderReturnsErrorForUnsupportedFormat(t *testing.T) {
	p := New([]string{"commits"}, exportpkg.Config{OutputFormat: exportpkg.OutputFormat(99)}, nil)
	err := p.Notify(context.Background(), events.NewPluginDataReady("commits", "scan-1", tabularExport("commits", "Commits")))
	assert.Error(t, err)
}

func TestHandlesAndIsAggregator(t *testing.T) {
	p := New(nil, exportpkg.DefaultConfig(), nil)
	assert.True(t, p.IsAggregator())
	assert.False(t, p.Handles("commits"))
	_, ok := p.AsConsumer()
	assert.False(t, ok)
}

type captureCompleted struct {
	ch chan events.PluginCompleted
}

func (c captureCompleted) ID() string { return "capture" }
func (c captureCompleted) Notify(_ context.Context, event events.PluginEvent) error {
	if e, ok := event.(events.PluginCompleted); ok {
		c.ch <- e
	}
	return nil
}
