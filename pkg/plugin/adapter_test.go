package plugin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *notify.Manager[events.PluginEvent] {
	t.Helper()
	return notify.NewManager[events.PluginEvent]()
}

type captureSubscriber struct {
	id string
	ch chan events.PluginStateChanged
}

func (c *captureSubscriber) ID() string { return c.id }
func (c *captureSubscriber) Notify(ctx context.Context, event events.PluginEvent) error {
	if changed, ok := event.(events.PluginStateChanged); ok {
		c.ch <- changed
	}
	return nil
}

func TestAdapterSkipsDataItDoesNotHandle(t *testing.T) {
	selective := &selectivePlugin{fakePlugin: *newFakePlugin("metrics"), handles: map[string]bool{"commit": true}}
	r := NewRegistry(20250101, nil)
	require.NoError(t, r.Register(selective))
	_ = r.InitializeAll(context.Background(), &Context{})

	adapter := NewAdapter(selective, r, nil)
	err := adapter.Notify(context.Background(), events.NewScanDataReady("scan-1", "file_change", 3))
	assert.NoError(t, err)
	assert.Equal(t, 0, selective.executeCalls)

	err = adapter.Notify(context.Background(), events.NewScanDataReady("scan-1", "commit", 3))
	assert.NoError(t, err)
	assert.Equal(t, 1, selective.executeCalls)
}

func TestAdapterFatalErrorQueuesDeregistration(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits")
	require.NoError(t, r.Register(p))
	_ = r.InitializeAll(context.Background(), &Context{})

	adapter := NewAdapter(p, r, nil)
	err := adapter.Notify(context.Background(), events.NewScanError("scan-1", "disk full", true))
	assert.NoError(t, err)

	state, _ := r.State("commits")
	assert.Equal(t, events.PluginError, state)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	adapter.DrainDeregistrations(ctx)

	_, found := r.Get("commits")
	assert.False(t, found)
	assert.Equal(t, 1, p.cleanupCalls)
}

// TestAdapterExecuteMarksPluginNotIdleUntilReturn covers the Processing
// state actually being reachable: while a plugin's Execute is in
// flight, AreAllActivePluginsIdle must report false, and Initialized
// (idle) again once it returns.
func TestAdapterExecuteMarksPluginNotIdleUntilReturn(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := &blockingPlugin{fakePlugin: *newFakePlugin("commits"), entered: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, r.Register(p))
	_ = r.InitializeAll(context.Background(), &Context{})
	require.True(t, r.AreAllActivePluginsIdle())

	adapter := NewAdapter(p, r, nil)
	done := make(chan error, 1)
	go func() {
		done <- adapter.Notify(context.Background(), events.NewScanDataReady("scan-1", "commit", 1))
	}()

	<-p.entered
	state, _ := r.State("commits")
	assert.Equal(t, events.PluginProcessing, state)
	assert.False(t, r.AreAllActivePluginsIdle())

	close(p.release)
	require.NoError(t, <-done)

	state, _ = r.State("commits")
	assert.Equal(t, events.PluginInitialized, state)
	assert.True(t, r.AreAllActivePluginsIdle())
}

type selectivePlugin struct {
	fakePlugin
	handles      map[string]bool
	executeCalls int
}

func (s *selectivePlugin) Handles(dataType string) bool { return s.handles[dataType] }
func (s *selectivePlugin) Execute(ctx context.Context, req Request) (Response, error) {
	s.executeCalls++
	return Response{}, nil
}

type blockingPlugin struct {
	fakePlugin
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingPlugin) Handles(string) bool { return true }
func (b *blockingPlugin) Execute(ctx context.Context, req Request) (Response, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return Response{}, nil
}
