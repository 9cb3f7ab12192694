package plugin

import (
	"context"
	"testing"

	"github.com/deeprave/gstats-sub001/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	info         Info
	initErr      error
	cleanupCalls int
	functions    []FunctionInfo
}

func (f *fakePlugin) Info() Info { return f.info }
func (f *fakePlugin) Initialize(ctx context.Context, pctx *Context) error { return f.initErr }
func (f *fakePlugin) Execute(ctx context.Context, req Request) (Response, error) {
	return Response{}, nil
}
func (f *fakePlugin) Cleanup(ctx context.Context) error {
	f.cleanupCalls++
	return nil
}
func (f *fakePlugin) AdvertisedFunctions() []FunctionInfo { return f.functions }
func (f *fakePlugin) DefaultFunction() string {
	for _, fn := range f.functions {
		if fn.IsDefault {
			return fn.Name
		}
	}
	return ""
}
func (f *fakePlugin) AsConsumer() (Consumer, bool)         { return nil, false }
func (f *fakePlugin) Handles(dataType string) bool         { return true }
func (f *fakePlugin) IsAggregator() bool                   { return false }

func newFakePlugin(name string, opts ...func(*Info)) *fakePlugin {
	info := Info{Name: name, Version: "1.0.0", APIVersion: 20250727, Priority: 5}
	for _, opt := range opts {
		opt(&info)
	}
	return &fakePlugin{info: info}
}

func TestRegistryRegisterAndActivate(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits")

	require.NoError(t, r.Register(p))
	assert.True(t, r.IsActive("commits"))
	assert.Equal(t, 1, r.PluginCount())
	assert.Equal(t, []string{"commits"}, r.List())
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits")
	require.NoError(t, r.RegisterInactive(p))
	err := r.RegisterInactive(p)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistryActivateFailsOnIncompatibleAPIVersion(t *testing.T) {
	r := NewRegistry(20240101, nil)
	p := newFakePlugin("commits")
	require.NoError(t, r.RegisterInactive(p))

	err := r.Activate("commits")
	assert.ErrorIs(t, err, discovery.ErrVersionIncompatible)
	assert.False(t, r.IsActive("commits"))
}

func TestRegistryActivateFailsOnMissingDependency(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("consumer", func(i *Info) {
		i.Dependencies = []discovery.Dependency{{Name: "producer", Requirement: "1.0.0"}}
	})
	require.NoError(t, r.RegisterInactive(p))

	err := r.Activate("consumer")
	assert.ErrorIs(t, err, discovery.ErrDependencyMissing)
}

func TestRegistryGetByTypeSortsByPriorityThenRegistrationOrder(t *testing.T) {
	r := NewRegistry(20250101, nil)
	low := newFakePlugin("low", func(i *Info) { i.PluginType = TypeProcessing; i.Priority = 1 })
	high := newFakePlugin("high", func(i *Info) { i.PluginType = TypeProcessing; i.Priority = 10 })
	mid := newFakePlugin("mid", func(i *Info) { i.PluginType = TypeProcessing; i.Priority = 5 })

	require.NoError(t, r.Register(low))
	require.NoError(t, r.Register(high))
	require.NoError(t, r.Register(mid))

	assert.Equal(t, []string{"high", "mid", "low"}, r.GetByType(TypeProcessing))
}

func TestRegistryGetWithCapability(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits", func(i *Info) { i.Capabilities = []string{"vcs"} })
	require.NoError(t, r.Register(p))

	assert.Equal(t, []string{"commits"}, r.GetWithCapability("vcs"))
	assert.Empty(t, r.GetWithCapability("other"))
}

func TestRegistryInitializeAllTransitionsState(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits")
	require.NoError(t, r.Register(p))

	errs := r.InitializeAll(context.Background(), &Context{})
	assert.Empty(t, errs)

	state, ok := r.State("commits")
	require.True(t, ok)
	assert.True(t, state.Idle())
}

func TestRegistryInitializeAllRecordsFailure(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("broken")
	p.initErr = assert.AnError
	require.NoError(t, r.Register(p))

	errs := r.InitializeAll(context.Background(), &Context{})
	assert.Contains(t, errs, "broken")

	state, _ := r.State("broken")
	assert.True(t, state.Idle()) // Error state also counts as idle
}

func TestRegistryUnregisterCallsCleanup(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits")
	require.NoError(t, r.Register(p))

	require.NoError(t, r.Unregister(context.Background(), "commits"))
	assert.Equal(t, 1, p.cleanupCalls)
	assert.False(t, r.IsActive("commits"))
	_, found := r.Get("commits")
	assert.False(t, found)
}

func TestRegistryAreAllActivePluginsIdle(t *testing.T) {
	r := NewRegistry(20250101, nil)
	p := newFakePlugin("commits")
	require.NoError(t, r.Register(p))

	assert.False(t, r.AreAllActivePluginsIdle(), "Loaded is not an idle state")

	r.InitializeAll(context.Background(), &Context{})
	assert.True(t, r.AreAllActivePluginsIdle())
}
