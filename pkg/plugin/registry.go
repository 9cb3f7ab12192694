package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/discovery"
	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/log"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/rs/zerolog"
)

type record struct {
	plugin       Plugin
	info         Info
	state        events.PluginState
	active       bool
	registeredAt int
}

// Registry owns every loaded Plugin instance, its lifecycle state, and
// the capability/type indexes the scan orchestrator queries when
// dispatching work. See the package doc for the state machine and its
// teacher precedent.
type Registry struct {
	apiVersion int
	bus        *notify.Manager[events.PluginEvent]
	logger     zerolog.Logger

	mu      sync.RWMutex
	plugins map[string]*record
	order   []string
	seq     int
}

// NewRegistry constructs a Registry. apiVersion is the host's date-coded
// API version (YYYYMMDD) checked against each plugin's declared
// requirement on activation (pkg/discovery). bus receives every
// PluginEvent the registry publishes; it may be nil in tests.
func NewRegistry(apiVersion int, bus *notify.Manager[events.PluginEvent]) *Registry {
	return &Registry{
		apiVersion: apiVersion,
		bus:        bus,
		logger:     log.WithComponent("plugin-registry"),
		plugins:    make(map[string]*record),
	}
}

// RegisterInactive adds p to the registry in the Loaded state without
// activating it. Returns ErrAlreadyRegistered if a plugin with the same
// name is already present.
func (r *Registry) RegisterInactive(p Plugin) error {
	info := p.Info()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[info.Name]; exists {
		return fmt.Errorf("%s: %w", info.Name, ErrAlreadyRegistered)
	}
	r.seq++
	rec := &record{plugin: p, info: info, state: events.PluginLoaded, registeredAt: r.seq}
	r.plugins[info.Name] = rec
	r.order = append(r.order, info.Name)
	r.logger.Debug().Str("plugin", info.Name).Msg("plugin registered")
	return nil
}

// Register adds p and activates it immediately, validating its API
// version and dependencies against the already-registered set via
// pkg/discovery. A failed compatibility check leaves p registered but
// inactive, matching check_all_plugins' "record the error per plugin,
// keep going" behaviour in the original implementation.
func (r *Registry) Register(p Plugin) error {
	if err := r.RegisterInactive(p); err != nil {
		return err
	}
	return r.Activate(p.Info().Name)
}

// Unregister calls plugin.Cleanup and removes it from the registry.
// Cleanup errors are logged, not returned, so callers can unconditionally
// drop a plugin during shutdown.
func (r *Registry) Unregister(ctx context.Context, name string) error {
	r.mu.Lock()
	rec, exists := r.plugins[name]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	delete(r.plugins, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if err := rec.plugin.Cleanup(ctx); err != nil {
		r.logger.Warn().Err(err).Str("plugin", name).Msg("plugin cleanup failed during unregister")
	}
	return nil
}

// Activate checks name's compatibility against the current candidate
// set and, if it passes, marks it active. A plugin must be active to be
// returned by List, GetByType, or GetWithCapability, or included in
// InitializeAll.
func (r *Registry) Activate(name string) error {
	r.mu.Lock()
	rec, exists := r.plugins[name]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	candidates := r.candidatesLocked()
	r.mu.Unlock()

	desc := infoToDescriptor(rec.info)
	if err := discovery.CheckCompatibility(r.apiVersion, desc, candidates); err != nil {
		r.logger.Warn().Err(err).Str("plugin", name).Msg("plugin failed compatibility check")
		return err
	}

	r.mu.Lock()
	rec.active = true
	r.mu.Unlock()
	r.logger.Info().Str("plugin", name).Msg("plugin activated")
	return nil
}

// Deactivate marks name inactive without unregistering or cleaning it
// up; it can be reactivated later with Activate.
func (r *Registry) Deactivate(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, exists := r.plugins[name]
	if !exists {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	rec.active = false
	return nil
}

// AutoActivateDefaultPlugins activates every registered plugin whose
// Info.LoadByDefault is true, collecting (not stopping on) individual
// failures.
func (r *Registry) AutoActivateDefaultPlugins() map[string]error {
	r.mu.RLock()
	var names []string
	for _, name := range r.order {
		if r.plugins[name].info.LoadByDefault {
			names = append(names, name)
		}
	}
	r.mu.RUnlock()

	errs := make(map[string]error)
	for _, name := range names {
		if err := r.Activate(name); err != nil {
			errs[name] = err
		}
	}
	return errs
}

func (r *Registry) candidatesLocked() []discovery.Descriptor {
	out := make([]discovery.Descriptor, 0, len(r.plugins))
	for _, rec := range r.plugins {
		out = append(out, infoToDescriptor(rec.info))
	}
	return out
}

func infoToDescriptor(info Info) discovery.Descriptor {
	return discovery.Descriptor{
		Name:         info.Name,
		Version:      info.Version,
		APIVersion:   info.APIVersion,
		Dependencies: info.Dependencies,
	}
}

// InitializeAll calls Initialize on every active, not-yet-initialized
// plugin, transitioning it to Initialized on success or Error on
// failure. Returns a map of plugin name to the error it produced, if
// any; a plugin absent from the map initialized successfully.
func (r *Registry) InitializeAll(ctx context.Context, pctx *Context) map[string]error {
	r.mu.RLock()
	var targets []*record
	for _, name := range r.order {
		rec := r.plugins[name]
		if rec.active && rec.state == events.PluginLoaded {
			targets = append(targets, rec)
		}
	}
	r.mu.RUnlock()

	errs := make(map[string]error)
	for _, rec := range targets {
		if err := rec.plugin.Initialize(ctx, pctx); err != nil {
			errs[rec.info.Name] = err
			_ = r.TransitionState(rec.info.Name, events.PluginError)
			continue
		}
		if err := r.TransitionState(rec.info.Name, events.PluginInitialized); err != nil {
			errs[rec.info.Name] = err
		}
	}
	return errs
}

// CleanupAll calls Cleanup on every registered plugin regardless of
// state, collecting failures the same way InitializeAll does.
func (r *Registry) CleanupAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	var targets []*record
	for _, name := range r.order {
		targets = append(targets, r.plugins[name])
	}
	r.mu.RUnlock()

	errs := make(map[string]error)
	for _, rec := range targets {
		if err := rec.plugin.Cleanup(ctx); err != nil {
			errs[rec.info.Name] = err
		}
	}
	return errs
}

// TransitionState is the registry's single state mutator (see the
// package doc). It rejects transitions not present in the state
// graph with ErrInvalidTransition and publishes PluginStateChanged on
// every accepted transition, including self-transitions.
func (r *Registry) TransitionState(name string, newState events.PluginState) error {
	r.mu.Lock()
	rec, exists := r.plugins[name]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	old := rec.state
	if !canTransition(old, newState) {
		r.mu.Unlock()
		return fmt.Errorf("%s: %s -> %s: %w", name, old, newState, ErrInvalidTransition)
	}
	rec.state = newState
	r.mu.Unlock()

	r.publish(events.NewPluginStateChanged(name, old, newState))
	return nil
}

// List returns the names of every active plugin, in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range r.order {
		if r.plugins[name].active {
			out = append(out, name)
		}
	}
	return out
}

// Get returns the plugin registered under name, active or not.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, exists := r.plugins[name]
	if !exists {
		return nil, false
	}
	return rec.plugin, true
}

// State returns the current lifecycle state of name.
func (r *Registry) State(name string) (events.PluginState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, exists := r.plugins[name]
	if !exists {
		return 0, false
	}
	return rec.state, true
}

// GetByType returns the names of active plugins of type t, sorted by
// descending Priority then ascending registration order.
func (r *Registry) GetByType(t Type) []string {
	return r.filterSorted(func(rec *record) bool { return rec.info.PluginType == t })
}

// GetWithCapability returns the names of active plugins advertising
// capability, sorted the same way as GetByType.
func (r *Registry) GetWithCapability(capability string) []string {
	return r.filterSorted(func(rec *record) bool {
		for _, c := range rec.info.Capabilities {
			if c == capability {
				return true
			}
		}
		return false
	})
}

func (r *Registry) filterSorted(match func(*record) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*record
	for _, name := range r.order {
		rec := r.plugins[name]
		if rec.active && match(rec) {
			matches = append(matches, rec)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].info.Priority != matches[j].info.Priority {
			return matches[i].info.Priority > matches[j].info.Priority
		}
		return matches[i].registeredAt < matches[j].registeredAt
	})

	out := make([]string, len(matches))
	for i, rec := range matches {
		out[i] = rec.info.Name
	}
	return out
}

// IsActive reports whether name is registered and active.
func (r *Registry) IsActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, exists := r.plugins[name]
	return exists && rec.active
}

// PluginCount returns the number of registered plugins, active or not.
func (r *Registry) PluginCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// InitializedCount returns the number of plugins in the Initialized
// state.
func (r *Registry) InitializedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, rec := range r.plugins {
		if rec.state == events.PluginInitialized {
			count++
		}
	}
	return count
}

// StateCounts returns the number of registered plugins currently in
// each lifecycle state, keyed by state name. Used by pkg/metrics to
// populate PluginsByState without exposing the registry's internal
// record type.
func (r *Registry) StateCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, rec := range r.plugins {
		counts[rec.state.String()]++
	}
	return counts
}

// ActiveCount returns the number of active plugins.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, rec := range r.plugins {
		if rec.active {
			count++
		}
	}
	return count
}

// AreAllActivePluginsIdle reports whether every active plugin is in an
// idle state (Initialized or Error; see events.PluginState.Idle).
func (r *Registry) AreAllActivePluginsIdle() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		rec := r.plugins[name]
		if rec.active && !rec.state.Idle() {
			return false
		}
	}
	return true
}

// WaitForAllPluginsIdle polls AreAllActivePluginsIdle with a short
// backoff until it is true, ctx is cancelled, or timeout elapses.
// Teacher precedent: reconciler.Reconciler's periodic health-check
// cadence, generalized here to a bounded poll-until-condition wait
// (spec.md §4.6's idle-coordination gate before finalizing a scan).
func (r *Registry) WaitForAllPluginsIdle(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	backoff := 10 * time.Millisecond
	const maxBackoff = 200 * time.Millisecond

	for {
		if r.AreAllActivePluginsIdle() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (r *Registry) publish(evt events.PluginEvent) {
	if r.bus == nil {
		return
	}
	_ = r.bus.Publish(context.Background(), evt)
}
