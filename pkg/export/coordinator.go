package export

import (
	"sort"
	"sync"

	"github.com/deeprave/gstats-sub001/pkg/events"
)

// Coordinator collects one events.DataExport per expected plugin for a
// scan and reports completeness once every expected plugin has
// reported in. It is not scan-scoped itself: callers Clear it between
// scans (see ExportPlugin.handle_data_ready_event's "clear for next
// round" in the grounding source).
type Coordinator struct {
	mu       sync.Mutex
	expected map[string]bool
	data     map[string]*events.DataExport
}

// NewCoordinator constructs a Coordinator expecting data from exactly
// the plugins named in expectedPlugins.
func NewCoordinator(expectedPlugins []string) *Coordinator {
	expected := make(map[string]bool, len(expectedPlugins))
	for _, name := range expectedPlugins {
		expected[name] = true
	}
	return &Coordinator{
		expected: expected,
		data:     make(map[string]*events.DataExport),
	}
}

// AddData records export as pluginID's contribution, retaining a
// reference for the duration the Coordinator holds it. Replaces any
// prior export from the same plugin (releasing its reference) rather
// than accumulating duplicates.
func (c *Coordinator) AddData(pluginID string, export *events.DataExport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, exists := c.data[pluginID]; exists {
		prior.Release()
	}
	c.data[pluginID] = export.Retain()
}

// HasDataFrom reports whether pluginID has already reported.
func (c *Coordinator) HasDataFrom(pluginID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.data[pluginID]
	return exists
}

// IsComplete reports whether every expected plugin has reported.
func (c *Coordinator) IsComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.expected {
		if _, exists := c.data[name]; !exists {
			return false
		}
	}
	return true
}

// PendingPlugins returns the names of expected plugins that have not
// yet reported, sorted for deterministic logging.
func (c *Coordinator) PendingPlugins() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var pending []string
	for name := range c.expected {
		if _, exists := c.data[name]; !exists {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending
}

// GetAllData returns every collected export, sorted by plugin ID for
// deterministic formatter output.
func (c *Coordinator) GetAllData() []*events.DataExport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*events.DataExport, 0, len(c.data))
	for _, export := range c.data {
		out = append(out, export)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PluginID < out[j].PluginID })
	return out
}

// Clear releases every held export and resets the collected set,
// leaving the expected-plugin set unchanged, ready for the next scan.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, export := range c.data {
		export.Release()
	}
	c.data = make(map[string]*events.DataExport)
}
