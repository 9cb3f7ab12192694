package export

import (
	"testing"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/stretchr/testify/assert"
)

func TestCoordinatorCompletesOnceAllExpectedReport(t *testing.T) {
	c := NewCoordinator([]string{"commits", "metrics"})
	assert.False(t, c.IsComplete())
	assert.Equal(t, []string{"commits", "metrics"}, c.PendingPlugins())

	c.AddData("commits", events.NewDataExport("commits", "Commits", events.DataTabular))
	assert.False(t, c.IsComplete())
	assert.Equal(t, []string{"metrics"}, c.PendingPlugins())

	c.AddData("metrics", events.NewDataExport("metrics", "Metrics", events.DataKeyValue))
	assert.True(t, c.IsComplete())
	assert.Empty(t, c.PendingPlugins())
}

func TestCoordinatorAddDataReplacesPriorAndReleasesIt(t *testing.T) {
	c := NewCoordinator([]string{"commits"})
	first := events.NewDataExport("commits", "First", events.DataTabular)
	second := events.NewDataExport("commits", "Second", events.DataTabular)

	c.AddData("commits", first)
	assert.EqualValues(t, 2, first.RefCount())

	c.AddData("commits", second)
	assert.EqualValues(t, 1, first.RefCount())
	assert.EqualValues(t, 2, second.RefCount())

	all := c.GetAllData()
	assert.Len(t, all, 1)
	assert.Equal(t, "Second", all[0].Title)
}

func TestCoordinatorGetAllDataSortedByPluginID(t *testing.T) {
	c := NewCoordinator([]string{"zeta", "alpha"})
	c.AddData("zeta", events.NewDataExport("zeta", "Z", events.DataTabular))
	c.AddData("alpha", events.NewDataExport("alpha", "A", events.DataTabular))

	all := c.GetAllData()
	assert.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].PluginID)
	assert.Equal(t, "zeta", all[1].PluginID)
}

func TestCoordinatorClearReleasesAndResets(t *testing.T) {
	c := NewCoordinator([]string{"commits"})
	exp := events.NewDataExport("commits", "Commits", events.DataTabular)
	c.AddData("commits", exp)
	assert.True(t, c.HasDataFrom("commits"))
	assert.EqualValues(t, 2, exp.RefCount())

	c.Clear()
	assert.False(t, c.HasDataFrom("commits"))
	assert.False(t, c.IsComplete())
	assert.EqualValues(t, 1, exp.RefCount())
}
