package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAllSorted(t *testing.T) {
	c := New()
	all := c.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}
}

func TestCatalogByName(t *testing.T) {
	c := New()
	col, ok := c.ByName("rrc00")
	require.True(t, ok)
	assert.Equal(t, ProjectRIPERIS, col.Project)

	_, ok = c.ByName("not-a-real-collector")
	assert.False(t, ok)
}

func TestCatalogByProject(t *testing.T) {
	c := New()
	riperis := c.ByProject(ProjectRIPERIS)
	require.NotEmpty(t, riperis)
	for _, col := range riperis {
		assert.Equal(t, ProjectRIPERIS, col.Project)
	}

	routeviews := c.ByProject(ProjectRouteViews)
	require.NotEmpty(t, routeviews)

	assert.Empty(t, c.ByProject("not-a-project"))
}

func TestValidProject(t *testing.T) {
	assert.True(t, ValidProject(ProjectRIPERIS))
	assert.True(t, ValidProject(ProjectRouteViews))
	assert.False(t, ValidProject("bogus"))
}

func TestMissingCollectors(t *testing.T) {
	c := newFrom([]Collector{
		{Name: "rrc00", Project: ProjectRIPERIS, DataURL: "https://data.ris.ripe.net/rrc00"},
		{Name: "rrc01", Project: ProjectRIPERIS, DataURL: "https://data.ris.ripe.net/rrc01"},
		{Name: "route-views2", Project: ProjectRouteViews, DataURL: "https://archive.routeviews.org/bgpdata"},
	})
	seen := map[string]struct{}{"rrc00": {}}
	missing := c.MissingCollectors(seen)
	assert.Equal(t, []string{"route-views2", "rrc01"}, missing)
}

func TestByNameOrErr(t *testing.T) {
	c := New()
	_, err := c.ByNameOrErr("nope")
	require.Error(t, err)

	col, err := c.ByNameOrErr("rrc00")
	require.NoError(t, err)
	assert.Equal(t, "rrc00", col.Name)
}
