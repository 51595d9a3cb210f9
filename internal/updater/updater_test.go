package updater

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bgpkit/broker-go/internal/catalog"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 300*time.Second, cfg.Interval)
	assert.Equal(t, 30*24*time.Hour, cfg.MetaRetention)

	custom := Config{Interval: time.Minute, MetaRetention: time.Hour}.withDefaults()
	assert.Equal(t, time.Minute, custom.Interval)
	assert.Equal(t, time.Hour, custom.MetaRetention)
}

func TestSafetyWindowByProject(t *testing.T) {
	assert.Equal(t, 15*time.Minute, safetyWindow(catalog.ProjectRouteViews))
	assert.Equal(t, 5*time.Minute, safetyWindow(catalog.ProjectRIPERIS))
	assert.Equal(t, 5*time.Minute, safetyWindow("unknown-project"))
}

func TestNewFallsBackToDefaultCatalog(t *testing.T) {
	u := New(nil, nil, nil, nil, Config{})
	assert.NotNil(t, u.catalog)
	assert.NotEmpty(t, u.catalog.All())
}
