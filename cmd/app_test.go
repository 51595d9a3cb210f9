package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgpkit/broker-go/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.Store.Path = filepath.Join(t.TempDir(), "broker.sqlite3")
	cfg.Crawler.CollectorConcurrency = 1
	cfg.Crawler.MonthConcurrency = 1
	return cfg
}

func TestBuildAppWithoutNotifierOrPeers(t *testing.T) {
	cfg := testConfig(t)

	app, err := buildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Catalog)
	assert.NotNil(t, app.Fetcher)
	assert.NotNil(t, app.Notifier, "New must return a no-op notifier rather than nil when URL is empty")
	assert.Nil(t, app.Peers, "no peers.BaseURL was configured")
	assert.NotNil(t, app.Engine)
}

func TestBuildAppWithPeersBaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Peers.BaseURL = "https://example.org/peers"

	app, err := buildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Peers)
}

func TestAppCloseHandlesNilApp(t *testing.T) {
	var app *App
	assert.NotPanics(t, func() { app.Close() })
}
