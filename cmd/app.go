package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/config"
	"github.com/bgpkit/broker-go/internal/httpfetch"
	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/internal/notifier"
	"github.com/bgpkit/broker-go/internal/peers"
	"github.com/bgpkit/broker-go/internal/store"
	"github.com/bgpkit/broker-go/internal/store/sqlite"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// App wires every long-lived collaborator a subcommand might need: config,
// the Index Store, the fetcher, the notifier, and the query Engine.
// buildApp constructs all of them for every subcommand; App.Close releases
// whatever was opened.
type App struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Store   store.Store
	Fetcher *httpfetch.Fetcher
	Notifier *notifier.Notifier
	Peers   broker.PeerSource
	Engine  *broker.Engine
}

// newApp is a var so tests can substitute a fake App builder.
var newApp = buildApp

func buildApp(ctx context.Context, cfg config.Config) (*App, error) {
	cat := catalog.New()

	st, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.Store.Path})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fetcher := httpfetch.NewFetcher(httpfetch.Config{
		MaxRetries:  cfg.Crawler.MaxRetries,
		BackoffBase: cfg.Crawler.BackoffDuration(),
	})

	n, err := notifier.New(notifier.Config{
		URL:         cfg.Notifier.URL,
		User:        cfg.Notifier.User,
		Password:    cfg.Notifier.Password,
		RootSubject: cfg.Notifier.RootSubject,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build notifier: %w", err)
	}

	var peerSource broker.PeerSource
	if cfg.Peers.BaseURL != "" {
		peerSource = peers.NewHTTP(cfg.Peers.BaseURL)
	}

	engine := broker.NewEngine(st, cat, peerSource)

	return &App{
		Config:   cfg,
		Catalog:  cat,
		Store:    st,
		Fetcher:  fetcher,
		Notifier: n,
		Peers:    peerSource,
		Engine:   engine,
	}, nil
}

// Close releases the App's resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Notifier != nil {
		a.Notifier.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			logging.L.Warn("app: close store failed", zap.Error(err))
		}
	}
}
