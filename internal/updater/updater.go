// Package updater implements the periodic crawl-index-notify cycle (C5).
package updater

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/crawler"
	"github.com/bgpkit/broker-go/internal/httpfetch"
	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/internal/notifier"
	"github.com/bgpkit/broker-go/internal/store"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// Config controls the update loop's cadence and safety margins.
type Config struct {
	// Interval between cycles. Default 300s.
	Interval time.Duration
	// MetaRetention bounds how long meta rows are kept. Default 30 days.
	MetaRetention time.Duration
	// HeartbeatURL, if set, is GET-ed after each successful cycle.
	HeartbeatURL string
	Crawler      crawler.Config
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 300 * time.Second
	}
	if c.MetaRetention <= 0 {
		c.MetaRetention = 30 * 24 * time.Hour
	}
	return c
}

// safetyWindow returns the per-project lookback margin applied to a
// collector's latest known ts_start, to rediscover late-arriving files.
// It equals one update cadence for that project.
func safetyWindow(project string) time.Duration {
	if project == catalog.ProjectRouteViews {
		return 15 * time.Minute
	}
	return 5 * time.Minute
}

// Updater runs the periodic update cycle against a Store, the bundled
// Catalog, and a Notifier.
type Updater struct {
	store    store.Store
	catalog  *catalog.Catalog
	notifier *notifier.Notifier
	fetcher  *httpfetch.Fetcher
	cfg      Config
	entropy  io.Reader
}

// New builds an Updater.
func New(s store.Store, cat *catalog.Catalog, n *notifier.Notifier, fetcher *httpfetch.Fetcher, cfg Config) *Updater {
	if cat == nil {
		cat = catalog.New()
	}
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return &Updater{store: s, catalog: cat, notifier: n, fetcher: fetcher, cfg: cfg.withDefaults(), entropy: entropy}
}

// Run blocks, executing one cycle immediately and then every cfg.Interval,
// until ctx is canceled.
func (u *Updater) Run(ctx context.Context) error {
	ticker := time.NewTicker(u.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := u.RunOnce(ctx); err != nil {
			logging.L.Error("update cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single update cycle: crawl every collector from its
// computed from_ts, batch-insert results, rebuild the latest snapshot,
// notify newly-inserted rows, append and prune meta, and ping the
// heartbeat URL.
//
// A StoreError aborts the cycle (the next tick retries); crawler-level
// failures are partial per C3's semantics and do not abort the cycle.
func (u *Updater) RunOnce(ctx context.Context) error {
	start := time.Now()

	latest, err := u.store.LatestPerCollector(ctx)
	if err != nil {
		return err
	}

	from := make(crawler.FromTS, len(latest))
	collectors := u.catalog.All()
	for _, col := range collectors {
		ts, ok := latest[col.Name]
		if !ok {
			if !col.ActivatedOn.IsZero() {
				from[col.Name] = col.ActivatedOn
			}
			continue
		}
		candidate := ts.Add(-safetyWindow(col.Project))
		if !col.ActivatedOn.IsZero() && candidate.Before(col.ActivatedOn) {
			candidate = col.ActivatedOn
		}
		from[col.Name] = candidate
	}

	items := crawler.CrawlAll(ctx, u.fetcher, collectors, from, u.cfg.Crawler)

	inserted, err := u.store.InsertItems(ctx, items)
	if err != nil {
		return broker.NewStoreError("update_cycle:insert_items", err)
	}

	if err := u.store.RebuildLatestSnapshot(ctx); err != nil {
		return err
	}

	if u.notifier != nil && len(inserted) > 0 {
		u.notifier.NotifyItems(inserted)
	}

	duration := time.Since(start)
	runID := ulid.MustNew(ulid.Timestamp(start), u.entropy)
	meta := broker.Meta{
		RunID:                 runID.String(),
		Timestamp:             start.UTC(),
		UpdateDurationSeconds: duration.Seconds(),
		InsertedCount:         int64(len(inserted)),
	}
	if err := u.store.AppendMeta(ctx, meta); err != nil {
		return err
	}
	if err := u.store.PruneMeta(ctx, u.cfg.MetaRetention); err != nil {
		logging.L.Warn("prune_meta failed", zap.Error(err))
	}

	if u.cfg.HeartbeatURL != "" {
		if _, err := u.fetcher.Get(ctx, u.cfg.HeartbeatURL); err != nil {
			logging.L.Warn("heartbeat GET failed", zap.Error(err))
		}
	}

	logging.L.Info("update cycle complete",
		zap.String("run_id", runID.String()),
		zap.Int("crawled", len(items)),
		zap.Int("inserted", len(inserted)),
		zap.Duration("duration", duration),
	)
	return nil
}
