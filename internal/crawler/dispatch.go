package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/httpfetch"
	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// Config bundles the concurrency knobs for one crawl cycle.
type Config struct {
	CollectorConcurrency int
	MonthConcurrency     int
}

func (c Config) withDefaults() Config {
	if c.CollectorConcurrency <= 0 {
		c.CollectorConcurrency = 2
	}
	if c.MonthConcurrency <= 0 {
		c.MonthConcurrency = 2
	}
	return c
}

// FromTS is the per-collector crawl start point, keyed by collector name.
// A missing entry means bootstrap-from-beginning.
type FromTS map[string]time.Time

// CrawlCollector dispatches to the project-specific crawler.
func CrawlCollector(ctx context.Context, fetcher *httpfetch.Fetcher, collector catalog.Collector, fromTS *time.Time, monthConcurrency int) ([]broker.BrokerItem, error) {
	switch collector.Project {
	case catalog.ProjectRouteViews:
		return CrawlRouteViews(ctx, fetcher, collector, fromTS, monthConcurrency)
	case catalog.ProjectRIPERIS:
		return CrawlRIPERIS(ctx, fetcher, collector, fromTS, monthConcurrency)
	default:
		return nil, fmt.Errorf("crawler: unknown project %q for collector %q", collector.Project, collector.Name)
	}
}

// CrawlAll crawls every collector in collectors concurrently (bounded by
// cfg.CollectorConcurrency), each with its own from-timestamp looked up in
// from. A failing collector is logged and contributes no items; it never
// aborts the other collectors (partial-failure semantics of C3).
func CrawlAll(ctx context.Context, fetcher *httpfetch.Fetcher, collectors []catalog.Collector, from FromTS, cfg Config) []broker.BrokerItem {
	cfg = cfg.withDefaults()

	results := make([][]broker.BrokerItem, len(collectors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.CollectorConcurrency)

	for i, collector := range collectors {
		i, collector := i, collector
		g.Go(func() error {
			var fromTS *time.Time
			if t, ok := from[collector.Name]; ok {
				fromTS = &t
			}
			items, err := CrawlCollector(gctx, fetcher, collector, fromTS, cfg.MonthConcurrency)
			if err != nil {
				logging.L.Warn("collector crawl failed", zap.String("collector", collector.Name), zap.Error(err))
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait() // individual failures are swallowed above; Wait never returns non-nil here

	var out []broker.BrokerItem
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
