package crawler

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/httpfetch"
	"github.com/bgpkit/broker-go/pkg/broker"
)

var routeviewsFilePattern = regexp.MustCompile(`(\d{8}\.\d{4})\.bz2`)

const routeviewsUpdatesCadence = 15 * time.Minute

// CrawlRouteViews crawls a RouteViews collector's archive.
//
// Layout: <data_url>/YYYY.MM/{RIBS,UPDATES}/, files named
// rib.YYYYMMDD.HHMM.bz2 or updates.YYYYMMDD.HHMM.bz2.
func CrawlRouteViews(ctx context.Context, fetcher *httpfetch.Fetcher, collector catalog.Collector, fromTS *time.Time, monthConcurrency int) ([]broker.BrokerItem, error) {
	rootURL := removeTrailingSlash(collector.DataURL)

	months, err := crawlMonthsList(ctx, fetcher, rootURL, fromTS)
	if err != nil {
		return nil, err
	}

	return crawlMonthsConcurrently(ctx, months, monthConcurrency, func(ctx context.Context, month time.Time) ([]broker.BrokerItem, error) {
		monthURL := fmt.Sprintf("%s/%s", rootURL, month.Format("2006.01"))
		return crawlRouteViewsMonth(ctx, fetcher, monthURL, collector.Name)
	})
}

func crawlRouteViewsMonth(ctx context.Context, fetcher *httpfetch.Fetcher, monthURL, collectorID string) ([]broker.BrokerItem, error) {
	var all []broker.BrokerItem
	for _, subdir := range []string{"RIBS", "UPDATES"} {
		dirURL := fmt.Sprintf("%s/%s", monthURL, subdir)
		body, err := fetcher.Get(ctx, dirURL)
		if err != nil {
			// Non-fatal: a missing/unreachable subdirectory for this
			// month should not abort the whole collector crawl.
			continue
		}
		entries := extractLinkSize(string(body))
		for _, e := range entries {
			fileURL := fmt.Sprintf("%s/%s", dirURL, e.Link)
			ts, ok := timestampFromFilename(fileURL, routeviewsFilePattern)
			if !ok {
				continue
			}
			item := broker.BrokerItem{
				TsStart:     ts,
				CollectorID: collectorID,
				URL:         fileURL,
				RoughSize:   e.Size,
				DataType:    dataTypeOf(e.Link),
			}
			if item.DataType == broker.DataTypeUpdates {
				item.TsEnd = ts.Add(routeviewsUpdatesCadence)
			} else {
				item.TsEnd = ts
			}
			all = append(all, item)
		}
	}
	return all, nil
}

// crawlMonthsConcurrently runs fn over months bounded by concurrency,
// aggregating all results. The month functions passed as fn skip a month
// whose listing fetch fails without writing a log entry; such a month
// contributes no items and does not abort the sibling months or the
// collector (per the partial-failure semantics of C3).
func crawlMonthsConcurrently(ctx context.Context, months []time.Time, concurrency int, fn func(context.Context, time.Time) ([]broker.BrokerItem, error)) ([]broker.BrokerItem, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([][]broker.BrokerItem, len(months))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, month := range months {
		i, month := i, month
		g.Go(func() error {
			items, err := fn(gctx, month)
			if err != nil {
				return nil //nolint:nilerr // a failed month does not abort the collector
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []broker.BrokerItem
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
