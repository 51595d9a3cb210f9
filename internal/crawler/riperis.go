package crawler

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/httpfetch"
	"github.com/bgpkit/broker-go/pkg/broker"
)

var riperisFilePattern = regexp.MustCompile(`(\d{8}\.\d{4})\.gz`)

const riperisUpdatesCadence = 5 * time.Minute

// CrawlRIPERIS crawls a RIPE RIS collector's archive.
//
// Layout: <data_url>/YYYY.MM/, files named bview.YYYYMMDD.HHMM.gz or
// updates.YYYYMMDD.HHMM.gz.
func CrawlRIPERIS(ctx context.Context, fetcher *httpfetch.Fetcher, collector catalog.Collector, fromTS *time.Time, monthConcurrency int) ([]broker.BrokerItem, error) {
	rootURL := removeTrailingSlash(collector.DataURL)

	months, err := crawlMonthsList(ctx, fetcher, rootURL, fromTS)
	if err != nil {
		return nil, err
	}

	return crawlMonthsConcurrently(ctx, months, monthConcurrency, func(ctx context.Context, month time.Time) ([]broker.BrokerItem, error) {
		monthURL := fmt.Sprintf("%s/%s", rootURL, month.Format("2006.01"))
		return crawlRIPERISMonth(ctx, fetcher, monthURL, collector.Name)
	})
}

func crawlRIPERISMonth(ctx context.Context, fetcher *httpfetch.Fetcher, monthURL, collectorID string) ([]broker.BrokerItem, error) {
	body, err := fetcher.Get(ctx, monthURL)
	if err != nil {
		return nil, nil //nolint:nilerr // a failed month does not abort the collector
	}

	var items []broker.BrokerItem
	for _, e := range extractLinkSize(string(body)) {
		fileURL := fmt.Sprintf("%s/%s", monthURL, e.Link)
		// RIPE occasionally serves month pages over http:// while the
		// files themselves are only reachable over https://.
		if !strings.Contains(fileURL, "https") {
			fileURL = strings.Replace(fileURL, "http", "https", 1)
		}
		ts, ok := timestampFromFilename(fileURL, riperisFilePattern)
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
			item.TsEnd = ts.Add(riperisUpdatesCadence)
		} else {
			item.TsEnd = ts
		}
		items = append(items, item)
	}
	return items, nil
}
