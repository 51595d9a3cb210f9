package broker

import (
	"context"
	"sort"
	"time"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/store"
)

// Store is the subset of internal/store.Store the query engine needs. It
// is redeclared here (rather than importing the concrete type) so that
// pkg/broker's public surface does not leak an internal package in its
// exported function signatures; internal/store.Store satisfies it.
type Store interface {
	Query(ctx context.Context, f Filter) (store.QueryResult, error)
	LatestFiles(ctx context.Context, collector string) ([]LatestFile, error)
	LatestMeta(ctx context.Context) (Meta, bool, error)
}

// PeerSource is a read-through collaborator for BGP peer information,
// generalizing the upstream bgpkit-commons dependency the spec treats as
// an external read-only source. It is not produced by the crawler.
type PeerSource interface {
	Peers(ctx context.Context, f Filter) ([]BrokerPeer, error)
}

// Engine implements the query/shortcut contract (C6) against a Store and
// the bundled Catalog. It is the in-process form of the SDK; internal/api
// wraps one Engine per process to serve the HTTP surface.
type Engine struct {
	store   Store
	catalog *catalog.Catalog
	peers   PeerSource
}

// NewEngine builds an Engine. peers may be nil if peer-derived shortcuts
// (MostDiverseCollectors) are not needed.
func NewEngine(s Store, cat *catalog.Catalog, peers PeerSource) *Engine {
	if cat == nil {
		cat = catalog.New()
	}
	return &Engine{store: s, catalog: cat, peers: peers}
}

// resolve expands f.Project into the effective collector_id set and
// clears Project so downstream Query calls only see collector_id filters.
func (e *Engine) resolve(f Filter) Filter {
	resolved := f.ResolvedCollectors(e.catalog)
	f.Collectors = resolved
	f.Project = ""
	return f
}

// Search validates and runs f, returning one page of matching items.
func (e *Engine) Search(ctx context.Context, f Filter) (store.QueryResult, error) {
	if err := f.Validate(); err != nil {
		return store.QueryResult{}, err
	}
	return e.store.Query(ctx, e.resolve(f))
}

// DailyRIBs returns every RIB whose ts_start falls exactly at 00:00:00 UTC,
// across all pages.
func (e *Engine) DailyRIBs(ctx context.Context) ([]BrokerItem, error) {
	f := NewFilter().WithDataType(DataTypeRIB).WithPageSize(MaxPageSize)
	var out []BrokerItem
	for page := 1; ; page++ {
		result, err := e.Search(ctx, f.WithPage(page))
		if err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			if isMidnightUTC(item.TsStart) {
				out = append(out, item)
			}
		}
		if len(result.Items) < f.PageSize {
			break
		}
	}
	return out, nil
}

func isMidnightUTC(t time.Time) bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0
}

// RecentUpdates returns every updates file with ts_start within the last h,
// across all pages.
func (e *Engine) RecentUpdates(ctx context.Context, h time.Duration) ([]BrokerItem, error) {
	since := time.Now().UTC().Add(-h)
	f := NewFilter().WithDataType(DataTypeUpdates).WithTsStart(since).WithPageSize(MaxPageSize)
	var out []BrokerItem
	for page := 1; ; page++ {
		result, err := e.Search(ctx, f.WithPage(page))
		if err != nil {
			return nil, err
		}
		out = append(out, result.Items...)
		if len(result.Items) < f.PageSize {
			break
		}
	}
	return out, nil
}

// Peers returns the peer rows matching f's PeersCollector/PeersASN/PeersIP/
// PeersOnlyFullFeed restrictions, read through from the PeerSource. It
// returns an empty slice, not an error, when no PeerSource is configured.
func (e *Engine) Peers(ctx context.Context, f Filter) ([]BrokerPeer, error) {
	if e.peers == nil {
		return nil, nil
	}
	return e.peers.Peers(ctx, f)
}

// LatestFiles returns the store's latest_files snapshot, optionally
// restricted to one collector.
func (e *Engine) LatestFiles(ctx context.Context, collector string) ([]LatestFile, error) {
	return e.store.LatestFiles(ctx, collector)
}

// LatestMeta returns the most recent update-cycle meta row, if any.
func (e *Engine) LatestMeta(ctx context.Context) (Meta, bool, error) {
	return e.store.LatestMeta(ctx)
}

// MostDiverseCollectors greedily picks up to n collectors that maximize
// coverage of distinct full-feed peer ASNs, optionally restricted to one
// project. Ties are broken alphabetically by collector name so the result
// is deterministic regardless of map iteration order.
func (e *Engine) MostDiverseCollectors(ctx context.Context, n int, project string) ([]string, error) {
	if n <= 0 || e.peers == nil {
		return nil, nil
	}

	f := NewFilter().WithPageSize(MaxPageSize)
	if project != "" {
		f = f.WithProject(project)
	}
	peers, err := e.peers.Peers(ctx, f)
	if err != nil {
		return nil, err
	}

	fullFeedASNsByCollector := make(map[string]map[uint32]struct{})
	var candidates []string
	seenCandidate := make(map[string]struct{})
	for _, p := range peers {
		if !p.IsFullFeed() {
			continue
		}
		if project != "" {
			if col, ok := e.catalog.ByName(p.Collector); !ok || col.Project != normalizeProject(project) {
				continue
			}
		}
		if fullFeedASNsByCollector[p.Collector] == nil {
			fullFeedASNsByCollector[p.Collector] = make(map[uint32]struct{})
		}
		fullFeedASNsByCollector[p.Collector][p.ASN] = struct{}{}
		if _, ok := seenCandidate[p.Collector]; !ok {
			seenCandidate[p.Collector] = struct{}{}
			candidates = append(candidates, p.Collector)
		}
	}
	sort.Strings(candidates)

	covered := make(map[uint32]struct{})
	var picked []string
	for len(picked) < n {
		bestCollector := ""
		bestNewCount := 0
		for _, c := range candidates {
			if containsString(picked, c) {
				continue
			}
			newCount := 0
			for asn := range fullFeedASNsByCollector[c] {
				if _, ok := covered[asn]; !ok {
					newCount++
				}
			}
			if newCount > bestNewCount || (newCount == bestNewCount && newCount > 0 && bestCollector != "" && c < bestCollector) {
				bestNewCount = newCount
				bestCollector = c
			}
			if newCount > 0 && bestCollector == "" {
				bestNewCount = newCount
				bestCollector = c
			}
		}
		if bestCollector == "" || bestNewCount == 0 {
			break
		}
		picked = append(picked, bestCollector)
		for asn := range fullFeedASNsByCollector[bestCollector] {
			covered[asn] = struct{}{}
		}
	}
	return picked, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// GetSnapshotFiles reconstructs, per collector, the most recent RIB at or
// before targetTs plus every updates file needed to roll forward to it,
// chronologically ordered. Only RIBs whose ts_start lies within 24 hours
// before targetTs are considered; a collector with no RIB in that window
// gets an entry with an empty RibURL and no updates.
func (e *Engine) GetSnapshotFiles(ctx context.Context, collectors []string, targetTs time.Time) ([]SnapshotFiles, error) {
	var out []SnapshotFiles
	for _, collector := range collectors {
		sf, err := e.snapshotFilesFor(ctx, collector, targetTs)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, nil
}

func (e *Engine) snapshotFilesFor(ctx context.Context, collector string, targetTs time.Time) (SnapshotFiles, error) {
	const lookback = 24 * time.Hour
	ribFilter := NewFilter().
		WithCollectors(collector).
		WithDataType(DataTypeRIB).
		WithTsStart(targetTs.Add(-lookback)).
		WithTsEnd(targetTs).
		WithPageSize(MaxPageSize)
	ribResult, err := e.Search(ctx, ribFilter)
	if err != nil {
		return SnapshotFiles{}, err
	}
	if len(ribResult.Items) == 0 {
		return SnapshotFiles{CollectorID: collector}, nil
	}
	rib := ribResult.Items[0]
	for _, item := range ribResult.Items {
		if item.TsStart.After(rib.TsStart) {
			rib = item
		}
	}

	updatesFilter := NewFilter().
		WithCollectors(collector).
		WithDataType(DataTypeUpdates).
		WithTsStart(rib.TsStart).
		WithTsEnd(targetTs).
		WithPageSize(MaxPageSize)
	updatesResult, err := e.Search(ctx, updatesFilter)
	if err != nil {
		return SnapshotFiles{}, err
	}

	var urls []string
	for _, item := range updatesResult.Items {
		if item.TsStart.After(rib.TsStart) && !item.TsStart.After(targetTs) {
			urls = append(urls, item.URL)
		}
	}
	return SnapshotFiles{CollectorID: collector, RibURL: rib.URL, UpdatesURLs: urls}, nil
}
