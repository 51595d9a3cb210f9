// Package store defines the Index Store contract: the single-writer
// relational store behind the broker's items, latest_files, and meta
// tables.
package store

import (
	"context"
	"time"

	"github.com/bgpkit/broker-go/pkg/broker"
)

// QueryResult is one page of a Query call.
type QueryResult struct {
	Items    []broker.BrokerItem
	Page     int
	PageSize int
	Total    int64
}

// Store is the Index Store contract. Implementations must serialize writes
// behind a single writer (see internal/store/sqlite) while allowing
// concurrent reads.
type Store interface {
	// InsertItems upserts items transactionally, ignoring rows that
	// conflict on (collector_id, ts_start, data_type). It returns the
	// subset that was newly inserted (for notification fan-out).
	InsertItems(ctx context.Context, items []broker.BrokerItem) ([]broker.BrokerItem, error)

	// LatestPerCollector returns, for every collector with at least one
	// row, its most recent ts_start grouped by data type irrelevant: it
	// is the max ts_start across all rows for that collector.
	LatestPerCollector(ctx context.Context) (map[string]time.Time, error)

	// RebuildLatestSnapshot recomputes latest_files from items: delete,
	// then insert-from-max-per-(collector_id, data_type) within one
	// transaction.
	RebuildLatestSnapshot(ctx context.Context) error

	// Query runs a validated filter and returns one page of results in
	// the canonical BrokerItem order.
	Query(ctx context.Context, f broker.Filter) (QueryResult, error)

	// Count returns the total number of items matching f, ignoring
	// paging.
	Count(ctx context.Context, f broker.Filter) (int64, error)

	// LatestFiles returns the current latest_files snapshot, optionally
	// restricted to one collector.
	LatestFiles(ctx context.Context, collector string) ([]broker.LatestFile, error)

	// AppendMeta records one update-cycle's bookkeeping row.
	AppendMeta(ctx context.Context, m broker.Meta) error

	// PruneMeta deletes meta rows older than retention.
	PruneMeta(ctx context.Context, retention time.Duration) error

	// LatestMeta returns the most recently appended meta row, if any.
	LatestMeta(ctx context.Context) (broker.Meta, bool, error)

	// RunAnalyze runs the backing engine's query planner statistics
	// refresh (ANALYZE for SQLite).
	RunAnalyze(ctx context.Context) error

	// Backup writes a consistent point-in-time copy of the store to dst
	// using the backing engine's online-backup facility. Concurrent
	// readers are not blocked; the write connection is held until the
	// copy completes.
	Backup(ctx context.Context, dst string) error

	// Close releases all resources.
	Close() error
}
