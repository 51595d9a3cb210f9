// Package sqlite implements internal/store.Store on top of a single SQLite
// file, following the single-writer discipline described by the Index
// Store design: one long-lived write connection serializes all mutations,
// while a separate read pool serves concurrent queries.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/pkg/broker"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	collector_id TEXT NOT NULL,
	ts_start     INTEGER NOT NULL,
	ts_end       INTEGER NOT NULL,
	data_type    TEXT NOT NULL,
	url          TEXT NOT NULL,
	rough_size   INTEGER NOT NULL DEFAULT 0,
	exact_size   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (collector_id, ts_start, data_type)
);

CREATE INDEX IF NOT EXISTS idx_items_ts_start ON items (ts_start);
CREATE INDEX IF NOT EXISTS idx_items_collector ON items (collector_id);

CREATE TABLE IF NOT EXISTS latest_files (
	collector_id  TEXT NOT NULL,
	ts_start      INTEGER NOT NULL,
	ts_end        INTEGER NOT NULL,
	data_type     TEXT NOT NULL,
	url           TEXT NOT NULL,
	rough_size    INTEGER NOT NULL DEFAULT 0,
	exact_size    INTEGER NOT NULL DEFAULT 0,
	delay_seconds INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (collector_id, data_type)
);

CREATE TABLE IF NOT EXISTS meta (
	timestamp               INTEGER PRIMARY KEY,
	run_id                  TEXT NOT NULL DEFAULT '',
	update_duration_seconds REAL NOT NULL,
	inserted_count          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS collectors (
	name         TEXT PRIMARY KEY,
	project      TEXT NOT NULL,
	data_url     TEXT NOT NULL,
	activated_on INTEGER NOT NULL DEFAULT 0
);
`

// Store is the SQLite-backed Index Store.
type Store struct {
	writer *sqlx.DB // single connection, serializes all mutations
	reader *sqlx.DB // pooled, read-only
}

// Config configures the SQLite store.
type Config struct {
	// Path is the filesystem path to the database file.
	Path string
	// MaxReadConns bounds the read pool size. Defaults to 4.
	MaxReadConns int
}

// Open opens (creating if absent) the SQLite database at cfg.Path,
// enables WAL journaling, and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.MaxReadConns <= 0 {
		cfg.MaxReadConns = 4
	}

	writerDSN := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.Path)
	writer, err := sqlx.ConnectContext(ctx, "sqlite3", writerDSN)
	if err != nil {
		return nil, fmt.Errorf("open writer connection: %w", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)

	readerDSN := fmt.Sprintf("file:%s?_journal_mode=WAL&mode=ro&_busy_timeout=5000", cfg.Path)
	reader, err := sqlx.ConnectContext(ctx, "sqlite3", readerDSN)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader pool: %w", err)
	}
	reader.SetMaxOpenConns(cfg.MaxReadConns)

	if _, err := writer.ExecContext(ctx, schema); err != nil {
		writer.Close()
		reader.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{writer: writer, reader: reader}, nil
}

// Close releases both connections.
func (s *Store) Close() error {
	var firstErr error
	if err := s.writer.Close(); err != nil {
		firstErr = err
	}
	if err := s.reader.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// InsertItems upserts items transactionally, ignoring conflicts on the
// (collector_id, ts_start, data_type) primary key, and returns the subset
// that was newly inserted.
func (s *Store) InsertItems(ctx context.Context, items []broker.BrokerItem) ([]broker.BrokerItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := s.writer.BeginTxx(ctx, nil)
	if err != nil {
		return nil, broker.NewStoreError("insert_items:begin", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	const stmt = `
INSERT INTO items (collector_id, ts_start, ts_end, data_type, url, rough_size, exact_size)
VALUES (:collector_id, :ts_start, :ts_end, :data_type, :url, :rough_size, :exact_size)
ON CONFLICT (collector_id, ts_start, data_type) DO NOTHING
`
	var inserted []broker.BrokerItem
	for _, item := range items {
		res, err := tx.NamedExecContext(ctx, stmt, toRow(item))
		if err != nil {
			return nil, broker.NewStoreError("insert_items:exec", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, broker.NewStoreError("insert_items:rows_affected", err)
		}
		if n > 0 {
			inserted = append(inserted, item)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, broker.NewStoreError("insert_items:commit", err)
	}
	logging.L.Debug("inserted items", zap.Int("attempted", len(items)), zap.Int("inserted", len(inserted)))
	return inserted, nil
}

// LatestPerCollector returns the max ts_start seen per collector.
func (s *Store) LatestPerCollector(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.reader.QueryxContext(ctx, `SELECT collector_id, MAX(ts_start) AS ts_start FROM items GROUP BY collector_id`)
	if err != nil {
		return nil, broker.NewStoreError("latest_per_collector", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var collectorID string
		var tsStart int64
		if err := rows.Scan(&collectorID, &tsStart); err != nil {
			return nil, broker.NewStoreError("latest_per_collector:scan", err)
		}
		out[collectorID] = time.Unix(tsStart, 0).UTC()
	}
	return out, rows.Err()
}

// RebuildLatestSnapshot replaces latest_files with one row per
// (collector_id, data_type), taken from the row with the max ts_start for
// that pair.
func (s *Store) RebuildLatestSnapshot(ctx context.Context) error {
	tx, err := s.writer.BeginTxx(ctx, nil)
	if err != nil {
		return broker.NewStoreError("rebuild_latest_snapshot:begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM latest_files`); err != nil {
		return broker.NewStoreError("rebuild_latest_snapshot:delete", err)
	}

	const insert = `
INSERT INTO latest_files (collector_id, ts_start, ts_end, data_type, url, rough_size, exact_size, delay_seconds)
SELECT i.collector_id, i.ts_start, i.ts_end, i.data_type, i.url, i.rough_size, i.exact_size,
       CAST(strftime('%s','now') AS INTEGER) - i.ts_start AS delay_seconds
FROM items i
JOIN (
	SELECT collector_id, data_type, MAX(ts_start) AS max_ts
	FROM items
	GROUP BY collector_id, data_type
) latest
ON i.collector_id = latest.collector_id
AND i.data_type = latest.data_type
AND i.ts_start = latest.max_ts
`
	if _, err := tx.ExecContext(ctx, insert); err != nil {
		return broker.NewStoreError("rebuild_latest_snapshot:insert", err)
	}
	if err := tx.Commit(); err != nil {
		return broker.NewStoreError("rebuild_latest_snapshot:commit", err)
	}
	return nil
}

// LatestFiles returns the current latest_files snapshot, optionally
// restricted to one collector.
func (s *Store) LatestFiles(ctx context.Context, collector string) ([]broker.LatestFile, error) {
	query := `SELECT collector_id, ts_start, ts_end, data_type, url, rough_size, exact_size, delay_seconds FROM latest_files`
	args := []any{}
	if collector != "" {
		query += ` WHERE collector_id = ?`
		args = append(args, collector)
	}
	query += ` ORDER BY collector_id, data_type`

	rows, err := s.reader.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, broker.NewStoreError("latest_files", err)
	}
	defer rows.Close()

	var out []broker.LatestFile
	for rows.Next() {
		var r latestFileRow
		if err := rows.StructScan(&r); err != nil {
			return nil, broker.NewStoreError("latest_files:scan", err)
		}
		out = append(out, r.toLatestFile())
	}
	return out, rows.Err()
}

// AppendMeta records one update-cycle bookkeeping row.
func (s *Store) AppendMeta(ctx context.Context, m broker.Meta) error {
	const stmt = `INSERT INTO meta (timestamp, run_id, update_duration_seconds, inserted_count) VALUES (?, ?, ?, ?)`
	if _, err := s.writer.ExecContext(ctx, stmt, m.Timestamp.Unix(), m.RunID, m.UpdateDurationSeconds, m.InsertedCount); err != nil {
		return broker.NewStoreError("append_meta", err)
	}
	return nil
}

// PruneMeta deletes meta rows older than retention.
func (s *Store) PruneMeta(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention).Unix()
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM meta WHERE timestamp < ?`, cutoff); err != nil {
		return broker.NewStoreError("prune_meta", err)
	}
	return nil
}

// LatestMeta returns the most recently appended meta row.
func (s *Store) LatestMeta(ctx context.Context) (broker.Meta, bool, error) {
	var r metaRow
	err := s.reader.GetContext(ctx, &r, `SELECT timestamp, run_id, update_duration_seconds, inserted_count FROM meta ORDER BY timestamp DESC LIMIT 1`)
	if err == sql.ErrNoRows {
		return broker.Meta{}, false, nil
	}
	if err != nil {
		return broker.Meta{}, false, broker.NewStoreError("latest_meta", err)
	}
	return r.toMeta(), true, nil
}

// RunAnalyze refreshes SQLite's query planner statistics.
func (s *Store) RunAnalyze(ctx context.Context) error {
	if _, err := s.writer.ExecContext(ctx, `ANALYZE`); err != nil {
		return broker.NewStoreError("run_analyze", err)
	}
	return nil
}

// Backup uses SQLite's VACUUM INTO to produce a consistent snapshot file.
// It runs on the single write connection, so other writes wait until it
// completes; the read pool is not blocked.
func (s *Store) Backup(ctx context.Context, dst string) error {
	if _, err := s.writer.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return broker.NewStoreError("backup", err)
	}
	return nil
}

type row struct {
	CollectorID string `db:"collector_id"`
	TsStart     int64  `db:"ts_start"`
	TsEnd       int64  `db:"ts_end"`
	DataType    string `db:"data_type"`
	URL         string `db:"url"`
	RoughSize   int64  `db:"rough_size"`
	ExactSize   int64  `db:"exact_size"`
}

func toRow(item broker.BrokerItem) row {
	return row{
		CollectorID: item.CollectorID,
		TsStart:     item.TsStart.Unix(),
		TsEnd:       item.TsEnd.Unix(),
		DataType:    string(item.DataType),
		URL:         item.URL,
		RoughSize:   item.RoughSize,
		ExactSize:   item.ExactSize,
	}
}

func (r row) toItem() broker.BrokerItem {
	return broker.BrokerItem{
		CollectorID: r.CollectorID,
		TsStart:     time.Unix(r.TsStart, 0).UTC(),
		TsEnd:       time.Unix(r.TsEnd, 0).UTC(),
		DataType:    broker.DataType(r.DataType),
		URL:         r.URL,
		RoughSize:   r.RoughSize,
		ExactSize:   r.ExactSize,
	}
}

type latestFileRow struct {
	row
	DelaySeconds int64 `db:"delay_seconds"`
}

func (r latestFileRow) toLatestFile() broker.LatestFile {
	return broker.LatestFile{BrokerItem: r.row.toItem(), DelaySeconds: r.DelaySeconds}
}

type metaRow struct {
	Timestamp             int64   `db:"timestamp"`
	RunID                 string  `db:"run_id"`
	UpdateDurationSeconds float64 `db:"update_duration_seconds"`
	InsertedCount         int64   `db:"inserted_count"`
}

func (r metaRow) toMeta() broker.Meta {
	return broker.Meta{
		RunID:                 r.RunID,
		Timestamp:             time.Unix(r.Timestamp, 0).UTC(),
		UpdateDurationSeconds: r.UpdateDurationSeconds,
		InsertedCount:         r.InsertedCount,
	}
}
