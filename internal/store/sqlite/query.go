package sqlite

import (
	"context"
	"strings"

	"github.com/bgpkit/broker-go/internal/store"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// buildWhere translates a validated Filter into a SQL WHERE clause and its
// bound arguments. It assumes f.Validate() has already been called.
func buildWhere(f broker.Filter, resolvedCollectors []string) (string, []any) {
	var clauses []string
	var args []any

	if f.TsStart != nil {
		clauses = append(clauses, "ts_start >= ?")
		args = append(args, f.TsStart.Unix())
	}
	if f.TsEnd != nil {
		clauses = append(clauses, "ts_start <= ?")
		args = append(args, f.TsEnd.Unix())
	}
	if len(resolvedCollectors) > 0 {
		placeholders := make([]string, len(resolvedCollectors))
		for i, id := range resolvedCollectors {
			placeholders[i] = "?"
			args = append(args, id)
		}
		clauses = append(clauses, "collector_id IN ("+strings.Join(placeholders, ",")+")")
	}
	if f.DataType != "" {
		clauses = append(clauses, "data_type = ?")
		args = append(args, string(f.DataType))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderBy is the canonical BrokerItem total order rendered as SQL: ts_start
// ascending, then data_type ascending ("rib" sorts before "updates"), then
// collector_id ascending.
const orderBy = "ORDER BY ts_start ASC, data_type ASC, collector_id ASC"

// Query runs a validated filter and returns one page of results.
func (s *Store) Query(ctx context.Context, f broker.Filter) (store.QueryResult, error) {
	if err := f.Validate(); err != nil {
		return store.QueryResult{}, err
	}

	where, args := buildWhere(f, f.Collectors)
	total, err := s.countWithWhere(ctx, where, args)
	if err != nil {
		return store.QueryResult{}, err
	}

	offset := (f.Page - 1) * f.PageSize
	sqlQuery := `SELECT collector_id, ts_start, ts_end, data_type, url, rough_size, exact_size FROM items ` +
		where + " " + orderBy + " LIMIT ? OFFSET ?"
	queryArgs := append(append([]any{}, args...), f.PageSize, offset)

	rows, err := s.reader.QueryxContext(ctx, sqlQuery, queryArgs...)
	if err != nil {
		return store.QueryResult{}, broker.NewStoreError("query", err)
	}
	defer rows.Close()

	var items []broker.BrokerItem
	for rows.Next() {
		var r row
		if err := rows.StructScan(&r); err != nil {
			return store.QueryResult{}, broker.NewStoreError("query:scan", err)
		}
		items = append(items, r.toItem())
	}
	if err := rows.Err(); err != nil {
		return store.QueryResult{}, broker.NewStoreError("query:rows", err)
	}

	return store.QueryResult{
		Items:    items,
		Page:     f.Page,
		PageSize: f.PageSize,
		Total:    total,
	}, nil
}

// Count returns the total number of items matching f, ignoring paging.
func (s *Store) Count(ctx context.Context, f broker.Filter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	where, args := buildWhere(f, f.Collectors)
	return s.countWithWhere(ctx, where, args)
}

func (s *Store) countWithWhere(ctx context.Context, where string, args []any) (int64, error) {
	var total int64
	sqlQuery := "SELECT COUNT(*) FROM items " + where
	if err := s.reader.GetContext(ctx, &total, sqlQuery, args...); err != nil {
		return 0, broker.NewStoreError("count", err)
	}
	return total, nil
}
