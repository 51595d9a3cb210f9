package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgpkit/broker-go/pkg/broker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broker.sqlite3")
	st, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func item(collector string, tsStart int64, dt broker.DataType) broker.BrokerItem {
	return broker.BrokerItem{
		CollectorID: collector,
		TsStart:     time.Unix(tsStart, 0).UTC(),
		TsEnd:       time.Unix(tsStart+300, 0).UTC(),
		DataType:    dt,
		URL:         "https://example.org/" + collector,
	}
}

func TestInsertItemsDedup(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	items := []broker.BrokerItem{
		item("rrc00", 1000, broker.DataTypeRIB),
		item("rrc00", 1300, broker.DataTypeUpdates),
	}
	inserted, err := st.InsertItems(ctx, items)
	require.NoError(t, err)
	assert.Len(t, inserted, 2)

	inserted, err = st.InsertItems(ctx, items)
	require.NoError(t, err)
	assert.Empty(t, inserted, "re-inserting the same primary keys should insert nothing new")
}

func TestLatestPerCollectorAndRebuildSnapshot(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.InsertItems(ctx, []broker.BrokerItem{
		item("rrc00", 1000, broker.DataTypeRIB),
		item("rrc00", 2000, broker.DataTypeUpdates),
		item("route-views2", 1500, broker.DataTypeRIB),
	})
	require.NoError(t, err)

	latest, err := st.LatestPerCollector(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(2000, 0).UTC(), latest["rrc00"])
	assert.Equal(t, time.Unix(1500, 0).UTC(), latest["route-views2"])

	require.NoError(t, st.RebuildLatestSnapshot(ctx))

	files, err := st.LatestFiles(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 3) // rrc00/rib, rrc00/updates, route-views2/rib

	rrc00Only, err := st.LatestFiles(ctx, "rrc00")
	require.NoError(t, err)
	assert.Len(t, rrc00Only, 2)
}

func TestQueryPagesAndOrders(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.InsertItems(ctx, []broker.BrokerItem{
		item("rrc00", 3000, broker.DataTypeUpdates),
		item("rrc00", 1000, broker.DataTypeRIB),
		item("rrc00", 2000, broker.DataTypeUpdates),
	})
	require.NoError(t, err)

	result, err := st.Query(ctx, broker.NewFilter().WithPageSize(2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, time.Unix(1000, 0).UTC(), result.Items[0].TsStart)
	assert.Equal(t, time.Unix(2000, 0).UTC(), result.Items[1].TsStart)

	result, err = st.Query(ctx, broker.NewFilter().WithPage(2).WithPageSize(2))
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, time.Unix(3000, 0).UTC(), result.Items[0].TsStart)
}

func TestQueryInvalidFilterRejected(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Query(context.Background(), broker.Filter{Page: 0, PageSize: 10})
	assert.Error(t, err)
}

func TestAppendAndPruneMeta(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	old := broker.Meta{RunID: "old", Timestamp: time.Now().Add(-48 * time.Hour), InsertedCount: 1}
	recent := broker.Meta{RunID: "recent", Timestamp: time.Now(), InsertedCount: 2}
	require.NoError(t, st.AppendMeta(ctx, old))
	require.NoError(t, st.AppendMeta(ctx, recent))

	m, ok, err := st.LatestMeta(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "recent", m.RunID)

	require.NoError(t, st.PruneMeta(ctx, 24*time.Hour))
	m, ok, err = st.LatestMeta(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "recent", m.RunID, "pruning should only remove the row older than retention")
}

func TestLatestMetaEmpty(t *testing.T) {
	st := openTestStore(t)
	_, ok, err := st.LatestMeta(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackupProducesQueryableCopy(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.InsertItems(ctx, []broker.BrokerItem{item("rrc00", 1000, broker.DataTypeRIB)})
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "backup.sqlite3")
	require.NoError(t, st.Backup(ctx, dst))

	copyStore, err := Open(ctx, Config{Path: dst})
	require.NoError(t, err)
	defer copyStore.Close()

	result, err := copyStore.Query(ctx, broker.NewFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Total)
}
