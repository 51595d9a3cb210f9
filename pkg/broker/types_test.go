package broker

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBrokerItemLessOrdering(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	items := []BrokerItem{
		{TsStart: t1, DataType: DataTypeUpdates, CollectorID: "rrc00"},
		{TsStart: t0, DataType: DataTypeUpdates, CollectorID: "rrc01"},
		{TsStart: t0, DataType: DataTypeRIB, CollectorID: "rrc01"},
		{TsStart: t0, DataType: DataTypeRIB, CollectorID: "rrc00"},
	}

	want := []BrokerItem{items[3], items[2], items[1], items[0]}

	shuffled := append([]BrokerItem(nil), items...)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	sort.Sort(ByOrder(shuffled))
	assert.Equal(t, want, shuffled)
}

func TestBrokerItemIsRIB(t *testing.T) {
	assert.True(t, BrokerItem{DataType: DataTypeRIB}.IsRIB())
	assert.False(t, BrokerItem{DataType: DataTypeUpdates}.IsRIB())
}

func TestBrokerPeerIsFullFeed(t *testing.T) {
	assert.True(t, BrokerPeer{NumV4Pfxs: 800_000}.IsFullFeed())
	assert.True(t, BrokerPeer{NumV6Pfxs: 150_000}.IsFullFeed())
	assert.False(t, BrokerPeer{NumV4Pfxs: 100, NumV6Pfxs: 100}.IsFullFeed())
}

func TestSnapshotFilesString(t *testing.T) {
	sf := SnapshotFiles{
		CollectorID: "rrc00",
		RibURL:      "https://x/bview.gz",
		UpdatesURLs: []string{"https://x/u1.gz", "https://x/u2.gz"},
	}
	s := sf.String()
	assert.Contains(t, s, "rrc00")
	assert.Contains(t, s, "bview.gz")
}
