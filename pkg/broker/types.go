// Package broker is the public, CLI-independent SDK surface: data types,
// the query filter builder, the in-process client, and the shortcut
// reconstruction helpers. It has no dependency on cobra, viper, or the
// HTTP server so it can be imported standalone.
package broker

import (
	"encoding/json"
	"time"
)

// DataType distinguishes RIB dumps from incremental update streams.
type DataType string

const (
	// DataTypeRIB is a full routing table dump.
	DataTypeRIB DataType = "rib"
	// DataTypeUpdates is an incremental update stream file.
	DataTypeUpdates DataType = "updates"
)

// BrokerItem describes one archived MRT file.
//
// An array of BrokerItems has a strict total order (see Less): ts_start
// ascending, then data_type (RIB before updates), then collector_id
// ascending.
type BrokerItem struct {
	TsStart     time.Time `json:"ts_start" db:"ts_start"`
	TsEnd       time.Time `json:"ts_end" db:"ts_end"`
	CollectorID string    `json:"collector_id" db:"collector_id"`
	DataType    DataType  `json:"data_type" db:"data_type"`
	URL         string    `json:"url" db:"url"`
	RoughSize   int64     `json:"rough_size" db:"rough_size"`
	ExactSize   int64     `json:"exact_size" db:"exact_size"`
}

// IsRIB reports whether the item is a RIB dump.
func (b BrokerItem) IsRIB() bool { return b.DataType == DataTypeRIB }

// Less implements the canonical BrokerItem ordering: ts_start ascending,
// then RIB before updates, then collector_id ascending.
func (b BrokerItem) Less(other BrokerItem) bool {
	if !b.TsStart.Equal(other.TsStart) {
		return b.TsStart.Before(other.TsStart)
	}
	if b.DataType != other.DataType {
		return b.DataType < other.DataType // "rib" < "updates" lexicographically
	}
	return b.CollectorID < other.CollectorID
}

// ByOrder implements sort.Interface over BrokerItem using Less.
type ByOrder []BrokerItem

func (s ByOrder) Len() int           { return len(s) }
func (s ByOrder) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s ByOrder) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Collector describes a known archive endpoint.
type Collector struct {
	Name        string    `json:"name" db:"name"`
	Project     string    `json:"project" db:"project"`
	DataURL     string    `json:"data_url" db:"data_url"`
	ActivatedOn time.Time `json:"activated_on" db:"activated_on"`
}

// LatestFile is a BrokerItem plus how stale it is relative to now.
type LatestFile struct {
	BrokerItem
	DelaySeconds int64 `json:"delay_seconds" db:"delay_seconds"`
}

// BrokerPeer is one observed BGP peer at a collector, read through from an
// external peer-information source (not produced by the crawler).
type BrokerPeer struct {
	Date              time.Time `json:"date"`
	IP                string    `json:"ip"`
	ASN               uint32    `json:"asn"`
	Collector         string    `json:"collector"`
	NumV4Pfxs         int64     `json:"num_v4_pfxs"`
	NumV6Pfxs         int64     `json:"num_v6_pfxs"`
	NumConnectedASNs  int64     `json:"num_connected_asns"`
}

// IsFullFeed reports whether this peer meets the full-feed thresholds used
// by MostDiverseCollectors.
func (p BrokerPeer) IsFullFeed() bool {
	const minV4 = 700_000
	const minV6 = 100_000
	return p.NumV4Pfxs >= minV4 || p.NumV6Pfxs >= minV6
}

// Meta is one row of update-cycle bookkeeping, used by the doctor/monitoring
// read path and by meta retention pruning.
type Meta struct {
	// RunID is a ULID, sortable by creation time, identifying this update
	// cycle in logs and in the doctor read path.
	RunID                 string    `json:"run_id" db:"run_id"`
	Timestamp             time.Time `json:"timestamp" db:"timestamp"`
	UpdateDurationSeconds float64   `json:"update_duration_seconds" db:"update_duration_seconds"`
	InsertedCount         int64     `json:"inserted_count" db:"inserted_count"`
}

// SnapshotFiles is the reconstructed file set for one collector at a target
// timestamp: the covering RIB and every updates file needed to roll forward
// from it to the target.
type SnapshotFiles struct {
	CollectorID string   `json:"collector_id"`
	RibURL      string   `json:"rib_url"`
	UpdatesURLs []string `json:"updates_urls"`
}

// String renders the snapshot files as a JSON object (the same encoding
// the struct tags give), or "" if encoding fails.
func (s SnapshotFiles) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}
