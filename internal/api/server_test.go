package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgpkit/broker-go/internal/catalog"
	"github.com/bgpkit/broker-go/internal/peers"
	"github.com/bgpkit/broker-go/internal/store"
	"github.com/bgpkit/broker-go/pkg/broker"
)

type testStore struct {
	items []broker.BrokerItem
	meta  broker.Meta
}

func (s *testStore) Query(ctx context.Context, f broker.Filter) (store.QueryResult, error) {
	return store.QueryResult{Items: s.items, Page: f.Page, PageSize: f.PageSize, Total: int64(len(s.items))}, nil
}

func (s *testStore) LatestFiles(ctx context.Context, collector string) ([]broker.LatestFile, error) {
	var out []broker.LatestFile
	for _, item := range s.items {
		if collector != "" && item.CollectorID != collector {
			continue
		}
		delay := int64(time.Since(item.TsEnd).Seconds())
		out = append(out, broker.LatestFile{BrokerItem: item, DelaySeconds: delay})
	}
	return out, nil
}

func (s *testStore) LatestMeta(ctx context.Context) (broker.Meta, bool, error) {
	return s.meta, true, nil
}

func newTestServer() *Server {
	now := time.Now().UTC()
	st := &testStore{items: []broker.BrokerItem{
		{TsStart: now, TsEnd: now, CollectorID: "rrc00", DataType: broker.DataTypeRIB, URL: "https://x/rib.gz"},
	}}
	engine := broker.NewEngine(st, catalog.New(), nil)
	return NewServer(engine, Config{})
}

func newTestServerWithPeers(peers broker.PeerSource) *Server {
	now := time.Now().UTC()
	st := &testStore{items: []broker.BrokerItem{
		{TsStart: now, TsEnd: now, CollectorID: "rrc00", DataType: broker.DataTypeRIB, URL: "https://x/rib.gz"},
	}}
	engine := broker.NewEngine(st, catalog.New(), peers)
	return NewServer(engine, Config{})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpointThresholdExceeded(t *testing.T) {
	now := time.Now().UTC()
	st := &testStore{items: []broker.BrokerItem{
		{TsStart: now.Add(-10 * time.Minute), TsEnd: now.Add(-10 * time.Minute), CollectorID: "rrc00", DataType: broker.DataTypeRIB, URL: "https://x/rib.gz"},
	}}
	engine := broker.NewEngine(st, catalog.New(), nil)
	srv := NewServer(engine, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health?max_delay_secs=300", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthEndpointThresholdSatisfied(t *testing.T) {
	now := time.Now().UTC()
	st := &testStore{items: []broker.BrokerItem{
		{TsStart: now.Add(-10 * time.Minute), TsEnd: now.Add(-10 * time.Minute), CollectorID: "rrc00", DataType: broker.DataTypeRIB, URL: "https://x/rib.gz"},
	}}
	engine := broker.NewEngine(st, catalog.New(), nil)
	srv := NewServer(engine, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health?max_delay_secs=900", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpointBadThreshold(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health?max_delay_secs=not-a-number", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointGET(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/search?data_type=rib&page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rib.gz")
}

func TestSearchEndpointBadPage(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/search?page=0", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestEndpointWithoutCollectorListsAll(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/latest", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rib.gz")
}

func TestLatestEndpoint(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/latest?collector=rrc00", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rib.gz")
}

func TestPeersEndpointNoPeerSource(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/peers", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"peers\":null")
}

func TestPeersEndpointFiltersByCollectorAndFullFeed(t *testing.T) {
	src := peers.NewStatic([]broker.BrokerPeer{
		{Collector: "rrc00", ASN: 1, NumV4Pfxs: 800_000},
		{Collector: "rrc00", ASN: 2, NumV4Pfxs: 10},
		{Collector: "rrc01", ASN: 3, NumV4Pfxs: 800_000},
	})
	srv := newTestServerWithPeers(src)

	req := httptest.NewRequest(http.MethodGet, "/peers?collector=rrc00&peers_only_full_feed=true", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"asn\":1")
	assert.NotContains(t, w.Body.String(), "\"asn\":2")
	assert.NotContains(t, w.Body.String(), "\"asn\":3")
}

func TestPeersEndpointBadASN(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/peers?peers_asn=not-a-number", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
