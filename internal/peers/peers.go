// Package peers implements pkg/broker.PeerSource, the read-through
// collaborator for BGP peer information consumed by MostDiverseCollectors
// and the /peers endpoint.
package peers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bgpkit/broker-go/pkg/broker"
)

// Static is a fixture PeerSource backed by an in-memory list, used in
// tests and for local development without a reachable peer-information
// service.
type Static struct {
	Peers []broker.BrokerPeer
}

// NewStatic builds a Static PeerSource over peers.
func NewStatic(peers []broker.BrokerPeer) *Static {
	return &Static{Peers: peers}
}

// Peers returns every fixture peer matching f's collector/ASN/IP/full-feed
// restrictions. f.Project is not applied.
func (s *Static) Peers(_ context.Context, f broker.Filter) ([]broker.BrokerPeer, error) {
	var out []broker.BrokerPeer
	for _, p := range s.Peers {
		if f.PeersCollector != "" && p.Collector != f.PeersCollector {
			continue
		}
		if f.PeersASN != nil && p.ASN != *f.PeersASN {
			continue
		}
		if f.PeersIP != nil && p.IP != f.PeersIP.String() {
			continue
		}
		if f.PeersOnlyFullFeed && !p.IsFullFeed() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// HTTP is a PeerSource backed by a remote peer-information service
// (the role played upstream by bgpkit-commons), fetched over plain JSON
// GET.
type HTTP struct {
	BaseURL string
	client  *http.Client
}

// NewHTTP builds an HTTP PeerSource against baseURL, which must serve a
// JSON array of BrokerPeer at "{baseURL}/peers".
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{BaseURL: baseURL, client: &http.Client{Timeout: 30 * time.Second}}
}

// Peers fetches and filters peers from the remote service.
func (h *HTTP) Peers(ctx context.Context, f broker.Filter) ([]broker.BrokerPeer, error) {
	u, err := url.Parse(h.BaseURL + "/peers")
	if err != nil {
		return nil, broker.NewConfigurationError("peers_base_url", err.Error())
	}
	q := u.Query()
	if f.PeersCollector != "" {
		q.Set("collector", f.PeersCollector)
	}
	if f.PeersASN != nil {
		q.Set("peers_asn", strconv.FormatUint(uint64(*f.PeersASN), 10))
	}
	if f.PeersIP != nil {
		q.Set("peers_ip", f.PeersIP.String())
	}
	if f.PeersOnlyFullFeed {
		q.Set("peers_only_full_feed", "true")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, broker.NewConfigurationError("peers_base_url", err.Error())
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, broker.NewUpstreamError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, broker.NewUpstreamError(resp.StatusCode, resp.Status)
	}

	var out []broker.BrokerPeer
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, broker.NewParseError("peers_response", err)
	}
	return out, nil
}
