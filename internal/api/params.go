package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/bgpkit/broker-go/pkg/broker"
)

// parseSearchFilter builds a Filter from either a JSON POST body or GET
// query parameters, mirroring the dual query surface documented for the
// search endpoint.
func parseSearchFilter(r *http.Request) (broker.Filter, error) {
	if r.Method == http.MethodPost && r.Header.Get("Content-Type") == "application/json" {
		var body jsonSearchBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return broker.Filter{}, broker.NewConfigurationError("body", "invalid JSON")
		}
		return body.toFilter()
	}
	return parseSearchQuery(r.URL.Query())
}

type jsonSearchBody struct {
	TsStart    string `json:"ts_start"`
	TsEnd      string `json:"ts_end"`
	Collectors string `json:"collectors"`
	Project    string `json:"project"`
	DataType   string `json:"data_type"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

func (b jsonSearchBody) toFilter() (broker.Filter, error) {
	f := broker.NewFilter()
	if b.TsStart != "" {
		ts, err := broker.ParseTimestamp("ts_start", b.TsStart)
		if err != nil {
			return broker.Filter{}, err
		}
		f = f.WithTsStart(ts)
	}
	if b.TsEnd != "" {
		ts, err := broker.ParseTimestamp("ts_end", b.TsEnd)
		if err != nil {
			return broker.Filter{}, err
		}
		f = f.WithTsEnd(ts)
	}
	if b.Collectors != "" {
		f = f.WithCollectors(broker.ParseCollectorsCSV(b.Collectors)...)
	}
	if b.Project != "" {
		f = f.WithProject(b.Project)
	}
	if b.DataType != "" {
		f = f.WithDataType(broker.DataType(b.DataType))
	}
	if b.Page > 0 {
		f = f.WithPage(b.Page)
	}
	if b.PageSize > 0 {
		f = f.WithPageSize(b.PageSize)
	}
	return f, nil
}

func parseSearchQuery(q map[string][]string) (broker.Filter, error) {
	get := func(key string) string {
		if v, ok := q[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	f := broker.NewFilter()
	if v := get("ts_start"); v != "" {
		ts, err := broker.ParseTimestamp("ts_start", v)
		if err != nil {
			return broker.Filter{}, err
		}
		f = f.WithTsStart(ts)
	}
	if v := get("ts_end"); v != "" {
		ts, err := broker.ParseTimestamp("ts_end", v)
		if err != nil {
			return broker.Filter{}, err
		}
		f = f.WithTsEnd(ts)
	}
	if v := get("collectors"); v != "" {
		f = f.WithCollectors(broker.ParseCollectorsCSV(v)...)
	}
	if v := get("project"); v != "" {
		f = f.WithProject(v)
	}
	if v := get("data_type"); v != "" {
		f = f.WithDataType(broker.DataType(v))
	}
	if v := get("page"); v != "" {
		n, err := parseIntParam("page", v)
		if err != nil {
			return broker.Filter{}, err
		}
		f = f.WithPage(n)
	}
	if v := get("page_size"); v != "" {
		n, err := parseIntParam("page_size", v)
		if err != nil {
			return broker.Filter{}, err
		}
		f = f.WithPageSize(n)
	}
	return f, nil
}

// parsePeersFilter builds a Filter from the /peers endpoint's query
// parameters: collector, peers_asn, peers_ip, peers_only_full_feed.
func parsePeersFilter(r *http.Request) (broker.Filter, error) {
	q := r.URL.Query()
	f := broker.NewFilter()

	if v := q.Get("collector"); v != "" {
		f.PeersCollector = v
	}
	if v := q.Get("peers_asn"); v != "" {
		asn, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return broker.Filter{}, broker.NewConfigurationError("peers_asn", "must be an integer")
		}
		asn32 := uint32(asn)
		f.PeersASN = &asn32
	}
	if v := q.Get("peers_ip"); v != "" {
		ip := net.ParseIP(v)
		if ip == nil {
			return broker.Filter{}, broker.NewConfigurationError("peers_ip", "must be a valid IP address")
		}
		f.PeersIP = ip
	}
	if v := q.Get("peers_only_full_feed"); v != "" {
		onlyFullFeed, err := strconv.ParseBool(v)
		if err != nil {
			return broker.Filter{}, broker.NewConfigurationError("peers_only_full_feed", "must be a boolean")
		}
		f.PeersOnlyFullFeed = onlyFullFeed
	}
	return f, nil
}

func parseIntParam(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, broker.NewConfigurationError(field, "must be an integer")
	}
	return n, nil
}
