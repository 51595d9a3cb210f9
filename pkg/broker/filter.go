package broker

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/bgpkit/broker-go/internal/catalog"
)

const (
	// DefaultPage is the 1-based default page number.
	DefaultPage = 1
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 100
	// MaxPageSize is the largest page_size the engine accepts.
	MaxPageSize = 100000
)

// Filter is the validated form of the query grammar from the search API:
// a time window, a collector set (explicit ∪ project-derived), a data
// type, and pagination. Construct one with NewFilter or the fluent
// With* builder methods, then Validate it (validation happens at query
// time, not at construction time, mirroring the upstream SDK).
type Filter struct {
	TsStart    *time.Time
	TsEnd      *time.Time
	Collectors []string // explicit collector_id list
	Project    string   // "" | "riperis" | "route-views"
	DataType   DataType // "" means both
	Page       int
	PageSize   int

	// Peer-listing-only fields, used by the /peers endpoint.
	PeersCollector    string
	PeersASN          *uint32
	PeersIP           net.IP
	PeersOnlyFullFeed bool
}

// NewFilter returns a Filter with the default page and page size, open
// time bounds, and no collector restriction.
func NewFilter() Filter {
	return Filter{Page: DefaultPage, PageSize: DefaultPageSize}
}

// WithTsStart sets the inclusive lower time bound.
func (f Filter) WithTsStart(t time.Time) Filter { f.TsStart = &t; return f }

// WithTsEnd sets the inclusive upper time bound.
func (f Filter) WithTsEnd(t time.Time) Filter { f.TsEnd = &t; return f }

// WithCollectors sets the explicit collector_id list.
func (f Filter) WithCollectors(ids ...string) Filter { f.Collectors = ids; return f }

// WithProject sets the project restriction ("riperis" or "route-views").
func (f Filter) WithProject(project string) Filter { f.Project = project; return f }

// WithDataType restricts results to one data type.
func (f Filter) WithDataType(dt DataType) Filter { f.DataType = dt; return f }

// WithPage sets the 1-based page number.
func (f Filter) WithPage(page int) Filter { f.Page = page; return f }

// WithPageSize sets the page size.
func (f Filter) WithPageSize(size int) Filter { f.PageSize = size; return f }

// ResolvedCollectors returns the effective collector_id set: the explicit
// list unioned with every collector belonging to Project, deduplicated.
// An empty result means "no restriction" (all collectors).
func (f Filter) ResolvedCollectors(cat *catalog.Catalog) []string {
	seen := make(map[string]struct{}, len(f.Collectors))
	var out []string
	for _, id := range f.Collectors {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if f.Project != "" && cat != nil {
		for _, col := range cat.ByProject(normalizeProject(f.Project)) {
			if _, ok := seen[col.Name]; ok {
				continue
			}
			seen[col.Name] = struct{}{}
			out = append(out, col.Name)
		}
	}
	return out
}

// normalizeProject maps the "routeviews" alias onto the canonical
// "route-views" project name; all other values pass through unchanged.
func normalizeProject(project string) string {
	if project == "routeviews" {
		return catalog.ProjectRouteViews
	}
	return project
}

// Validate checks field-level constraints and returns a *ConfigurationError
// naming the first offending field, or nil if the filter is well-formed.
// It does not resolve or validate individual collector names against the
// catalog (unknown collector_ids are accepted and simply match nothing).
func (f Filter) Validate() error {
	if f.Page < 1 {
		return NewConfigurationError("page", "must be >= 1")
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		return NewConfigurationError("page_size", fmt.Sprintf("must be in [1, %d]", MaxPageSize))
	}
	if f.Project != "" {
		np := normalizeProject(f.Project)
		if !catalog.ValidProject(np) {
			return NewConfigurationError("project", "must be one of riperis, route-views, routeviews")
		}
	}
	if f.DataType != "" && f.DataType != DataTypeRIB && f.DataType != DataTypeUpdates {
		return NewConfigurationError("data_type", "must be one of rib, updates")
	}
	if f.TsStart != nil && f.TsEnd != nil && f.TsEnd.Before(*f.TsStart) {
		return NewConfigurationError("ts_end", "must not be before ts_start")
	}
	return nil
}

// timeLayouts are tried in order by ParseTimestamp.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts any of the grammar's supported timestamp forms —
// Unix epoch seconds, RFC3339, YYYY-MM-DD, YYYY/MM/DD, YYYYMMDD, or
// "YYYY-MM-DD HH:MM:SS" — and returns the UTC instant. An unparseable
// value returns a *ConfigurationError naming field.
func ParseTimestamp(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, NewConfigurationError(field, "must not be empty")
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewConfigurationError(field, fmt.Sprintf("unrecognized timestamp format: %q", value))
}

// ParseCollectorsCSV splits a comma-separated collector_id list, trimming
// whitespace and dropping empty entries.
func ParseCollectorsCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
