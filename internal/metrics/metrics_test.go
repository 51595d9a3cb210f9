package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeHost(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://data.ris.ripe.net/rrc00/", "data.ris.ripe.net"},
		{"standard https", "https://Archive.RouteViews.org/path", "archive.routeviews.org"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeHost(tc.input); got != tc.expected {
				t.Errorf("SanitizeHost(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	fetchTotal = nil
	fetchBytesTotal = nil
	httpRequestsTotal = nil
	httpRequestDuration = nil
	once = sync.Once{}

	Init()
	Init()

	if fetchTotal == nil || fetchBytesTotal == nil || httpRequestsTotal == nil || httpRequestDuration == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	fetchTotal.WithLabelValues("rrc00", "success").Inc()
	if val := testutil.ToFloat64(fetchTotal.WithLabelValues("rrc00", "success")); val != 1 {
		t.Errorf("Expected fetchTotal to be 1, got %f", val)
	}
}

func FuzzSanitizeHost(f *testing.F) {
	testcases := []string{"http://data.ris.ripe.net", "https://archive.routeviews.org", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeHost(orig)
		if sanitized == "" {
			t.Errorf("SanitizeHost(%q) returned an empty string", orig)
		}
	})
}
