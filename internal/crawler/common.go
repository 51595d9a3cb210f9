// Package crawler implements the per-project directory crawlers (C3):
// RouteViews and RIPE RIS. Both share the month-listing and directory-entry
// parsing in this file, ported from the upstream projects' HTML directory
// listing conventions (a classic Apache "Index of" page, either table-based
// or <pre>-based).
package crawler

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bgpkit/broker-go/internal/httpfetch"
	"github.com/bgpkit/broker-go/pkg/broker"
)

var (
	sizeTablePattern = regexp.MustCompile(`^\s*([\d.]+)\s*([MKGmkg]?)\s*$`)
	sizeLinePattern  = regexp.MustCompile(`\s+([\d.]+)([MKGmkg]?)\s*$`)
	monthDirPattern  = regexp.MustCompile(`^(\d\d\d\d\.\d\d)/$`)
	anchorHrefPattern = regexp.MustCompile(`<a href="([^"]+)">`)
)

// sizeStrToBytes converts a human size string ("6.4M", "98K", "12") to a
// byte count, or returns ok=false if it does not match the expected
// pattern.
func sizeStrToBytes(s string, pattern *regexp.Regexp) (int64, bool) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	multiplier := int64(1)
	switch strings.ToLower(m[2]) {
	case "k":
		multiplier = 1024
	case "m":
		multiplier = 1024 * 1024
	case "g":
		multiplier = 1024 * 1024 * 1024
	case "":
		multiplier = 1
	}
	return int64(val * float64(multiplier)), true
}

// linkSize is one parsed directory entry: the href and its reported size.
type linkSize struct {
	Link string
	Size int64
}

// extractLinkSize parses an Apache-style directory listing, either
// table-based (RouteViews and older RIPE RIS pages) or <pre>-based (newer
// RIPE RIS pages), and returns every file entry with a parseable size.
// Header/parent-directory rows are skipped.
func extractLinkSize(body string) []linkSize {
	if strings.Contains(body, "<table") || strings.Contains(body, "<TABLE") {
		return extractFromTable(body)
	}
	return extractFromPre(body)
}

// extractFromTable parses table rows with goquery: each <tr> is a proper
// DOM node, so CSS selection finds the entry's anchor and scans its
// sibling <td> cells for the first one that parses as a size.
func extractFromTable(body string) []linkSize {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var out []linkSize
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if strings.Contains(row.Text(), "Parent Directory") {
			return
		}
		anchor := row.Find("a").First()
		link, ok := anchor.Attr("href")
		if !ok || link == "" {
			return
		}
		if anchor.Text() == "Name" {
			return
		}

		var size int64
		var sizeOK bool
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			if sizeOK {
				return
			}
			if size, sizeOK = sizeStrToBytes(cell.Text(), sizeTablePattern); sizeOK {
				return
			}
		})
		if !sizeOK {
			return
		}
		out = append(out, linkSize{Link: link, Size: size})
	})
	return out
}

// extractFromPre scans <pre>-based listings line by line instead of via
// goquery: each line interleaves an anchor with a trailing text node
// (date + size) that isn't itself a DOM element, so CSS selection has
// nothing to select on the size portion and a line-oriented regex scan
// is the more direct approach.
func extractFromPre(body string) []linkSize {
	var out []linkSize
	for _, line := range strings.Split(body, "\n") {
		size, ok := sizeStrToBytes(line, sizeLinePattern)
		if !ok {
			continue
		}
		m := anchorHrefPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, linkSize{Link: m[1], Size: size})
	}
	return out
}

// removeTrailingSlash trims one trailing "/" from s, if present.
func removeTrailingSlash(s string) string {
	return strings.TrimSuffix(s, "/")
}

// crawlMonthsList fetches the collector's root directory listing and
// returns every month directory (YYYY.MM) on or after fromMonth. A nil
// fromMonth (bootstrap) returns every month found.
func crawlMonthsList(ctx context.Context, fetcher *httpfetch.Fetcher, collectorRootURL string, fromMonth *time.Time) ([]time.Time, error) {
	body, err := fetcher.Get(ctx, collectorRootURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, nil
	}

	var rounded time.Time
	if fromMonth != nil {
		rounded = time.Date(fromMonth.Year(), fromMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	var out []time.Time
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := monthDirPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		month, err := time.Parse("2006.01", m[1])
		if err != nil {
			return
		}
		if fromMonth != nil && month.Before(rounded) {
			return
		}
		out = append(out, month)
	})
	return out, nil
}

// items built from a single month's RIBS/UPDATES listing share this
// filename pattern matcher, parameterized by file extension.
func timestampFromFilename(url string, extPattern *regexp.Regexp) (time.Time, bool) {
	m := extPattern.FindStringSubmatch(url)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102.1504", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func isUpdatesFilename(link string) bool {
	return strings.Contains(link, "update")
}

func dataTypeOf(link string) broker.DataType {
	if isUpdatesFilename(link) {
		return broker.DataTypeUpdates
	}
	return broker.DataTypeRIB
}
