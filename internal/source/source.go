// Package source defines the contract for upstream music-information
// services. Each subpackage wraps one service, turning an (artist,
// title) query into a partial metadata record.
package source

import (
	"context"
	"strings"
)

// UserAgent identifies this tool on every upstream request.
const UserAgent = "TrackMetadataEnricher/1.0 (DJ Playlist Tool)"

// Result is the partial metadata one upstream returned. Fields a
// source cannot supply stay zero.
type Result struct {
	Genres   []string // candidate genre names, best first
	Year     string   // 4-digit release year
	MoodTags []string // free-text tags used for mood classification
	Styles   []string // extra genre candidates (Discogs styles)
}

// Empty reports whether the result carries no data at all.
func (r Result) Empty() bool {
	return len(r.Genres) == 0 && r.Year == "" && len(r.MoodTags) == 0 && len(r.Styles) == 0
}

// Genre returns the best genre candidate, or "".
func (r Result) Genre() string {
	if len(r.Genres) > 0 {
		return r.Genres[0]
	}
	return ""
}

// Source is one queryable upstream service. Lookups are best-effort:
// a failed or empty lookup must never abort the file being processed,
// so callers downgrade errors to empty results.
type Source interface {
	Name() string
	Lookup(ctx context.Context, artist, title string) (Result, error)
}

// CleanTerm trims a search term and strips embedded double quotes so
// it can be placed inside a quoted query expression.
func CleanTerm(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// YearPrefix extracts the 4-digit year prefix of a date string, or ""
// when the prefix is not a plain year.
func YearPrefix(date string) string {
	if len(date) < 4 {
		return ""
	}
	prefix := date[:4]
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return prefix
}
