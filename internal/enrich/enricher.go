// Package enrich drives the per-file enrichment flow: read the tags,
// work out which fields are missing, query the upstream sources in
// priority order, classify a mood, and write the new fields back.
package enrich

import (
	"context"

	"github.com/paaavkata/track-metadata-enrichment/internal/logger"
	"github.com/paaavkata/track-metadata-enrichment/internal/metadata"
	"github.com/paaavkata/track-metadata-enrichment/internal/source"
)

// Enricher processes one file at a time. Sources are queried in the
// order given; the first source to supply a field wins and later
// sources are only consulted for fields still unresolved.
type Enricher struct {
	Tags    metadata.TagStore
	Sources []source.Source
	Log     *logger.Logger
	DryRun  bool
}

// Process runs the enrichment flow for a single file.
func (e *Enricher) Process(ctx context.Context, path string) Outcome {
	track, err := e.Tags.Read(path)
	if err != nil {
		// An unreadable file is treated as carrying no tags at all.
		e.Log.Warn("Could not read tags from %s: %v", path, err)
		track = metadata.Track{}
	}

	missing := track.MissingFields()
	if len(missing) == 0 {
		e.Log.Debug("%s: all fields present, skipping", path)
		return Outcome{Path: path, Status: StatusComplete}
	}

	if !track.HasSearchTerms() {
		e.Log.Warn("%s: missing %v but has no artist/title to search with", path, missing)
		return Outcome{Path: path, Status: StatusMissingInfo}
	}

	found, moodTags := e.lookup(ctx, track, missing)

	if wants(missing, metadata.FieldMood) {
		// Only data the sources supplied this run feeds the
		// classifier; a genre the file already carried does not.
		genre := found[metadata.FieldGenre]
		if len(moodTags) > 0 || genre != "" {
			found[metadata.FieldMood] = metadata.ClassifyMood(moodTags, genre)
		}
	}

	if len(found) == 0 {
		e.Log.Info("%s: no metadata found for %q by %q", path, track.Title, track.Artist)
		return Outcome{Path: path, Status: StatusNotFound}
	}

	if e.DryRun {
		e.Log.Info("%s: would write %v (dry run)", path, found)
		return Outcome{Path: path, Status: StatusUpdated, Applied: found}
	}

	if err := e.Tags.Write(path, found); err != nil {
		e.Log.Error("%s: found %v but writing tags failed: %v", path, found, err)
		return Outcome{Path: path, Status: StatusWriteFailed, Applied: found, Err: err}
	}

	e.Log.Info("%s: updated %v", path, found)
	return Outcome{Path: path, Status: StatusUpdated, Applied: found}
}

// lookup queries the sources in priority order, keeping the first
// value seen for each missing field. Mood tags are collected from
// every source that supplies them; the mood itself is classified by
// the caller, never fetched.
func (e *Enricher) lookup(ctx context.Context, track metadata.Track, missing []metadata.Field) (map[metadata.Field]string, []string) {
	found := make(map[metadata.Field]string)
	var moodTags []string

	for _, src := range e.Sources {
		if resolved(missing, found, moodTags) {
			break
		}

		result, err := src.Lookup(ctx, track.Artist, track.Title)
		if err != nil {
			// One source failing must not sink the file.
			e.Log.Warn("%s lookup failed for %q by %q: %v", src.Name(), track.Title, track.Artist, err)
			continue
		}
		if result.Empty() {
			e.Log.Debug("%s: nothing for %q by %q", src.Name(), track.Title, track.Artist)
			continue
		}

		if wants(missing, metadata.FieldGenre) {
			if _, ok := found[metadata.FieldGenre]; !ok {
				if g := bestGenre(result); g != "" {
					found[metadata.FieldGenre] = g
					e.Log.Debug("%s supplied genre %q", src.Name(), g)
				}
			}
		}
		if wants(missing, metadata.FieldYear) {
			if _, ok := found[metadata.FieldYear]; !ok && result.Year != "" {
				found[metadata.FieldYear] = result.Year
				e.Log.Debug("%s supplied year %s", src.Name(), result.Year)
			}
		}
		moodTags = append(moodTags, result.MoodTags...)
	}

	return found, moodTags
}

// resolved reports whether further lookups can no longer contribute:
// every missing field except mood is found, and mood (if missing)
// already has tags to classify from.
func resolved(missing []metadata.Field, found map[metadata.Field]string, moodTags []string) bool {
	for _, f := range missing {
		if f == metadata.FieldMood {
			if len(moodTags) == 0 {
				return false
			}
			continue
		}
		if _, ok := found[f]; !ok {
			return false
		}
	}
	return true
}

// bestGenre picks a source's genre candidate, falling back to its
// first style when it lists no genres.
func bestGenre(r source.Result) string {
	if g := r.Genre(); g != "" {
		return g
	}
	if len(r.Styles) > 0 {
		return r.Styles[0]
	}
	return ""
}

func wants(missing []metadata.Field, f metadata.Field) bool {
	for _, m := range missing {
		if m == f {
			return true
		}
	}
	return false
}
