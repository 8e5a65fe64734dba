package enrich

import "github.com/paaavkata/track-metadata-enrichment/internal/metadata"

// Status classifies what happened to a single file.
type Status string

const (
	// StatusComplete means the file already had genre, year and mood.
	StatusComplete Status = "complete"
	// StatusMissingInfo means fields were missing but the file lacked
	// the artist or title needed to search for them.
	StatusMissingInfo Status = "missing_info"
	// StatusUpdated means at least one missing field was found and
	// written back to the file.
	StatusUpdated Status = "updated"
	// StatusNotFound means the sources were queried but supplied none
	// of the missing fields.
	StatusNotFound Status = "not_found"
	// StatusWriteFailed means fields were found but writing the tags
	// back failed. The lookup work is reported so it isn't silently
	// lost.
	StatusWriteFailed Status = "write_failed"
	// StatusError means the file could not be processed at all.
	StatusError Status = "error"
)

// Outcome is the per-file result of one enrichment attempt.
type Outcome struct {
	Path    string
	Status  Status
	Applied map[metadata.Field]string // fields found this run, keyed by field
	Err     error
}

// Summary tallies outcomes across a run.
type Summary struct {
	Total       int
	Complete    int
	Updated     int
	MissingInfo int
	NotFound    int
	WriteFailed int
	Errors      int
}

// Add folds one outcome into the tally.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusComplete:
		s.Complete++
	case StatusUpdated:
		s.Updated++
	case StatusMissingInfo:
		s.MissingInfo++
	case StatusNotFound:
		s.NotFound++
	case StatusWriteFailed:
		s.WriteFailed++
	case StatusError:
		s.Errors++
	}
}
