package metadata

// Field is one of the enrichable metadata attributes.
type Field string

const (
	FieldGenre Field = "genre"
	FieldYear  Field = "year"
	FieldMood  Field = "mood"
)

// Track contains the tag fields read from a single audio file.
// Each field may be empty; the record is rebuilt per file per run.
type Track struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   string // 4-digit year, from the date tag
	Mood   string
}

// MissingFields returns the enrichable fields that are empty, in the
// fixed order genre, year, mood. Computed once per file before any
// lookup is attempted.
func (t Track) MissingFields() []Field {
	var missing []Field
	if t.Genre == "" {
		missing = append(missing, FieldGenre)
	}
	if t.Year == "" {
		missing = append(missing, FieldYear)
	}
	if t.Mood == "" {
		missing = append(missing, FieldMood)
	}
	return missing
}

// HasSearchTerms reports whether the track carries the artist and
// title needed to query upstream sources.
func (t Track) HasSearchTerms() bool {
	return t.Artist != "" && t.Title != ""
}

// TagStore is the opaque read/write capability over a file's tags.
// Implementations must not panic on unreadable or unsupported files.
type TagStore interface {
	// Read returns the track's existing tags. An unreadable or
	// unsupported file yields an error; callers treat that as a
	// fully-empty record.
	Read(path string) (Track, error)

	// Write applies the given field updates to the file's tag storage
	// and persists them. Only genre, year and mood are ever written.
	Write(path string, updates map[Field]string) error
}
