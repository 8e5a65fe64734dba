package metadata

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// TagFile implements TagStore using taglib, which handles the
// container-specific tag mapping (ID3v2, Vorbis comments, MP4 atoms).
type TagFile struct{}

// Mood has no constant in the taglib bindings; the key maps to TXXX
// MOOD on ID3v2 and MOOD on Vorbis/MP4.
const moodKey = "MOOD"

func NewTagFile() TagFile {
	return TagFile{}
}

// Read extracts the existing tags from an audio file.
func (TagFile) Read(path string) (Track, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return Track{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	t := Track{
		Title:  firstTag(tags, taglib.Title),
		Artist: firstTag(tags, taglib.Artist),
		Album:  firstTag(tags, taglib.Album),
		Genre:  firstTag(tags, taglib.Genre),
		Mood:   firstTag(tags, moodKey),
	}

	// The date tag may carry a full date; the year is its 4-digit prefix.
	if date := firstTag(tags, taglib.Date); len(date) >= 4 {
		t.Year = date[:4]
	}

	return t, nil
}

// Write applies the found field values to the file's tags and saves.
// Fields not present in updates are left untouched.
func (TagFile) Write(path string, updates map[Field]string) error {
	tags := make(map[string][]string, len(updates))

	if genre, ok := updates[FieldGenre]; ok && genre != "" {
		tags[taglib.Genre] = []string{genre}
	}
	if year, ok := updates[FieldYear]; ok && year != "" {
		tags[taglib.Date] = []string{year}
	}
	if mood, ok := updates[FieldMood]; ok && mood != "" {
		tags[moodKey] = []string{mood}
	}

	if len(tags) == 0 {
		return nil
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
