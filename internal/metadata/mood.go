package metadata

import "strings"

// moodEntry pairs a mood label with the keywords that select it.
// Slice order is precedence: the first entry with any keyword found in
// the text wins.
type moodEntry struct {
	mood     string
	keywords []string
}

var moodKeywords = []moodEntry{
	{"energetic", []string{"energetic", "upbeat", "fast", "dance", "electronic", "house", "techno", "trance", "edm"}},
	{"chill", []string{"chill", "ambient", "relaxed", "downtempo", "lounge", "jazz", "smooth", "calm"}},
	{"emotional", []string{"emotional", "melancholic", "sad", "romantic", "ballad", "deep", "atmospheric"}},
	{"aggressive", []string{"aggressive", "heavy", "metal", "rock", "hardcore", "intense", "powerful"}},
	{"groovy", []string{"groovy", "funk", "soul", "disco", "rhythm", "swing", "bass"}},
}

// genreFallback is consulted against the genre alone when no mood
// keyword matched the combined text.
var genreFallback = []moodEntry{
	{"energetic", []string{"house", "techno", "trance", "edm", "dance"}},
	{"chill", []string{"ambient", "lounge", "jazz", "chillout"}},
	{"aggressive", []string{"metal", "rock", "hardcore"}},
	{"groovy", []string{"funk", "soul", "disco"}},
}

// ClassifyMood maps free-text tags plus an optional genre to a coarse
// mood label. Pure and order-sensitive: categories are tested in
// declared precedence and the first substring match wins. Returns
// "neutral" when nothing matches either table.
func ClassifyMood(tags []string, genre string) string {
	blob := strings.ToLower(strings.Join(append(append([]string{}, tags...), genre), " "))

	for _, entry := range moodKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(blob, kw) {
				return entry.mood
			}
		}
	}

	genreLower := strings.ToLower(genre)
	for _, entry := range genreFallback {
		for _, kw := range entry.keywords {
			if strings.Contains(genreLower, kw) {
				return entry.mood
			}
		}
	}

	return "neutral"
}
