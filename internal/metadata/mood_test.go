package metadata

import "testing"

func TestClassifyMood(t *testing.T) {
	tests := []struct {
		name  string
		tags  []string
		genre string
		want  string
	}{
		{
			name: "dance tag is energetic",
			tags: []string{"dance", "fun"},
			want: "energetic",
		},
		{
			name: "table order wins over later categories",
			tags: []string{"metal", "energetic"},
			want: "energetic",
		},
		{
			name: "metal alone is aggressive",
			tags: []string{"metal"},
			want: "aggressive",
		},
		{
			name:  "genre feeds the primary table",
			tags:  nil,
			genre: "deep house",
			want:  "energetic",
		},
		{
			name:  "genre-only fallback chill",
			tags:  nil,
			genre: "chillout beats",
			want:  "chill",
		},
		{
			name:  "smooth jazz is chill",
			tags:  nil,
			genre: "smooth jazz",
			want:  "chill",
		},
		{
			name:  "no match anywhere is neutral",
			tags:  nil,
			genre: "obscure polka",
			want:  "neutral",
		},
		{
			name: "empty input is neutral",
			want: "neutral",
		},
		{
			name: "groovy keywords",
			tags: []string{"funk"},
			want: "groovy",
		},
		{
			name: "emotional before aggressive",
			tags: []string{"sad", "heavy"},
			want: "emotional",
		},
		{
			name: "substring match inside longer tag",
			tags: []string{"hard-rock anthem"},
			want: "aggressive",
		},
		{
			name: "case insensitive",
			tags: []string{"TECHNO"},
			want: "energetic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyMood(tt.tags, tt.genre)
			if got != tt.want {
				t.Errorf("ClassifyMood(%v, %q) = %q, want %q", tt.tags, tt.genre, got, tt.want)
			}
		})
	}
}

func TestClassifyMood_Deterministic(t *testing.T) {
	tags := []string{"metal", "energetic"}
	first := ClassifyMood(tags, "")
	for i := 0; i < 100; i++ {
		if got := ClassifyMood(tags, ""); got != first {
			t.Fatalf("classification not deterministic: got %q then %q", first, got)
		}
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  []Field
	}{
		{
			name:  "all empty",
			track: Track{},
			want:  []Field{FieldGenre, FieldYear, FieldMood},
		},
		{
			name:  "all present",
			track: Track{Genre: "House", Year: "1997", Mood: "energetic"},
			want:  nil,
		},
		{
			name:  "mood only",
			track: Track{Genre: "House", Year: "1997"},
			want:  []Field{FieldMood},
		},
		{
			name:  "genre and year",
			track: Track{Mood: "chill"},
			want:  []Field{FieldGenre, FieldYear},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.track.MissingFields()
			if len(got) != len(tt.want) {
				t.Fatalf("MissingFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MissingFields()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHasSearchTerms(t *testing.T) {
	if (Track{Artist: "Daft Punk"}).HasSearchTerms() {
		t.Error("missing title should fail")
	}
	if (Track{Title: "Get Lucky"}).HasSearchTerms() {
		t.Error("missing artist should fail")
	}
	if !(Track{Artist: "Daft Punk", Title: "Get Lucky"}).HasSearchTerms() {
		t.Error("artist and title present should pass")
	}
}
