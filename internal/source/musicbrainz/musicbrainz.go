package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paaavkata/track-metadata-enrichment/internal/ratelimit"
	"github.com/paaavkata/track-metadata-enrichment/internal/source"
)

const sourceName = "musicbrainz"

// Client is a MusicBrainz Web API client that implements source.Source.
// No credential is required; MusicBrainz only asks for a descriptive
// User-Agent and paced requests.
type Client struct {
	httpClient *http.Client
	apiURL     string
	limiter    *ratelimit.Registry
}

// New creates a new MusicBrainz client.
func New(apiURL string, timeout time.Duration, limiter *ratelimit.Registry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		limiter:    limiter,
	}
}

func (c *Client) Name() string { return sourceName }

// Lookup searches the recording index for an exact artist/title match
// and, on a hit, fetches the matched artist's genre tags with a second
// call.
func (c *Client) Lookup(ctx context.Context, artist, title string) (source.Result, error) {
	artist = source.CleanTerm(artist)
	title = source.CleanTerm(title)

	query := fmt.Sprintf(`artist:"%s" AND recording:"%s"`, artist, title)
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", "1")

	var search searchResponse
	if err := c.getJSON(ctx, c.apiURL+"/recording?"+params.Encode(), &search); err != nil {
		return source.Result{}, fmt.Errorf("musicbrainz recording search failed: %w", err)
	}

	if len(search.Recordings) == 0 {
		return source.Result{}, nil
	}
	rec := search.Recordings[0]

	result := source.Result{}
	if year := source.YearPrefix(rec.FirstReleaseDate); year != "" {
		result.Year = year
	} else {
		result.Year = source.YearPrefix(rec.Date)
	}

	if len(rec.ArtistCredit) > 0 {
		if id := rec.ArtistCredit[0].Artist.ID; id != "" {
			// Best effort: a failed genre fetch must not throw away
			// the year the recording search already gave us.
			if genres, err := c.lookupArtistGenres(ctx, id); err == nil {
				result.Genres = genres
			}
		}
	}

	return result, nil
}

// lookupArtistGenres fetches the genre tags attached to an artist.
func (c *Client) lookupArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "genres")

	var artist artistResponse
	if err := c.getJSON(ctx, c.apiURL+"/artist/"+artistID+"?"+params.Encode(), &artist); err != nil {
		return nil, err
	}

	var names []string
	for _, g := range artist.Genres {
		names = append(names, g.Name)
	}
	return names, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx, sourceName); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", source.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("musicbrainz returned %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}
	return nil
}

// MusicBrainz API response types

type searchResponse struct {
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Date             string         `json:"date"`
	FirstReleaseDate string         `json:"first-release-date"`
	ArtistCredit     []artistCredit `json:"artist-credit"`
}

type artistCredit struct {
	Artist artistInfo `json:"artist"`
}

type artistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type artistResponse struct {
	Genres []genre `json:"genres"`
}

type genre struct {
	Name string `json:"name"`
}
