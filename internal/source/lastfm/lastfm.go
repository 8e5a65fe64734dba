package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paaavkata/track-metadata-enrichment/internal/config"
	"github.com/paaavkata/track-metadata-enrichment/internal/ratelimit"
	"github.com/paaavkata/track-metadata-enrichment/internal/source"
)

const sourceName = "lastfm"

// maxMoodTags caps how many top tags feed the mood classifier.
const maxMoodTags = 5

// Client is a Last.fm API client that implements source.Source.
// Without a usable API key every lookup is an immediate empty result.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	limiter    *ratelimit.Registry
}

// New creates a new Last.fm client.
func New(apiURL, apiKey string, timeout time.Duration, limiter *ratelimit.Registry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		apiKey:     apiKey,
		limiter:    limiter,
	}
}

func (c *Client) Name() string { return sourceName }

// Lookup fetches track info: up to 5 top tags as mood candidates, a
// genre string from the release wiki, and the publication year.
func (c *Client) Lookup(ctx context.Context, artist, title string) (source.Result, error) {
	if c.apiKey == "" || c.apiKey == config.LastFMPlaceholder {
		return source.Result{}, nil
	}

	if err := c.limiter.Wait(ctx, sourceName); err != nil {
		return source.Result{}, err
	}

	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("artist", source.CleanTerm(artist))
	params.Set("track", source.CleanTerm(title))
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return source.Result{}, fmt.Errorf("failed to create lastfm request: %w", err)
	}
	req.Header.Set("User-Agent", source.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return source.Result{}, fmt.Errorf("lastfm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return source.Result{}, fmt.Errorf("lastfm returned %d: %s", resp.StatusCode, body)
	}

	var info trackInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return source.Result{}, fmt.Errorf("failed to decode lastfm response: %w", err)
	}

	if info.Track == nil {
		return source.Result{}, nil
	}

	result := source.Result{}

	for i, tag := range info.Track.TopTags.Tag {
		if i >= maxMoodTags {
			break
		}
		result.MoodTags = append(result.MoodTags, tag.Name)
	}

	if info.Track.Wiki != nil {
		if info.Track.Wiki.Genre != "" {
			result.Genres = []string{info.Track.Wiki.Genre}
		}
		result.Year = source.YearPrefix(info.Track.Wiki.Published)
	}

	return result, nil
}

// Last.fm API response types

type trackInfoResponse struct {
	Track *trackInfo `json:"track"`
}

type trackInfo struct {
	Name    string  `json:"name"`
	TopTags topTags `json:"toptags"`
	Wiki    *wiki   `json:"wiki"`
}

type topTags struct {
	Tag []tag `json:"tag"`
}

type tag struct {
	Name string `json:"name"`
}

type wiki struct {
	Genre     string `json:"genre"`
	Published string `json:"published"`
}
