package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paaavkata/track-metadata-enrichment/internal/config"
	"github.com/paaavkata/track-metadata-enrichment/internal/ratelimit"
	"github.com/paaavkata/track-metadata-enrichment/internal/source"
)

const sourceName = "discogs"

// Client is a Discogs API client that implements source.Source.
// Without a usable token every lookup is an immediate empty result.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	limiter    *ratelimit.Registry
}

// New creates a new Discogs client.
func New(apiURL, token string, timeout time.Duration, limiter *ratelimit.Registry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		token:      token,
		limiter:    limiter,
	}
}

func (c *Client) Name() string { return sourceName }

// Lookup is a two-step query: search releases for the artist/title,
// then fetch the matched release's full record for year, genres and
// styles.
func (c *Client) Lookup(ctx context.Context, artist, title string) (source.Result, error) {
	if c.token == "" || c.token == config.DiscogsPlaceholder {
		return source.Result{}, nil
	}

	params := url.Values{}
	params.Set("q", source.CleanTerm(artist)+" "+source.CleanTerm(title))
	params.Set("type", "release")
	params.Set("per_page", "1")

	var search searchResponse
	if err := c.getJSON(ctx, c.apiURL+"/database/search?"+params.Encode(), &search); err != nil {
		return source.Result{}, fmt.Errorf("discogs search failed: %w", err)
	}

	if len(search.Results) == 0 {
		return source.Result{}, nil
	}

	var rel releaseResponse
	relURL := c.apiURL + "/releases/" + strconv.Itoa(search.Results[0].ID)
	if err := c.getJSON(ctx, relURL, &rel); err != nil {
		return source.Result{}, fmt.Errorf("discogs release lookup failed: %w", err)
	}

	result := source.Result{
		Genres: rel.Genres,
		Styles: rel.Styles,
	}
	if rel.Year > 0 {
		result.Year = strconv.Itoa(rel.Year)
	}

	return result, nil
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
	req.Header.Set("Authorization", "Discogs token="+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discogs returned %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode discogs response: %w", err)
	}
	return nil
}

// Discogs API response types

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type releaseResponse struct {
	Year   int      `json:"year"`
	Genres []string `json:"genres"`
	Styles []string `json:"styles"`
}
