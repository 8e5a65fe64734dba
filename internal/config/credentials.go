package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Placeholder values shipped in the example api_keys.json; treated the
// same as an unset key.
const (
	LastFMPlaceholder  = "YOUR_LASTFM_API_KEY_HERE"
	DiscogsPlaceholder = "YOUR_DISCOGS_TOKEN_HERE"
)

// Credentials holds the optional API credentials for the upstream
// sources. Loaded once at startup and shared read-only across workers.
type Credentials struct {
	LastFMAPIKey        string `json:"lastfm_api_key"`
	DiscogsToken        string `json:"discogs_token"`
	SpotifyClientID     string `json:"spotify_client_id"`
	SpotifyClientSecret string `json:"spotify_client_secret"`
}

// LoadCredentials reads API credentials from a JSON file. A missing
// file is not an error: the run continues with an empty credential set
// (MusicBrainz needs none).
func LoadCredentials(path string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("failed to read API keys file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("invalid JSON in API keys file %s: %w", path, err)
	}

	return creds, nil
}

// HasLastFM reports whether a usable Last.fm API key is configured.
func (c Credentials) HasLastFM() bool {
	return c.LastFMAPIKey != "" && c.LastFMAPIKey != LastFMPlaceholder
}

// HasDiscogs reports whether a usable Discogs token is configured.
func (c Credentials) HasDiscogs() bool {
	return c.DiscogsToken != "" && c.DiscogsToken != DiscogsPlaceholder
}

// HasSpotify reports whether a Spotify client ID/secret pair is configured.
func (c Credentials) HasSpotify() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// AvailableAPIs lists the upstream services usable with the loaded
// credentials. MusicBrainz is always available.
func (c Credentials) AvailableAPIs() []string {
	var apis []string
	if c.HasLastFM() {
		apis = append(apis, "Last.fm")
	}
	if c.HasDiscogs() {
		apis = append(apis, "Discogs")
	}
	if c.HasSpotify() {
		apis = append(apis, "Spotify")
	}
	apis = append(apis, "MusicBrainz")
	return apis
}
