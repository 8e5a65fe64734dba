package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML duration
// strings like "500ms" as well as bare numbers of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := value.Value
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration %q", s)
}

// Config contains the program configuration
type Config struct {
	Directory      string   `yaml:"directory"`
	Workers        int      `yaml:"workers"`
	FileFormat     string   `yaml:"file_format"`
	APIKeysPath    string   `yaml:"api_keys_path"`
	LogFile        string   `yaml:"log_file"`
	Verbose        bool     `yaml:"verbose"`
	DryRun         bool     `yaml:"dry_run"`
	MinInterval    Duration `yaml:"min_request_interval"`
	RequestTimeout Duration `yaml:"request_timeout"`
	MusicBrainzURL string   `yaml:"musicbrainz_url"`
	LastFMURL      string   `yaml:"lastfm_url"`
	DiscogsURL     string   `yaml:"discogs_url"`
	ListenAddr     string   `yaml:"listen_addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		FileFormat:     "mp3",
		APIKeysPath:    "api_keys.json",
		LogFile:        "metadata_enrichment.log",
		MinInterval:    Duration(time.Second),
		RequestTimeout: Duration(10 * time.Second),
		MusicBrainzURL: "https://musicbrainz.org/ws/2",
		LastFMURL:      "http://ws.audioscrobbler.com/2.0/",
		DiscogsURL:     "https://api.discogs.com",
		ListenAddr:     ":8080",
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.Directory = ExpandHome(cfg.Directory)
	cfg.APIKeysPath = ExpandHome(cfg.APIKeysPath)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./enrich.yaml",
		"./enrich.yml",
		filepath.Join(home, ".config", "enrich", "config.yaml"),
		filepath.Join(home, ".config", "enrich", "config.yml"),
		filepath.Join(home, ".enrich.yaml"),
		filepath.Join(home, ".enrich.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Workers > 16 {
		return fmt.Errorf("workers cannot exceed 16 (to avoid hammering upstream APIs), got %d", c.Workers)
	}

	if c.FileFormat == "" {
		return fmt.Errorf("file_format cannot be empty")
	}
	if strings.ContainsAny(c.FileFormat, "./\\*") {
		return fmt.Errorf("file_format must be a bare extension like 'mp3', got %q", c.FileFormat)
	}

	if c.MinInterval < 0 {
		return fmt.Errorf("min_request_interval cannot be negative, got %v", time.Duration(c.MinInterval))
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", time.Duration(c.RequestTimeout))
	}

	return nil
}
