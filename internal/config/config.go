// Package config loads the feed-level configuration file. Process-level
// settings (port, database path, output path) come from the environment;
// everything describing the feed itself lives in YAML so a deployment
// can change accounts and limits without a rebuild.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jokeeffe/pulse/internal/pulse"
)

type (
	// Config is the top-level shape of the YAML file.
	Config struct {
		Feed    FeedConfig    `yaml:"feed"`
		Sources SourcesConfig `yaml:"sources"`
		Relays  []string      `yaml:"relays"`

		// MaxItems caps the rendered feed after sorting.
		MaxItems int `yaml:"maxItems"`
	}

	// FeedConfig carries the channel metadata.
	FeedConfig struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Link        string `yaml:"link"`
		Language    string `yaml:"language"`
		Author      string `yaml:"author"`
		Email       string `yaml:"email"`
		TTLMinutes  int    `yaml:"ttlMinutes"`
		Path        string `yaml:"path"`
	}

	SourcesConfig struct {
		GitHub     GitHubConfig   `yaml:"github"`
		Mastodon   MastodonConfig `yaml:"mastodon"`
		Letterboxd AccountConfig  `yaml:"letterboxd"`
	}

	GitHubConfig struct {
		User string `yaml:"user"`

		// EventCount is how many recent events to request.
		EventCount int `yaml:"eventCount"`
	}

	MastodonConfig struct {
		Instance string `yaml:"instance"`
		User     string `yaml:"user"`
		MaxPosts int    `yaml:"maxPosts"`

		// TruncateAt caps post text length in runes.
		TruncateAt int `yaml:"truncateAt"`
	}

	AccountConfig struct {
		User       string `yaml:"user"`
		MaxEntries int    `yaml:"maxEntries"`
	}
)

// Load reads and validates the YAML config at path, filling defaults
// for anything the file leaves unset.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Feed.Title == "" {
		return Config{}, fmt.Errorf("feed.title is required")
	}
	if cfg.Feed.Link == "" {
		return Config{}, fmt.Errorf("feed.link is required")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxItems == 0 {
		c.MaxItems = 20
	}
	if c.Feed.Language == "" {
		c.Feed.Language = "en-US"
	}
	if c.Feed.TTLMinutes == 0 {
		c.Feed.TTLMinutes = 60
	}
	if c.Feed.Path == "" {
		c.Feed.Path = "/rss.xml"
	}
	if c.Sources.GitHub.EventCount == 0 {
		c.Sources.GitHub.EventCount = 10
	}
	if c.Sources.Mastodon.Instance == "" {
		c.Sources.Mastodon.Instance = "mastodon.social"
	}
	if c.Sources.Mastodon.MaxPosts == 0 {
		c.Sources.Mastodon.MaxPosts = 5
	}
	if c.Sources.Mastodon.TruncateAt == 0 {
		c.Sources.Mastodon.TruncateAt = 280
	}
	if c.Sources.Letterboxd.MaxEntries == 0 {
		c.Sources.Letterboxd.MaxEntries = 5
	}
}

// Metadata converts the feed section into the immutable value the
// renderer takes.
func (c Config) Metadata() pulse.Metadata {
	return pulse.Metadata{
		Title:       c.Feed.Title,
		Description: c.Feed.Description,
		Link:        c.Feed.Link,
		Language:    c.Feed.Language,
		Author:      c.Feed.Author,
		Email:       c.Feed.Email,
		TTL:         c.Feed.TTLMinutes,
		FeedPath:    c.Feed.Path,
	}
}
