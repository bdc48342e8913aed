package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jokeeffe/pulse/internal/config"
)

const testConfig = `feed:
  title: Someone - Recent Activity
  description: Recent activity across platforms
  link: https://example.com
  author: Someone
  email: someone@example.com
sources:
  github:
    user: someone
  mastodon:
    user: someone
  letterboxd:
    user: someone
    maxEntries: 8
relays:
  - https://relay.example/raw?url=%s
maxItems: 8
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "Someone - Recent Activity", cfg.Feed.Title)
	assert.Equal(t, 8, cfg.MaxItems)
	assert.Equal(t, 8, cfg.Sources.Letterboxd.MaxEntries)

	// Defaults fill in anything unset.
	assert.Equal(t, "en-US", cfg.Feed.Language)
	assert.Equal(t, 60, cfg.Feed.TTLMinutes)
	assert.Equal(t, "/rss.xml", cfg.Feed.Path)
	assert.Equal(t, 10, cfg.Sources.GitHub.EventCount)
	assert.Equal(t, "mastodon.social", cfg.Sources.Mastodon.Instance)
	assert.Equal(t, 5, cfg.Sources.Mastodon.MaxPosts)
	assert.Equal(t, 280, cfg.Sources.Mastodon.TruncateAt)

	meta := cfg.Metadata()
	assert.Equal(t, "https://example.com/rss.xml", meta.SelfLink())
}

func TestLoadRejectsMissingTitle(t *testing.T) {
	_, err := config.Load(writeConfig(t, "feed:\n  link: https://example.com\n"))
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
