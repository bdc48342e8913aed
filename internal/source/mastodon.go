package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jokeeffe/pulse/internal/config"
	"github.com/jokeeffe/pulse/internal/pulse"
)

// Text shown when a post has no displayable text left after cleanup
// (e.g. an image-only post).
const mastodonPlaceholder = "Posted on Mastodon"

// Mastodon adapts an account's public post feed into activities. The
// feed is plain RSS served by the instance, reached through the relay
// chain since some instances refuse non-browser clients.
type Mastodon struct {
	relay   *Relay
	cfg     config.MastodonConfig
	feedURL string
}

func NewMastodon(relay *Relay, cfg config.MastodonConfig) *Mastodon {
	return &Mastodon{
		relay: relay,
		cfg:   cfg,
		// The instance's RSS rendering of the account's public posts.
		feedURL: fmt.Sprintf("https://%s/@%s.rss", cfg.Instance, cfg.User),
	}
}

func (m *Mastodon) Platform() pulse.Platform { return pulse.PlatformMastodon }

func (m *Mastodon) Fetch(ctx context.Context) ([]pulse.Activity, error) {
	body, err := m.relay.Fetch(ctx, m.feedURL, validRSS)
	if err != nil {
		return nil, fmt.Errorf("error fetching mastodon feed: %w", err)
	}

	doc, err := parseRSS(body)
	if err != nil {
		return nil, err
	}

	var acts []pulse.Activity
	for _, item := range doc.items() {
		if len(acts) >= m.cfg.MaxPosts {
			break
		}

		published, err := parsePubDate(item.PubDate)
		if err != nil {
			slog.Warn("dropping mastodon post with bad date", "link", item.Link, "error", err)
			continue
		}

		text := cleanText(item.Description, m.cfg.TruncateAt)
		if text == "" {
			text = mastodonPlaceholder
		}

		act := pulse.Activity{
			Title:       text,
			Description: text,
			Link:        item.Link,
			PublishedAt: published,
			GUID:        pulse.HashGUID(item.Link),
			Platform:    pulse.PlatformMastodon,
		}
		if err := act.Validate(); err != nil {
			slog.Warn("dropping mastodon post", "link", item.Link, "error", err)
			continue
		}

		acts = append(acts, act)
	}

	return acts, nil
}
