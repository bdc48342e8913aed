// Package pulse holds the domain types for the activity feed: one
// normalized Activity per public action on an external platform, the
// channel metadata the feed is rendered with, and the record kept for
// each regeneration.
package pulse

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrNotFound = errors.New("resource not found")

// Platform tags which upstream service an activity came from. It is
// carried through to the rendered <category> element.
type Platform string

const (
	PlatformGitHub     Platform = "GitHub"
	PlatformMastodon   Platform = "Mastodon"
	PlatformLetterboxd Platform = "Letterboxd"

	// Reserved: the adapter exists but has no implementation yet.
	PlatformNostr Platform = "Nostr"
)

type (
	// Activity is one normalized unit of public action, ready for
	// rendering. Instances live only for the duration of a single
	// regeneration pass.
	Activity struct {
		Title       string
		Description string
		Link        string
		PublishedAt time.Time
		GUID        string
		Platform    Platform

		// Optional artwork (e.g. a film poster), rendered as an enclosure.
		ImageURL string
	}

	// Build records a single regeneration attempt.
	Build struct {
		ID        string
		Trigger   string
		Source    string
		Items     int
		Duration  time.Duration
		Error     string
		CreatedAt time.Time
	}

	// BuildRepo is the persistence surface for the regeneration log.
	BuildRepo interface {
		InsertBuild(ctx context.Context, b Build) (Build, error)
		Build(ctx context.Context, id string) (Build, error)
		Builds(ctx context.Context, limit int) ([]Build, error)
	}
)

// Validate reports whether the activity has everything the feed
// requires. Records failing validation are excluded, not defaulted.
func (a Activity) Validate() error {
	if a.Title == "" {
		return errors.New("missing title")
	}
	if a.Link == "" {
		return errors.New("missing link")
	}
	if a.GUID == "" {
		return errors.New("missing guid")
	}
	if a.PublishedAt.IsZero() {
		return fmt.Errorf("activity %q has no publish time", a.GUID)
	}

	return nil
}

// HashGUID derives a stable identifier from an activity's link, for
// sources that expose no native event id. The same link always hashes
// to the same guid so feed readers can deduplicate across rebuilds.
func HashGUID(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

// Order sorts activities most-recent-first and truncates to limit.
//
// The sort is stable, so activities with equal publish times keep the
// order the aggregator concatenated them in. Comparison is always on
// the parsed instants, never on formatted date strings.
func Order(acts []Activity, limit int) []Activity {
	out := make([]Activity, len(acts))
	copy(out, acts)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
