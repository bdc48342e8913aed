package source

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jokeeffe/pulse/internal/config"
	"github.com/jokeeffe/pulse/internal/pulse"
)

// Letterboxd adapts an account's watched-films feed into activities.
type Letterboxd struct {
	relay   *Relay
	cfg     config.AccountConfig
	feedURL string
}

func NewLetterboxd(relay *Relay, cfg config.AccountConfig) *Letterboxd {
	return &Letterboxd{
		relay:   relay,
		cfg:     cfg,
		feedURL: fmt.Sprintf("https://letterboxd.com/%s/rss/", cfg.User),
	}
}

func (l *Letterboxd) Platform() pulse.Platform { return pulse.PlatformLetterboxd }

func (l *Letterboxd) Fetch(ctx context.Context) ([]pulse.Activity, error) {
	body, err := l.relay.Fetch(ctx, l.feedURL, validRSS)
	if err != nil {
		return nil, fmt.Errorf("error fetching letterboxd feed: %w", err)
	}

	doc, err := parseRSS(body)
	if err != nil {
		return nil, err
	}

	var acts []pulse.Activity
	for _, item := range doc.items() {
		published, err := parsePubDate(item.PubDate)
		if err != nil {
			slog.Warn("dropping letterboxd entry with bad date", "link", item.Link, "error", err)
			continue
		}

		title := "Watched - " + parseFilmTitle(item.Title)

		act := pulse.Activity{
			Title:       title,
			Description: title,
			Link:        item.Link,
			PublishedAt: published,
			GUID:        pulse.HashGUID(item.Link),
			Platform:    pulse.PlatformLetterboxd,
			ImageURL:    posterURL(item.Description),
		}
		if err := act.Validate(); err != nil {
			slog.Warn("dropping letterboxd entry", "link", item.Link, "error", err)
			continue
		}

		acts = append(acts, act)
	}

	// The source's item order isn't trusted: sort newest-first before
	// applying the entry cap.
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].PublishedAt.After(acts[j].PublishedAt)
	})
	if len(acts) > l.cfg.MaxEntries {
		acts = acts[:l.cfg.MaxEntries]
	}

	return acts, nil
}

var (
	// First ", <4-digit-year>" in a raw entry title.
	filmYear = regexp.MustCompile(`, \d{4}`)
	// Trailing " - <star glyphs>" rating suffix, plus anything after it.
	starSuffix = regexp.MustCompile(`\s*-\s*[★☆½]+.*$`)
)

// parseFilmTitle cleans a raw entry title of the form
// "<Film Title>, <Year> - <stars>". The title is cut just after the
// year, then any rating suffix that remains is stripped.
func parseFilmTitle(raw string) string {
	if loc := filmYear.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[1]]
	}
	raw = starSuffix.ReplaceAllString(raw, "")

	return strings.TrimSpace(raw)
}

// posterURL pulls the film poster out of the entry's description
// markup, if there is one.
func posterURL(description string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img").First().Attr("src")
	return src
}
