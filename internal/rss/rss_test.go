package rss_test

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jokeeffe/pulse/internal/pulse"
	"github.com/jokeeffe/pulse/internal/rss"
)

var testMeta = pulse.Metadata{
	Title:       "Someone - Recent Activity",
	Description: "Recent activity across GitHub, Mastodon & Letterboxd",
	Link:        "https://example.com",
	Language:    "en-US",
	TTL:         60,
	FeedPath:    "/rss.xml",
}

// Mirror of the rendered shape, for parsing assertions.
type parsedFeed struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		Title         string `xml:"title"`
		Description   string `xml:"description"`
		Link          string `xml:"link"`
		Language      string `xml:"language"`
		LastBuildDate string `xml:"lastBuildDate"`
		PubDate       string `xml:"pubDate"`
		TTL           int    `xml:"ttl"`
		Items         []struct {
			Title       string `xml:"title"`
			Description string `xml:"description"`
			Link        string `xml:"link"`
			GUID        string `xml:"guid"`
			PubDate     string `xml:"pubDate"`
			Category    string `xml:"category"`
			Enclosure   *struct {
				URL string `xml:"url,attr"`
			} `xml:"enclosure"`
		} `xml:"item"`
	} `xml:"channel"`
}

func parse(t *testing.T, body []byte) parsedFeed {
	t.Helper()

	var feed parsedFeed
	require.NoError(t, xml.Unmarshal(body, &feed))

	return feed
}

func TestRender(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	acts := []pulse.Activity{
		{
			Title:       "Starred other/cool-tool",
			Description: "Starred other/cool-tool",
			Link:        "https://github.com/other/cool-tool",
			GUID:        "1005",
			PublishedAt: now.Add(-time.Hour),
			Platform:    pulse.PlatformGitHub,
		},
		{
			Title:       "Watched - Heat, 1995",
			Description: "Watched - Heat, 1995",
			Link:        "https://letterboxd.com/someone/film/heat-1995/",
			GUID:        pulse.HashGUID("https://letterboxd.com/someone/film/heat-1995/"),
			PublishedAt: now.Add(-2 * time.Hour),
			Platform:    pulse.PlatformLetterboxd,
			ImageURL:    "https://a.ltrbxd.com/heat.jpg",
		},
	}

	body, err := rss.Render(testMeta, acts, now)
	require.NoError(t, err)

	feed := parse(t, body)
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, testMeta.Title, feed.Channel.Title)
	assert.Equal(t, "Sat, 01 Mar 2025 12:00:00 GMT", feed.Channel.LastBuildDate)
	assert.Equal(t, feed.Channel.LastBuildDate, feed.Channel.PubDate)
	assert.Equal(t, 60, feed.Channel.TTL)

	require.Len(t, feed.Channel.Items, 2)
	assert.Equal(t, "Starred other/cool-tool", feed.Channel.Items[0].Title)
	assert.Equal(t, "GitHub", feed.Channel.Items[0].Category)
	assert.Equal(t, "Sat, 01 Mar 2025 11:00:00 GMT", feed.Channel.Items[0].PubDate)
	assert.Nil(t, feed.Channel.Items[0].Enclosure)

	require.NotNil(t, feed.Channel.Items[1].Enclosure)
	assert.Equal(t, "https://a.ltrbxd.com/heat.jpg", feed.Channel.Items[1].Enclosure.URL)

	assert.True(t, strings.HasPrefix(string(body), xml.Header))
	assert.Contains(t, string(body), `atom:link href="https://example.com/rss.xml" rel="self" type="application/rss+xml"`)
}

func TestRenderEscapesExactlyOnce(t *testing.T) {
	now := time.Now()
	title := `Hello & <welcome> "friends"`
	acts := []pulse.Activity{{
		Title:       title,
		Description: title,
		Link:        "https://example.com/post",
		GUID:        "g1",
		PublishedAt: now,
		Platform:    pulse.PlatformMastodon,
	}}

	body, err := rss.Render(testMeta, acts, now)
	require.NoError(t, err)

	// The raw bytes are escaped...
	assert.Contains(t, string(body), "Hello &amp; &lt;welcome&gt;")
	assert.NotContains(t, string(body), "&amp;amp;")

	// ...and parsing yields back the original text.
	feed := parse(t, body)
	require.Len(t, feed.Channel.Items, 1)
	assert.Equal(t, title, feed.Channel.Items[0].Title)

	// Channel metadata is escaped too.
	assert.Equal(t, testMeta.Description, feed.Channel.Description)
}

func TestRenderEmptyFeedIsValid(t *testing.T) {
	body, err := rss.Render(testMeta, nil, time.Now())
	require.NoError(t, err)

	feed := parse(t, body)
	assert.Empty(t, feed.Channel.Items)
	assert.Equal(t, testMeta.Title, feed.Channel.Title)
}

func TestRenderIsDeterministic(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	acts := []pulse.Activity{{
		Title:       "Posted on Mastodon",
		Description: "Posted on Mastodon",
		Link:        "https://mastodon.social/@someone/1",
		GUID:        pulse.HashGUID("https://mastodon.social/@someone/1"),
		PublishedAt: now.Add(-time.Minute),
		Platform:    pulse.PlatformMastodon,
	}}

	one, err := rss.Render(testMeta, acts, now)
	require.NoError(t, err)
	two, err := rss.Render(testMeta, acts, now)
	require.NoError(t, err)

	assert.Equal(t, one, two)
}
