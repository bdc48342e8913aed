// Package rss serializes an ordered activity list into an RSS 2.0
// document. Rendering is a pure function of (metadata, activities,
// render time); all escaping happens exactly once, in the encoder.
package rss

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/jokeeffe/pulse/internal/pulse"
)

// RFC 2822 style date with the zone pinned to GMT, the format feed
// readers expect in pubDate.
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

const (
	atomNamespace = "http://www.w3.org/2005/Atom"
	contentType   = "application/rss+xml"
)

type document struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	AtomNS  string   `xml:"xmlns:atom,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string   `xml:"title"`
	Description   string   `xml:"description"`
	Link          string   `xml:"link"`
	Language      string   `xml:"language"`
	LastBuildDate string   `xml:"lastBuildDate"`
	PubDate       string   `xml:"pubDate"`
	TTL           int      `xml:"ttl"`
	AtomLink      atomLink `xml:"atom:link"`
	Items         []item   `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type item struct {
	Title       string     `xml:"title"`
	Description string     `xml:"description"`
	Link        string     `xml:"link"`
	GUID        string     `xml:"guid"`
	PubDate     string     `xml:"pubDate"`
	Category    string     `xml:"category"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

// Render produces the feed document. Zero activities still renders a
// structurally valid channel.
func Render(meta pulse.Metadata, acts []pulse.Activity, now time.Time) ([]byte, error) {
	doc := document{
		Version: "2.0",
		AtomNS:  atomNamespace,
		Channel: channel{
			Title:         meta.Title,
			Description:   meta.Description,
			Link:          meta.Link,
			Language:      meta.Language,
			LastBuildDate: formatDate(now),
			PubDate:       formatDate(now),
			TTL:           meta.TTL,
			AtomLink: atomLink{
				Href: meta.SelfLink(),
				Rel:  "self",
				Type: contentType,
			},
		},
	}

	for _, act := range acts {
		it := item{
			Title:       act.Title,
			Description: act.Description,
			Link:        act.Link,
			GUID:        act.GUID,
			PubDate:     formatDate(act.PublishedAt),
			Category:    string(act.Platform),
		}
		if act.ImageURL != "" {
			it.Enclosure = &enclosure{URL: act.ImageURL, Type: "image/jpeg"}
		}
		doc.Channel.Items = append(doc.Channel.Items, it)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding feed: %w", err)
	}

	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
