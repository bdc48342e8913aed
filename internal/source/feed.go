package source

import (
	"encoding/xml"
	"fmt"
)

// Represents a response from an upstream RSS feed fetch.
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel []struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func parseRSS(body []byte) (rssDocument, error) {
	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return rssDocument{}, fmt.Errorf("error decoding feed: %w", err)
	}

	return doc, nil
}

func (d rssDocument) items() []rssItem {
	var items []rssItem
	for _, channel := range d.Channel {
		items = append(items, channel.Items...)
	}

	return items
}

// validRSS is the relay validator for syndication sources: the body
// must decode as RSS and carry at least one item. An empty but
// well-formed document still fails the chain forward to the next
// candidate, since relays sometimes return stub pages with a 200.
func validRSS(body []byte) error {
	doc, err := parseRSS(body)
	if err != nil {
		return err
	}
	if len(doc.items()) == 0 {
		return fmt.Errorf("feed has no items")
	}

	return nil
}
