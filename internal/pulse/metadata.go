package pulse

// Metadata is the channel-level configuration the feed renders with.
// It is loaded once at startup and never mutated afterwards.
type Metadata struct {
	Title       string
	Description string
	Link        string
	Language    string
	Author      string
	Email       string

	// TTL is the advisory refresh interval in minutes.
	TTL int

	// FeedPath is appended to Link to form the self-referencing
	// atom:link, e.g. "/rss.xml".
	FeedPath string
}

// SelfLink is the canonical URL of the rendered document.
func (m Metadata) SelfLink() string {
	return m.Link + m.FeedPath
}
