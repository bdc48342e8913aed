package source

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	whitespace  = regexp.MustCompile(`\s+`)
)

// cleanText turns a blob of feed markup into plain display text: tags
// stripped, entities resolved, whitespace collapsed, and the result
// truncated to maxRunes with an ellipsis when it runs long.
//
// The returned string is unescaped plain text; the renderer escapes it
// exactly once when building the final XML.
func cleanText(s string, maxRunes int) string {
	s = stripPolicy.Sanitize(s)

	// bluemonday re-escapes entities in its output, so resolve them
	// back to plain text.
	s = html.UnescapeString(s)

	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	return truncate(s, maxRunes)
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}
