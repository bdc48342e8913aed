// Package source holds one adapter per upstream platform. Each adapter
// fetches raw data from its service and normalizes it into activities.
//
// Adapters are best-effort: a returned error is diagnostic only, and the
// aggregator treats it exactly like an empty result. No adapter failure
// may prevent the feed from rendering with whatever the others produced.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/jokeeffe/pulse/internal/pulse"
)

// Adapter is the per-platform fetch-and-normalize unit.
type Adapter interface {
	Platform() pulse.Platform
	Fetch(ctx context.Context) ([]pulse.Activity, error)
}

// All upstream calls go through this client so one slow source can't
// stall an aggregation pass indefinitely.
var fetchClient = &http.Client{
	Timeout: time.Second * 10,
}

const userAgent = "pulse-rss/1.0"

// Feed publish dates arrive in a handful of RFC-822 flavors depending
// on the upstream; try them most-specific first.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range pubDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
