package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// Some upstreams block direct fetches, so a feed URL can be routed
// through third-party relays. Each template wraps the escaped target
// URL; candidates are tried in priority order and the first one that
// returns a structurally valid body wins.
var defaultRelays = []string{
	"https://api.allorigins.win/raw?url=%s",
	"https://api.codetabs.com/v1/proxy?quest=%s",
	"https://corsproxy.io/?%s",
}

// Relay fetches a URL directly or, failing that, through an ordered
// chain of relay mirrors.
type Relay struct {
	client    *http.Client
	templates []string
}

// NewRelay builds a relay chain from the configured templates, falling
// back to the default mirror list when none are configured.
func NewRelay(templates []string) *Relay {
	if len(templates) == 0 {
		templates = defaultRelays
	}

	return &Relay{
		client:    fetchClient,
		templates: templates,
	}
}

// Fetch tries the target URL and then each relay in order, returning
// the first response body that passes valid. It errors only once every
// candidate is exhausted.
func (r *Relay) Fetch(ctx context.Context, target string, valid func([]byte) error) ([]byte, error) {
	candidates := make([]string, 0, len(r.templates)+1)
	candidates = append(candidates, target)
	for _, tpl := range r.templates {
		candidates = append(candidates, fmt.Sprintf(tpl, url.QueryEscape(target)))
	}

	var lastErr error
	for _, candidate := range candidates {
		body, err := r.get(ctx, candidate)
		if err != nil {
			slog.Debug("relay candidate failed", "url", candidate, "error", err)
			lastErr = err
			continue
		}

		if err := valid(body); err != nil {
			slog.Debug("relay candidate returned invalid body", "url", candidate, "error", err)
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("all candidates exhausted for %s: %w", target, lastErr)
}

// One bounded retry per candidate smooths over transient network blips
// without holding up the rest of the chain.
func (r *Relay) get(ctx context.Context, candidate string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, retry.WithMaxRetries(1, retry.NewFibonacci(500*time.Millisecond)), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := r.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}
