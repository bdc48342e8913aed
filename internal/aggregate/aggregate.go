// Package aggregate fans out to every source adapter concurrently and
// folds their results into one activity list.
package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jokeeffe/pulse/internal/pulse"
	"github.com/jokeeffe/pulse/internal/source"
)

// Aggregator runs all adapters and concatenates what they return.
// Each adapter's outcome is isolated: an error is logged and treated
// exactly like an empty result, so one dead upstream never empties the
// whole feed.
type Aggregator struct {
	adapters []source.Adapter

	// Recent successful fetches are reused for a short window so rapid
	// successive triggers don't hammer rate-limited upstreams.
	cache  *lru.Cache[pulse.Platform, cachedFetch]
	reuse  time.Duration
	nowFn  func() time.Time
	cacheM sync.Mutex
}

type cachedFetch struct {
	acts      []pulse.Activity
	fetchedAt time.Time
}

// DefaultReuseWindow is how long a successful fetch is served from
// memory before the upstream is asked again.
const DefaultReuseWindow = time.Minute

func New(adapters []source.Adapter, reuse time.Duration) *Aggregator {
	cache, _ := lru.New[pulse.Platform, cachedFetch](len(adapters) + 1)

	return &Aggregator{
		adapters: adapters,
		cache:    cache,
		reuse:    reuse,
		nowFn:    time.Now,
	}
}

// Aggregate fetches from every adapter concurrently and returns the
// concatenation in adapter-declaration order. It never fails: the
// worst case is an empty slice.
func (a *Aggregator) Aggregate(ctx context.Context) []pulse.Activity {
	results := make([][]pulse.Activity, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.fetch(ctx, adapter)
		}()
	}
	wg.Wait()

	var all []pulse.Activity
	for _, acts := range results {
		all = append(all, acts...)
	}

	return all
}

func (a *Aggregator) fetch(ctx context.Context, adapter source.Adapter) []pulse.Activity {
	platform := adapter.Platform()

	if acts, ok := a.cached(platform); ok {
		slog.Debug("reusing recent fetch", "platform", platform, "count", len(acts))
		return acts
	}

	acts, err := adapter.Fetch(ctx)
	if err != nil {
		slog.Warn("source fetch failed", "platform", platform, "error", err)
		return nil
	}

	if len(acts) > 0 {
		a.cacheM.Lock()
		a.cache.Add(platform, cachedFetch{acts: acts, fetchedAt: a.nowFn()})
		a.cacheM.Unlock()
	}

	return acts
}

func (a *Aggregator) cached(platform pulse.Platform) ([]pulse.Activity, bool) {
	if a.reuse <= 0 {
		return nil, false
	}

	a.cacheM.Lock()
	defer a.cacheM.Unlock()

	entry, ok := a.cache.Get(platform)
	if !ok || a.nowFn().Sub(entry.fetchedAt) > a.reuse {
		return nil, false
	}

	return entry.acts, true
}
