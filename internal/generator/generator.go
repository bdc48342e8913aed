// Package generator drives one full regeneration: aggregate, order,
// render, publish, and record the outcome.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jokeeffe/pulse/internal/aggregate"
	"github.com/jokeeffe/pulse/internal/pulse"
	"github.com/jokeeffe/pulse/internal/rss"
)

// Publisher persists a rendered document wholesale.
type Publisher interface {
	Publish(body []byte) error
}

type Generator struct {
	agg   *aggregate.Aggregator
	meta  pulse.Metadata
	limit int
	pub   Publisher
	repo  pulse.BuildRepo
	nowFn func() time.Time

	// Regenerations are serialized: a trigger arriving mid-build waits
	// for the previous publish to finish.
	mu sync.Mutex
}

func New(agg *aggregate.Aggregator, meta pulse.Metadata, limit int, pub Publisher, repo pulse.BuildRepo) *Generator {
	return &Generator{
		agg:   agg,
		meta:  meta,
		limit: limit,
		pub:   pub,
		repo:  repo,
		nowFn: time.Now,
	}
}

// Generate runs one regeneration pass. The trigger and source strings
// are informational only; they never alter what gets rendered.
func (g *Generator) Generate(ctx context.Context, trigger, source string) (pulse.Build, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := g.nowFn()
	build := pulse.Build{
		Trigger: trigger,
		Source:  source,
	}

	acts := pulse.Order(g.agg.Aggregate(ctx), g.limit)
	build.Items = len(acts)

	body, err := rss.Render(g.meta, acts, g.nowFn())
	if err == nil {
		err = g.pub.Publish(body)
	}
	if err != nil {
		err = fmt.Errorf("error regenerating feed: %w", err)
		build.Error = err.Error()
	}

	build.Duration = g.nowFn().Sub(start)
	build = g.record(ctx, build)

	if err != nil {
		return build, err
	}

	slog.Info("feed regenerated",
		"trigger", trigger,
		"items", build.Items,
		"duration", build.Duration,
	)

	return build, nil
}

// The build log is best-effort bookkeeping: a failed insert is logged
// but never fails the regeneration itself.
func (g *Generator) record(ctx context.Context, build pulse.Build) pulse.Build {
	recorded, err := g.repo.InsertBuild(ctx, build)
	if err != nil {
		slog.Warn("error recording build", "error", err)
		return build
	}

	return recorded
}
