// Pulse aggregates one person's public activity from GitHub, Mastodon,
// and Letterboxd, renders it as a single RSS 2.0 feed, and serves it
// alongside an endpoint that regenerates the feed on demand.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	_ "golang.org/x/crypto/x509roots/fallback"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/jokeeffe/pulse/internal/aggregate"
	"github.com/jokeeffe/pulse/internal/config"
	"github.com/jokeeffe/pulse/internal/generator"
	"github.com/jokeeffe/pulse/internal/migrations"
	"github.com/jokeeffe/pulse/internal/publish"
	"github.com/jokeeffe/pulse/internal/server"
	"github.com/jokeeffe/pulse/internal/source"
	"github.com/jokeeffe/pulse/internal/sqlite"
	"github.com/jokeeffe/pulse/logger"
)

type envConfig struct {
	Port     int    `env:"PORT, default=3000"`
	Database string `env:"DATABASE, required"`

	// Config is the path to the YAML feed configuration.
	Config string `env:"CONFIG, default=pulse.yaml"`

	// Output is where the rendered document is published.
	Output string `env:"OUTPUT, default=rss.xml"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg envConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, env envConfig) error {
	slog.Info("running", "config", env)

	cfg, err := config.Load(env.Config)
	if err != nil {
		return fmt.Errorf("error loading feed config: %w", err)
	}

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_pragma=journal_mode(WAL)", env.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer dbx.Close()

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %w", err)
	}

	repo := sqlite.New(dbx)

	relay := source.NewRelay(cfg.Relays)
	adapters := []source.Adapter{
		source.NewGitHub(nil, cfg.Sources.GitHub),
		source.NewMastodon(relay, cfg.Sources.Mastodon),
		source.NewLetterboxd(relay, cfg.Sources.Letterboxd),
		source.NewNostr(),
	}

	agg := aggregate.New(adapters, aggregate.DefaultReuseWindow)
	pub := publish.NewFile(env.Output)
	gen := generator.New(agg, cfg.Metadata(), cfg.MaxItems, pub, repo)

	s := server.New(server.Config{
		Port:     env.Port,
		FeedPath: cfg.Feed.Path,
	}, gen, pub, repo)

	// Build the document once up front so there's something to serve;
	// upstream hiccups here aren't fatal.
	if _, err := gen.Generate(ctx, "startup", "pulse"); err != nil {
		slog.Warn("initial feed build failed", "error", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the server
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %w", err)
	}

	return nil
}
