// Package server exposes the HTTP surface: the regeneration trigger,
// the published feed document, and the build history.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	plserrs "github.com/jokeeffe/pulse/internal/errors"
	"github.com/jokeeffe/pulse/internal/pulse"
	"github.com/jokeeffe/pulse/internal/serverutil"
	"github.com/jokeeffe/pulse/logger"
)

type (
	// Generator regenerates the feed on demand.
	Generator interface {
		Generate(ctx context.Context, trigger, source string) (pulse.Build, error)
	}

	// FeedStore is the read side of the publisher.
	FeedStore interface {
		Path() string
		Published() bool
	}

	Config struct {
		Port int

		// FeedPath is the URL path the document is served at.
		FeedPath string
	}

	Server struct {
		http.Server

		gen  Generator
		feed FeedStore
		repo pulse.BuildRepo
	}
)

func New(cfg Config, gen Generator, feed FeedStore, repo pulse.BuildRepo) *Server {
	s := &Server{
		gen:  gen,
		feed: feed,
		repo: repo,
	}

	r := serverutil.ErrRouter{Router: mux.NewRouter()}
	r.HandleFuncE("/update-rss", s.handleUpdate).Methods(http.MethodPost)
	r.HandleFuncE(cfg.FeedPath, s.handleFeed).Methods(http.MethodGet)
	r.HandleFuncE("/v1/builds", s.handleBuilds).Methods(http.MethodGet)

	// The trigger is fired from browser contexts, so CORS stays open.
	h := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r.Router)

	s.Server = http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      serverutil.AccessLogMiddleware(h),
	}

	return s
}

type (
	// UpdateRequest is the trigger payload. Its fields are
	// informational only and never change what gets rendered.
	UpdateRequest struct {
		Timestamp int64  `json:"timestamp"`
		Trigger   string `json:"trigger"`
		Source    string `json:"source"`
	}

	UpdateResponse struct {
		Success   bool   `json:"success"`
		Timestamp string `json:"timestamp"`
	}
)

func (u UpdateRequest) Validate() error {
	if u.Trigger == "" {
		return errors.New("trigger is required")
	}

	return nil
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[UpdateRequest](r.Body)
	if err != nil {
		return plserrs.E(http.StatusBadRequest, err)
	}

	ctx := logger.Ctx(r.Context(),
		slog.String("trigger", body.Trigger),
		slog.String("trigger_source", body.Source),
	)

	if _, err := s.gen.Generate(ctx, body.Trigger, body.Source); err != nil {
		return plserrs.E(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, UpdateResponse{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) error {
	if !s.feed.Published() {
		return plserrs.E(http.StatusNotFound, "feed not generated yet")
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	http.ServeFile(w, r, s.feed.Path())

	return nil
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) error {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return plserrs.E(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	builds, err := s.repo.Builds(r.Context(), limit)
	if err != nil {
		return plserrs.E(err)
	}

	return serverutil.WriteJSON(w, http.StatusOK, buildsResponse{Builds: toAPIBuilds(builds)})
}

type (
	buildsResponse struct {
		Builds []apiBuild `json:"builds"`
	}

	apiBuild struct {
		ID         string `json:"id"`
		Trigger    string `json:"trigger"`
		Source     string `json:"source,omitempty"`
		Items      int    `json:"items"`
		DurationMS int64  `json:"duration_ms"`
		Error      string `json:"error,omitempty"`
		CreatedAt  string `json:"created_at"`
	}
)

func toAPIBuilds(builds []pulse.Build) []apiBuild {
	out := make([]apiBuild, 0, len(builds))
	for _, b := range builds {
		out = append(out, apiBuild{
			ID:         b.ID,
			Trigger:    b.Trigger,
			Source:     b.Source,
			Items:      b.Items,
			DurationMS: b.Duration.Milliseconds(),
			Error:      b.Error,
			CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return out
}
