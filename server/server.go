// Package server exposes the match pipeline over a small REST API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/ai"
	"github.com/hrygo/talentsense/internal/profile"
	"github.com/hrygo/talentsense/match"
	"github.com/hrygo/talentsense/metrics"
	"github.com/hrygo/talentsense/store"
)

type Server struct {
	e *echo.Echo

	Profile  *profile.Profile
	Store    *store.Store
	Pipeline *match.Pipeline

	embedder ai.EmbeddingService // optional: embeds job text when no vector is supplied
	exporter *metrics.PipelineExporter
}

// NewServer creates the HTTP server and wires the match pipeline to the
// store-backed retriever and persistence sink.
func NewServer(_ context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request", "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	exporter := metrics.NewPipelineExporter(metrics.DefaultConfig())

	s := &Server{
		e:        e,
		Profile:  profile,
		Store:    st,
		Pipeline: match.NewPipeline(st.CandidateRetriever(), st, exporter),
		exporter: exporter,
	}

	if profile.AIEmbeddingAPIKey != "" {
		embedder, err := ai.NewEmbeddingService(ai.NewEmbeddingConfigFromProfile(profile))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create embedding service")
		}
		s.embedder = embedder
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	v1 := e.Group("/api/v1")
	v1.POST("/jobs/:jobID/matches", s.runMatch)
	v1.GET("/jobs/:jobID/matches", s.listMatches)
	v1.POST("/candidates", s.createCandidate)

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.e.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}
