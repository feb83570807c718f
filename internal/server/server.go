// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"hackmatch/internal/domain"
	"hackmatch/internal/service"
)

const defaultK = 5

// Server wraps the echo engine around the pipeline service.
type Server struct {
	echo   *echo.Echo
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, svc: svc, logger: logger}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	api := e.Group("/api/v1")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/search", s.handleSearch)
	api.POST("/backfill", s.handleBackfill)
	return s
}

func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

type analyzeRequest struct {
	URL string `json:"url"`
	K   int    `json:"k,omitempty"`
}

// result is the wire shape of one similarity hit.
type result struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Features       []string `json:"features"`
	HackathonTitle string   `json:"hackathon_title"`
	Score          float64  `json:"score"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return c.JSON(http.StatusBadRequest, errorBody("url is required"))
	}
	k := req.K
	if k <= 0 {
		k = defaultK
	}
	hits, err := s.svc.Analyze(c.Request().Context(), req.URL, k)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toResults(hits))
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorBody("q is required"))
	}
	k := defaultK
	if raw := c.QueryParam("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, errorBody("k must be a positive integer"))
		}
		k = parsed
	}
	hits, err := s.svc.Query(c.Request().Context(), query, k, c.QueryParam("hackathon"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toResults(hits))
}

func (s *Server) handleBackfill(c echo.Context) error {
	force := c.QueryParam("force") == "true"
	summary, err := s.svc.Backfill(c.Request().Context(), service.BackfillOptions{Force: force})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// fail maps pipeline failures onto status codes. Single-item operations
// return a typed failure with a readable reason and no partial body.
func (s *Server) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNoEmbeddableText):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrIndexNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	s.logger.Warn("request failed", "path", c.Path(), "status", status, "error", err)
	return c.JSON(status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func toResults(hits []domain.ScoredProject) []result {
	out := make([]result, 0, len(hits))
	for _, h := range hits {
		features := h.Project.Features
		if features == nil {
			features = []string{}
		}
		out = append(out, result{
			ID:             h.Project.ID,
			Title:          h.Project.Title,
			Summary:        h.Project.Summary,
			Features:       features,
			HackathonTitle: h.Project.HackathonTitle,
			Score:          h.Score,
		})
	}
	return out
}
