// Package http provides the HTTP API for matchd.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/recommend"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

// Recommender runs the recommendation pipeline for a user query.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// IndexInspector exposes vector index statistics for debugging.
type IndexInspector interface {
	Stats(ctx context.Context) (vehicles.IndexStats, error)
}

// Server provides HTTP endpoints for matchd.
type Server struct {
	echo        *echo.Echo
	recommender Recommender
	health      HealthChecker
	inspector   IndexInspector
	logger      *zap.Logger
	config      *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server. The health checker is optional;
// without one /health only reports process liveness.
func NewServer(recommender Recommender, health HealthChecker, logger *zap.Logger, cfg *Config) (*Server, error) {
	if recommender == nil {
		return nil, fmt.Errorf("recommender cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:        e,
		recommender: recommender,
		health:      health,
		logger:      logger,
		config:      cfg,
	}
	if inspector, ok := health.(IndexInspector); ok {
		s.inspector = inspector
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/recommend", s.handleRecommend)

	if s.inspector != nil {
		s.echo.GET("/api/debug/index", s.handleIndexStats)
	}
}

// RecommendRequest is the request body for POST /api/v1/recommend.
type RecommendRequest struct {
	UserDescription string                 `json:"user_description"`
	Constraints     map[string]interface{} `json:"constraints,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth reports liveness, checking the vector store when a
// health checker is wired.
func (s *Server) handleHealth(c echo.Context) error {
	if s.health != nil {
		if err := s.health.Health(c.Request().Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleIndexStats reports the vehicle collection's point count.
func (s *Server) handleIndexStats(c echo.Context) error {
	stats, err := s.inspector.Stats(c.Request().Context())
	if err != nil {
		s.logger.Warn("index stats failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector index unavailable")
	}
	return c.JSON(http.StatusOK, stats)
}

// handleRecommend runs the recommendation pipeline for a user query.
func (s *Server) handleRecommend(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid recommend request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.UserDescription) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_description field is required")
	}

	resp, err := s.recommender.Recommend(c.Request().Context(), recommend.Request{
		UserText:    req.UserDescription,
		Constraints: req.Constraints,
	})
	if err != nil {
		s.logger.Error("recommendation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build recommendations")
	}

	return c.JSON(http.StatusOK, resp)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Echo exposes the underlying router for additional route registration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
