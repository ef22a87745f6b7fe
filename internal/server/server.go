// Package server exposes the path search over HTTP. The surface mirrors
// the public API of the original service: POST /paths runs a search
// between two titles, GET /ok is the health check, GET /metrics serves
// Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wikihop/wikihop/internal/config"
	"github.com/wikihop/wikihop/internal/search"
	"github.com/wikihop/wikihop/internal/store"
)

// PathStore is the persistence surface the server needs: the adjacency
// contract driven by the engine plus title resolution, enrichment, and
// the analytics log.
type PathStore interface {
	search.GraphStore
	ResolvePage(ctx context.Context, title string) (store.Page, bool, error)
	PageTitles(ctx context.Context, ids []int64) (map[int64]string, error)
	RecordSearch(ctx context.Context, rec store.SearchRecord) error
}

// Server serves the wikihop HTTP API.
type Server struct {
	cfg    *config.Config
	store  PathStore
	log    *slog.Logger
	engine *gin.Engine
}

// New builds a Server with all routes and middleware registered.
func New(cfg *config.Config, st PathStore, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:   cfg,
		store: st,
		log:   logger,
	}

	engine := gin.New()
	engine.Use(s.requestLogger())
	engine.Use(corsMiddleware())
	engine.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		s.log.Error("panic while handling request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "An unexpected internal server error occurred. Please try again.",
		})
	}))

	engine.GET("/ok", s.handleHealth)
	engine.POST("/paths", s.handlePaths)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		s.log.Debug("route not found", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": fmt.Sprintf("Method %s not allowed for %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	s.engine = engine
	return s
}

// Handler returns the http.Handler for the server, used by tests and by
// Run.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request with timing.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// corsMiddleware allows cross-origin requests from browser frontends.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().UnixMilli(),
	})
}
