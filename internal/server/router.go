// =============================================================================
// Sales Dashboard - HTTP API
// =============================================================================
//
// This module exposes the pipeline and the views over HTTP, replacing the
// interactive dashboard page. Each upload becomes a session-scoped dataset
// held in memory; nothing is persisted.
//
// ROUTES:
//   POST   /api/datasets                      upload a spreadsheet
//   PUT    /api/datasets/:id                  replace a dataset
//   DELETE /api/datasets/:id                  drop a dataset
//   GET    /api/datasets/:id/products         product search (?search=)
//   GET    /api/datasets/:id/customers        customer totals
//   GET    /api/datasets/:id/daily            daily totals
//   GET    /api/datasets/:id/daily/products   daily product breakdown (?date=)
//   GET    /api/datasets/:id/ranking          product ranking
//   GET    /api/datasets/:id/views            every view at once
//   GET    /healthz                           liveness
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/sales-dashboard/internal/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// RouterConfig holds everything the API needs.
type RouterConfig struct {
	Store          *Store
	Pipeline       pipeline.Options
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds the gin engine serving the API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	store := cfg.Store
	if store == nil {
		store = NewStore(0)
	}
	h := NewDatasetHandler(store, cfg.Pipeline, cfg.MaxUploadBytes)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(CORS(cfg.AllowedOrigins))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	{
		api.POST("/datasets", h.Upload)
		api.PUT("/datasets/:id", h.Replace)
		api.DELETE("/datasets/:id", h.Delete)

		api.GET("/datasets/:id/products", h.Products)
		api.GET("/datasets/:id/customers", h.Customers)
		api.GET("/datasets/:id/daily", h.DailyTotals)
		api.GET("/datasets/:id/daily/products", h.DailyProducts)
		api.GET("/datasets/:id/ranking", h.Ranking)
		api.GET("/datasets/:id/views", h.Views)
	}

	return r
}

// Server runs the API until its context is cancelled.
type Server struct {
	Engine *gin.Engine
	log    zerolog.Logger
}

// NewServer creates a Server for cfg.
func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg), log: cfg.Logger}
}

// Run listens on address and shuts down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", address).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
