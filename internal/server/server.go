// Package server serves rendered backdrops and a live particle stream over
// HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/storage"
)

const (
	maxSide   = 1920
	maxFrames = 300
	maxFPS    = 120
)

type Server struct {
	cfg    config.Config
	index  *storage.Index
	logger *log.Logger
	router *gin.Engine
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIndex enables /api/sessions.
func WithIndex(idx *storage.Index) Option {
	return func(s *Server) { s.index = idx }
}

func New(cfg config.Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, logger: log.New(io.Discard)}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/presets", s.listPresets)
	api.GET("/presets/:name", s.getPreset)
	api.GET("/sessions", s.listSessions)

	r.GET("/backdrop.gif", s.backdropGIF)
	r.GET("/backdrop.svg", s.backdropSVG)
	r.GET("/backdrop/stream", s.stream)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
