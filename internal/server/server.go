// Package server exposes a session-per-request JSON API over the checklist core.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/session"
)

// Store is the persistence the API needs
type Store interface {
	session.Store
	Ping(ctx context.Context) error
}

// Config holds the API settings
type Config struct {
	Addr            string
	JWTSecret       string
	TokenTTL        time.Duration
	DefaultGoalDays int
	// SessionOptions are applied to every per-request session
	SessionOptions []session.Option
	// Now overrides the token clock
	Now func() time.Time
}

// Server is the HTTP API
type Server struct {
	cfg    Config
	store  Store
	tokens *Tokens
	engine *gin.Engine
}

// New builds the router. It fails when the JWT secret is unusable.
func New(store Store, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultListenAddr
	}
	if cfg.DefaultGoalDays <= 0 {
		cfg.DefaultGoalDays = constants.DefaultGoalDays
	}

	tokens, err := NewTokens(cfg.JWTSecret, cfg.TokenTTL, cfg.Now)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, store: store, tokens: tokens}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) newSession() *session.Session {
	return session.New(s.store, s.cfg.SessionOptions...)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), metricsMiddleware())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.authMiddleware())
	authed.GET("/me", s.handleMe)
	authed.GET("/template", s.handleGetTemplate)
	authed.PUT("/template", s.handlePutTemplate)
	authed.GET("/checklists/:date", s.handleGetChecklist)
	authed.POST("/checklists/:date/toggle", s.handleToggle)
	authed.GET("/streak", s.handleStreak)
	authed.GET("/stats", s.handleStats)
	authed.GET("/logs", s.handleLogs)

	return r
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down API")
		return srv.Shutdown(shutdownCtx)
	}
}
