package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animeverse/internal/config"
	"animeverse/internal/conversation"
	"animeverse/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server owns the HTTP router and the session registry.
type Server struct {
	bind     string
	token    string
	engine   *gin.Engine
	registry *Registry
	chat     *conversation.Service
	logger   *slog.Logger

	server *http.Server
}

// NewServer builds the router for cfg. The service answers chat turns and
// recommendation requests for every session.
func NewServer(cfg *config.Config, chat *conversation.Service, logger *slog.Logger) *Server {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	logger = logging.NewComponentLogger(logger, "api")

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		bind:     strings.TrimSpace(cfg.Server.Bind),
		token:    cfg.Server.Token,
		engine:   gin.New(),
		registry: NewRegistry(time.Duration(cfg.Server.SessionIdleMinutes)*time.Minute, cfg.Server.MaxSessions, logger),
		chat:     chat,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestIDMiddleware())
	s.engine.Use(accessLogMiddleware(s.logger))
	s.engine.Use(metricsMiddleware())

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := s.engine.Group("/api", authMiddleware(s.token), bodyLimitMiddleware(maxBodyBytes))
	{
		apiGroup.POST("/parse", s.handleParse)

		sessions := apiGroup.Group("/sessions")
		{
			sessions.POST("", s.handleCreateSession)
			sessions.GET("/:id", s.handleGetSession)
			sessions.DELETE("/:id", s.handleDeleteSession)
			sessions.POST("/:id/reset", s.handleResetSession)
			sessions.POST("/:id/messages", s.handleSendMessage)
			sessions.GET("/:id/ws", s.handleWebSocket)
			sessions.POST("/:id/recommendations", s.handleRecommendations)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "route not found"})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Registry returns the session registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: model calls and websocket streams run for minutes.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.registry.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("api server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}
