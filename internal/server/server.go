package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/model"
)

const shutdownTimeout = 15 * time.Second

// Submitter queues conversation records for saving without blocking.
type Submitter interface {
	Submit(rec history.Record) bool
}

type discard struct{}

func (discard) Submit(history.Record) bool { return true }

// Server exposes the engine over HTTP.
type Server struct {
	engine   *model.Engine
	registry *model.Registry
	history  history.Store
	saver    Submitter
	auth     *Authenticator
	logger   zerolog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithHistory sets the store read by the history and export routes.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithSaver sets where finished exchanges are submitted.
func WithSaver(saver Submitter) Option {
	return func(s *Server) { s.saver = saver }
}

func WithAuth(a *Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(engine *model.Engine, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		registry: engine.Registry(),
		history:  history.Noop{},
		saver:    discard{},
		auth:     NewAuthenticator("", 0, "", ""),
		logger:   zerolog.Nop(),
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin router with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logging(s.logger), Metrics(), Recovery(s.logger))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/auth/login", s.handleLogin)

	api := r.Group("/", s.auth.Middleware())
	api.GET("/models", s.handleListModels)
	api.POST("/chat", s.handleChat)
	api.POST("/compare", s.handleCompare)
	api.POST("/recommend", s.handleRecommend)
	api.GET("/history", s.handleListHistory)
	api.GET("/history/:id", s.handleGetHistory)
	api.POST("/export", s.handleExport)

	// OpenAI Compatible API
	v1 := r.Group("/v1", s.auth.Middleware())
	v1.GET("/models", s.handleOpenAIListModels)
	v1.POST("/chat/completions", s.handleOpenAIChatCompletions)

	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
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

	s.logger.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
