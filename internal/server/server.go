// Package server exposes a repository as a local JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/gin-gonic/gin"

	adapter "github.com/aretw0/notebox/pkg/adapters/lifecycle"
	"github.com/aretw0/notebox/pkg/chat"
	"github.com/aretw0/notebox/pkg/core"
)

// DefaultShutdownTimeout bounds the graceful shutdown of Run.
const DefaultShutdownTimeout = 5 * time.Second

// Server serves the repository and a chat session over HTTP.
type Server struct {
	repo    *core.Repository
	session *chat.Session
	logger  *slog.Logger
	engine  *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds the router. A nil chat client disables /api/chat.
func New(repo *core.Repository, client *chat.Client, opts ...Option) *Server {
	s := &Server{
		repo:   repo,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if client != nil {
		s.session = client.NewSession("")
	}
	s.engine = s.routes()
	return s
}

// SetMode sets the gin run mode ("debug", "release" or "test").
func SetMode(mode string) {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	api := r.Group("/api")
	{
		api.Use(AccessLog(s.logger))
		api.Use(Recovery(s.logger))

		api.GET("/health", s.health)

		api.GET("/notes", s.listNotes)
		api.POST("/notes", s.createNote)
		api.GET("/notes/:id", s.getNote)
		api.PUT("/notes/:id", s.updateNote)
		api.DELETE("/notes/:id", s.deleteNote)

		api.GET("/tags", s.listTags)
		api.POST("/tags", s.createTag)

		api.GET("/notebooks", s.listNotebooks)
		api.POST("/notebooks", s.createNotebook)
		api.DELETE("/notebooks/:id", s.deleteNotebook)

		api.POST("/chat", s.sendChat)
		api.GET("/chat", s.chatHistory)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done. When the store reports changes made
// by other writers, the repository is reloaded.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.watchStore(ctx); err != nil {
		s.logger.Warn("store changes will not be picked up", "error", err)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()
	s.logger.Info("api listening", "addr", addr)

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// watchStore reloads the repository on every persisted-collection change.
func (s *Server) watchStore(ctx context.Context) error {
	w, ok := s.repo.Store().(core.Watchable)
	if !ok {
		return nil
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	source := adapter.NewSource(events, core.KeyNotes, core.KeyTags, core.KeyNotebooks)
	if err := source.Start(ctx); err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for e := range source.Events() {
			s.logger.Debug("store changed, reloading", "event", e.String())
			s.repo.Load(ctx)
		}
		return nil
	})
	return nil
}
