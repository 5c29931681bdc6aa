// Package server exposes a tracker over HTTP.
package server

import (
	"context"
	"degreetrack/internal/config"
	"degreetrack/internal/logging"
	"degreetrack/internal/tracker"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP API of one session.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(cfg *config.Config, t *tracker.Tracker, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := NewHandler(t, cfg.Transcript.URL, cfg.GetTranscriptTimeout())

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(logger))
	if len(cfg.Server.AllowedOrigins) > 0 {
		router.Use(CORS(cfg.Server.AllowedOrigins))
	}
	router.Use(Timeout(cfg.GetRequestTimeout()))

	router.GET("/healthz", h.Health)
	router.GET("/state", h.GetState)
	router.POST("/courses", h.AddCourse)
	router.DELETE("/courses/:code", h.RemoveCourse)
	router.POST("/import", h.Import)
	router.GET("/exams", h.ListExams)
	router.POST("/exams/:label", h.CheckExam)
	router.DELETE("/exams/:label", h.UncheckExam)
	router.POST("/move", h.Move)
	router.PUT("/major", h.SetMajor)
	router.POST("/undo", h.Undo)
	router.POST("/reset", h.Reset)
	router.GET("/catalog/:code", h.GetCourse)

	return router
}

// New builds a Server listening on cfg.Server.Listen.
func New(cfg *config.Config, t *tracker.Tracker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Server.Listen,
			Handler:           NewRouter(cfg, t, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logging.API("Listening on %s", s.http.Addr)
		s.logger.Info("listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logging.APIError("Server failed: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	<-errCh
	s.logger.Info("stopped")
	return err
}
