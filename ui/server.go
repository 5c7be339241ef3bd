// Package ui serves the upload, preview and download pages of the export
// pipeline over HTTP.
package ui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"formexport/app"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// DefaultMaxUpload bounds the size of an uploaded workbook
const DefaultMaxUpload = 50 * 1024 * 1024

// Options configures a Server
type Options struct {
	// MaxUploadBytes bounds uploads; zero means DefaultMaxUpload
	MaxUploadBytes int64
	// SessionTTL expires idle sessions; zero keeps them until exit
	SessionTTL time.Duration
}

// Server represents the web server for the export pipeline
type Server struct {
	router    *gin.Engine
	service   *app.ExportService
	templates *template.Template
	options   Options
}

// NewServer creates a server around the export service
func NewServer(service *app.ExportService, options Options) (*Server, error) {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = DefaultMaxUpload
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		templates: templates,
		options:   options,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	sessions := s.router.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.POST("/:id/upload", s.handleUpload)
	sessions.POST("/:id/config", s.handleConfigure)
	sessions.POST("/:id/generate", s.handleGenerate)
	sessions.GET("/:id/files/:name", s.handleDownloadFile)
	sessions.GET("/:id/archive", s.handleDownloadArchive)
	sessions.DELETE("/:id", s.handleReset)
	// HTML forms cannot send DELETE
	sessions.POST("/:id/reset", s.handleReset)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.options.SessionTTL > 0 {
		go s.expireSessions(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(s.options.SessionTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.service.Sessions().Expire(now.Add(-s.options.SessionTTL)); n > 0 {
				log.Printf("[Server] Expired %d idle sessions", n)
			}
		}
	}
}
