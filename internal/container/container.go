// Package container wires configuration into the export service and the
// shells that drive it.
package container

import (
	"fmt"
	"log"

	"formexport/adapters/docx"
	"formexport/adapters/mcp"
	"formexport/app"
	"formexport/internal"
	"formexport/internal/config"
	"formexport/internal/report"
	"formexport/ports"
	"formexport/ui"

	"github.com/gin-gonic/gin"
)

// Version is reported by the MCP server
var Version = "dev"

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Renderer ports.DocumentRenderer
	Clock    ports.Clock
	Service  *app.ExportService
}

// Option adjusts a container before the service is built
type Option func(*Container)

// WithRenderer replaces the Word renderer
func WithRenderer(r ports.DocumentRenderer) Option {
	return func(c *Container) { c.Renderer = r }
}

// WithClock replaces the system clock
func WithClock(clock ports.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// RendererFor returns the renderer for an output format: "docx" or "md"
func RendererFor(format string) (ports.DocumentRenderer, error) {
	switch format {
	case "", "docx":
		return docx.NewRenderer(), nil
	case "md", "markdown":
		return report.NewMarkdownRenderer(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (use docx or md)", format)
}

// New creates a new dependency container
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Renderer: docx.NewRenderer(),
		Clock:    ports.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if level, ok := internal.ParseLogLevel(cfg.LogLevel); ok {
		internal.DefaultLogger.SetLevel(level)
	}

	c.Service = app.NewExportService(app.ExportOptions{
		Sheet:    cfg.Export.Sheet,
		StartRow: cfg.Export.StartRow,
		Cutoff:   cfg.Export.OptionCutoff,
		BaseName: cfg.Export.BaseName,
		MaxJobs:  cfg.Server.MaxJobs,
	}, c.Renderer, c.Clock)
	return c, nil
}

// HTTPServer builds the web shell
func (c *Container) HTTPServer() (*ui.Server, error) {
	gin.SetMode(c.Config.Server.GinMode)
	server, err := ui.NewServer(c.Service, ui.Options{
		MaxUploadBytes: c.Config.Server.MaxUploadBytes,
		SessionTTL:     c.Config.Server.SessionTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}
	log.Printf("[Container] HTTP server ready: %s", c.Config)
	return server, nil
}

// MCPServer builds the stdio tool server
func (c *Container) MCPServer() (*mcp.Server, error) {
	return mcp.NewServer(c.Service, Version, c.Config.Server.MaxUploadBytes)
}
