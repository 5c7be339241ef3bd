// Package mcp exposes the export pipeline as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"formexport/adapters/archive"
	"formexport/app"
	"formexport/domain/form"
	"formexport/internal/report"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName = "formexport"
	// DefaultMaxFileSize bounds the workbooks the tools will read
	DefaultMaxFileSize = 50 * 1024 * 1024
)

// Server represents the MCP server instance
type Server struct {
	service     *app.ExportService
	mcpServer   *server.MCPServer
	maxFileSize int64
}

// NewServer creates a new MCP server instance
func NewServer(service *app.ExportService, version string, maxFileSize int64) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("export service cannot be nil")
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	s := &Server{
		service:     service,
		mcpServer:   server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false)),
		maxFileSize: maxFileSize,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	scanTool := mcp.NewTool(
		"forms_scan",
		mcp.WithDescription("Clean a form/field export workbook and report its structure and the dropdowns with too many options to list"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .xlsx export"),
		),
	)
	s.mcpServer.AddTool(scanTool, s.handleScan)

	outlineTool := mcp.NewTool(
		"forms_outline",
		mcp.WithDescription("Show the forms of an export as markdown, one outline per form"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .xlsx export"),
		),
		mcp.WithString("show_all",
			mcp.Description("Comma-separated field ids whose options are all listed"),
		),
	)
	s.mcpServer.AddTool(outlineTool, s.handleOutline)

	generateTool := mcp.NewTool(
		"forms_generate",
		mcp.WithDescription("Generate one Word document per form of an export and a zip of all of them"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .xlsx export"),
		),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Directory the documents and the zip are written to"),
		),
		mcp.WithString("show_all",
			mcp.Description("Comma-separated field ids whose options are all listed"),
		),
		mcp.WithBoolean("select_all",
			mcp.Description("List the options of every large dropdown"),
		),
		mcp.WithString("base_name",
			mcp.Description("Base name of the zip file"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerate)
}

func (s *Server) readWorkbook(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, more than the %d byte limit", path, info.Size(), s.maxFileSize)
	}
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return nil, fmt.Errorf("%s is not an .xlsx workbook", path)
	}
	return os.ReadFile(path)
}

// fieldConfig builds the show-all choices from the tool arguments
func fieldConfig(args map[string]any, large []form.LargeDropdown) form.FieldConfig {
	selectAll, _ := args["select_all"].(bool)
	cfg := form.ToggleAll(large, selectAll)
	if list, ok := args["show_all"].(string); ok {
		for _, id := range strings.Split(list, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg[id] = true
			}
		}
	}
	return cfg
}

func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := s.readWorkbook(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	preview, err := s.service.Preview(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	md := report.Preview{
		Source:    filepath.Base(path),
		Normalize: preview.Report,
		Scan:      preview.Scan,
		Cutoff:    s.service.Options().Cutoff,
	}.Markdown()
	return mcp.NewToolResultText(md), nil
}

func (s *Server) handleOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := s.readWorkbook(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	preview, err := s.service.Preview(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg := fieldConfig(request.GetArguments(), preview.Scan.LargeDropdowns)
	docs, err := s.service.Documents(ctx, preview.Cleaned, cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outlines := make([]string, 0, len(docs))
	for _, doc := range docs {
		outlines = append(outlines, report.DocumentMarkdown(doc))
	}
	return mcp.NewToolResultText(strings.Join(outlines, "\n---\n\n")), nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outDir, err := request.RequireString("output_dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := s.readWorkbook(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	preview, err := s.service.Preview(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docs, err := s.service.Generate(ctx, preview.Cleaned, fieldConfig(args, preview.Scan.LargeDropdowns))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	baseName, _ := args["base_name"].(string)
	archiveName, bundle, err := s.service.Bundle(docs, baseName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files := append(docs[:len(docs):len(docs)], form.GeneratedDocument{Filename: archiveName, Content: bundle})
	if err := archive.WriteDir(outDir, files); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d documents in %s:\n", len(docs), outDir)
	for _, doc := range docs {
		fmt.Fprintf(&b, "- %s\n", doc.Filename)
	}
	fmt.Fprintf(&b, "Archive: %s\n", archiveName)
	return mcp.NewToolResultText(b.String()), nil
}

// Run serves the tools over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	log.Printf("[MCP] Serving %s tools over stdio", ServerName)
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
