package container

import (
	"testing"
	"time"

	"formexport/internal/config"
	"formexport/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Sheet = "Data"
	cfg.Export.OptionCutoff = 10

	c, err := New(cfg, WithClock(ports.FixedClock(time.Unix(0, 0))))
	require.NoError(t, err)

	opts := c.Service.Options()
	assert.Equal(t, "Data", opts.Sheet)
	assert.Equal(t, 10, opts.Cutoff)
	assert.Equal(t, cfg.Server.MaxJobs, opts.MaxJobs)
	assert.Equal(t, "docx", c.Renderer.Extension())
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestRendererFor(t *testing.T) {
	r, err := RendererFor("md")
	require.NoError(t, err)
	assert.Equal(t, "md", r.Extension())

	r, err = RendererFor("")
	require.NoError(t, err)
	assert.Equal(t, "docx", r.Extension())

	_, err = RendererFor("pdf")
	assert.Error(t, err)
}

func TestShells(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	c, err := New(cfg)
	require.NoError(t, err)

	server, err := c.HTTPServer()
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())

	mcpServer, err := c.MCPServer()
	require.NoError(t, err)
	assert.NotNil(t, mcpServer)
}
