package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"formexport/adapters/docx"
	"formexport/app"
	"formexport/domain/form"
	"formexport/internal/testkit"
	"formexport/ports"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clock := ports.FixedClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	s, err := NewServer(app.NewExportService(app.DefaultExportOptions(), docx.NewRenderer(), clock), "test", 0)
	require.NoError(t, err)
	return s
}

func writeExport(t *testing.T, options int) string {
	t.Helper()
	base := testkit.ExportRow{
		FormDescription: "Occurrence", FormID: "1", Section: "General", Mandatory: "F",
		FieldID: "11", FieldDescription: "Airport", PositionID: "1", FieldType: form.DropdownType,
	}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, os.WriteFile(path, testkit.MustBuildExport(t, testkit.Options(base, options)), 0o644))
	return path
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(nil, "test", 0)
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleScan(context.Background(), call(map[string]interface{}{"path": writeExport(t, 60)}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "# Preview of export.xlsx")
	assert.Contains(t, text, "| 11 ")
	assert.Contains(t, text, "Airport")
}

func TestScanErrors(t *testing.T) {
	s := newTestServer(t)
	csv := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(csv, []byte("a,b"), 0o644))
	garbage := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(garbage, []byte("garbage"), 0o644))

	tests := map[string]map[string]interface{}{
		"missing path": {},
		"missing file": {"path": filepath.Join(t.TempDir(), "none.xlsx")},
		"not xlsx":     {"path": csv},
		"unreadable":   {"path": garbage},
		"directory":    {"path": t.TempDir()},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := s.handleScan(context.Background(), call(args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestOutline(t *testing.T) {
	s := newTestServer(t)
	path := writeExport(t, 60)

	result, err := s.handleOutline(context.Background(), call(map[string]interface{}{"path": path}))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	assert.Contains(t, text, "# Form: Occurrence [1]")
	assert.Contains(t, text, form.SkippedOptionsNote)

	result, err = s.handleOutline(context.Background(), call(map[string]interface{}{"path": path, "show_all": " 11 ,"}))
	require.NoError(t, err)
	text = extractTextFromResult(result)
	assert.Contains(t, text, "- Option 060")
	assert.NotContains(t, text, form.SkippedOptionsNote)
}

func TestGenerate(t *testing.T) {
	s := newTestServer(t)
	out := filepath.Join(t.TempDir(), "out")

	result, err := s.handleGenerate(context.Background(), call(map[string]interface{}{
		"path":       writeExport(t, 60),
		"output_dir": out,
		"select_all": true,
		"base_name":  "Safety",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.Contains(t, extractTextFromResult(result), "Generated 1 documents")

	data, err := os.ReadFile(filepath.Join(out, "1_20240315_Occurrence_form.docx"))
	require.NoError(t, err)
	texts, err := docx.Texts(data)
	require.NoError(t, err)
	assert.Contains(t, texts, "Option 060")

	_, err = os.Stat(filepath.Join(out, "Safety_Generated_Forms.zip"))
	assert.NoError(t, err)
}

func TestGenerateWritesNothingOnFailure(t *testing.T) {
	s := newTestServer(t)
	out := t.TempDir()
	blocker := filepath.Join(out, "Safety_Generated_Forms.zip")
	require.NoError(t, os.Mkdir(blocker, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o644))

	result, err := s.handleGenerate(context.Background(), call(map[string]interface{}{
		"path":       writeExport(t, 3),
		"output_dir": out,
		"base_name":  "Safety",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no document is left beside the failed archive")
	assert.Equal(t, "Safety_Generated_Forms.zip", entries[0].Name())
}

func TestGenerateRequiresOutputDir(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleGenerate(context.Background(), call(map[string]interface{}{"path": writeExport(t, 3)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFieldConfig(t *testing.T) {
	large := []form.LargeDropdown{{FieldID: "1"}, {FieldID: "2"}}
	assert.Equal(t, form.FieldConfig{"1": true, "2": true}, fieldConfig(map[string]any{"select_all": true}, large))
	assert.Equal(t, form.FieldConfig{"1": false, "2": true}, fieldConfig(map[string]any{"show_all": "2"}, large))
	assert.Equal(t, form.FieldConfig{"1": false, "2": false}, fieldConfig(nil, large))
}
