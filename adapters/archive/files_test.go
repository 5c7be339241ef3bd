package archive

import (
	"os"
	"path/filepath"
	"testing"

	"formexport/domain/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := []form.GeneratedDocument{
		{Filename: "1_20240315_A_form.docx", Content: []byte("first")},
		{Filename: "Export_Generated_Forms.zip", Content: []byte("zip")},
	}

	require.NoError(t, WriteDir(dir, files))
	assert.ElementsMatch(t, []string{"1_20240315_A_form.docx", "Export_Generated_Forms.zip"}, dirNames(t, dir))

	data, err := os.ReadFile(filepath.Join(dir, "1_20240315_A_form.docx"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestWriteDirLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	// a directory in the way makes the last rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b.docx"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.docx", "keep"), []byte("x"), 0o644))

	err := WriteDir(dir, []form.GeneratedDocument{
		{Filename: "a.docx", Content: []byte("a")},
		{Filename: "b.docx", Content: []byte("b")},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"b.docx"}, dirNames(t, dir))
}

func TestWriteDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	for _, files := range [][]form.GeneratedDocument{
		{{Filename: ""}},
		{{Filename: "../escape.docx"}},
		{{Filename: "sub/doc.docx"}},
		{{Filename: "x.docx"}, {Filename: "x.docx"}},
	} {
		assert.Error(t, WriteDir(dir, files))
	}
	assert.Empty(t, dirNames(t, dir))
}
