package fieldconfig

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"formexport/domain/form"
	"formexport/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dropdowns = []form.LargeDropdown{
	{FieldID: "200", Description: "Airport", OptionCount: 120},
	{FieldID: "100", Description: "Aircraft", OptionCount: 51},
}

func TestWriteRead(t *testing.T) {
	f := New("export.xlsx", 50, dropdowns, form.FieldConfig{"100": true})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	assert.Contains(t, buf.String(), "field_id: \"200\"")
	assert.Contains(t, buf.String(), "show_all: true")

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, back)
	assert.Equal(t, form.FieldConfig{"200": false, "100": true}, back.FieldConfig())
}

func TestReadHandEdited(t *testing.T) {
	in := `
cutoff: 50
dropdowns:
  - field_id: "7"
    description: Runway
    option_count: 80
    show_all: true
`
	f, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.True(t, f.FieldConfig().ShowAll("7"))
}

func TestReadRejects(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"unknown field": "cutoff: 50\ncolour: red\n",
		"duplicate":     "dropdowns:\n  - field_id: \"1\"\n  - field_id: \"1\"\n",
		"missing id":    "dropdowns:\n  - show_all: true\n",
		"not yaml":      "dropdowns: [\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	f := New("", 50, dropdowns, nil)

	require.NoError(t, Save(path, f))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f, back)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
