package excel

import (
	"bytes"
	stderrors "errors"
	"testing"

	"formexport/internal/errors"
	"formexport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openGrid(t *testing.T, rows [][]any) (*Workbook, *Grid) {
	t.Helper()
	raw := testkit.MustBuild(t, testkit.Sheet{Name: DefaultSheet, Rows: rows})
	wb, err := OpenWorkbook(raw)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	grid, err := wb.Sheet(DefaultSheet)
	require.NoError(t, err)
	return wb, grid
}

func TestOpenWorkbookRejectsGarbage(t *testing.T) {
	_, err := OpenWorkbook([]byte("not a workbook"))
	assert.True(t, errors.HasCode(err, errors.CodeParseError))

	_, err = OpenWorkbook(nil)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))
}

func TestSheetNotFoundListsSheets(t *testing.T) {
	raw := testkit.MustBuild(t, testkit.Sheet{Name: "Sheet1", Rows: [][]any{{"x"}}}, testkit.Sheet{Name: "Data"})
	wb, err := OpenWorkbook(raw)
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.Sheet(DefaultSheet)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSheetNotFound))

	var notFound *errors.SheetNotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, []string{"Sheet1", "Data"}, notFound.Available)
}

func TestGridValuesAndBlank(t *testing.T) {
	_, grid := openGrid(t, [][]any{
		{"h1", "h2"},
		{"value", "   "},
		{nil, 42},
	})

	assert.Equal(t, 3, grid.LastRow())
	v, err := grid.Value(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	blank, err := grid.IsBlank(2, 2)
	require.NoError(t, err)
	assert.True(t, blank, "whitespace-only counts as blank")

	blank, err = grid.IsBlank(3, 1)
	require.NoError(t, err)
	assert.True(t, blank)

	blank, err = grid.IsBlank(3, 2)
	require.NoError(t, err)
	assert.False(t, blank)
}

func TestCopyDownKeepsNumbers(t *testing.T) {
	wb, grid := openGrid(t, [][]any{
		{"h"},
		{1234},
		{nil},
	})

	copied, err := grid.CopyDown(3, 1)
	require.NoError(t, err)
	assert.True(t, copied)

	raw, err := wb.Bytes()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(DefaultSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "1234", v)
	typ, err := f.GetCellType(DefaultSheet, "A3")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)
}

func TestCopyDownFromEmpty(t *testing.T) {
	_, grid := openGrid(t, [][]any{
		{"h", "x"},
		{nil, "y"},
		{"  ", "z"},
	})

	copied, err := grid.CopyDown(3, 1)
	require.NoError(t, err)
	assert.False(t, copied)

	v, err := grid.Value(3, 1)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = grid.CopyDown(1, 1)
	assert.Error(t, err)
}

func TestRemoveRowsFrom(t *testing.T) {
	_, grid := openGrid(t, [][]any{{"h"}, {"a"}, {"b"}, {"c"}, {"d"}})

	removed, err := grid.RemoveRowsFrom(3)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 2, grid.LastRow())

	removed, err = grid.RemoveRowsFrom(10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRemoveRowsFromKeepsSheetInPlace(t *testing.T) {
	raw := testkit.MustBuild(t,
		testkit.Sheet{Name: "Cover", Rows: [][]any{{"cover"}}},
		testkit.Sheet{Name: DefaultSheet, Rows: [][]any{{"h", "n"}, {"a", 7}, {"b", 2.5}, {"tail", 1}, {"tail", 2}}},
		testkit.Sheet{Name: "Notes", Rows: [][]any{{"notes"}}},
	)
	wb, err := OpenWorkbook(raw)
	require.NoError(t, err)
	defer wb.Close()
	grid, err := wb.Sheet(DefaultSheet)
	require.NoError(t, err)

	removed, err := grid.RemoveRowsFrom(4)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, grid.LastRow())

	data, err := wb.Bytes()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Cover", DefaultSheet, "Notes"}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"h", "n"}, {"a", "7"}, {"b", "2.5"}}, rows)

	typ, err := f.GetCellType(DefaultSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeUnset, typ, "numbers are written back as numbers")

	again, err := OpenWorkbook(data)
	require.NoError(t, err)
	defer again.Close()
	grid, err = again.Sheet(DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, 3, grid.LastRow())
}

func TestReadTableBindsHeaders(t *testing.T) {
	raw := testkit.MustBuild(t, testkit.Sheet{Name: "Export", Rows: [][]any{
		{" Form ID ", "Option", "Option", "extra"},
		{7, "first", "second"},
		{nil, nil, nil},
		{8, "third", nil, "ignored"},
	}})

	data, err := ReadTable(raw, "")
	require.NoError(t, err)

	assert.Equal(t, "Export", data.Sheet)
	assert.Equal(t, []string{"Form ID", "Option", "Option", "extra"}, data.Headers)
	require.Len(t, data.Rows, 2, "blank rows are skipped")
	assert.Equal(t, "7", data.Rows[0]["Form ID"])
	assert.Equal(t, "first", data.Rows[0]["Option"], "first duplicate header wins")
	assert.Equal(t, "ignored", data.Rows[1]["extra"])
	assert.Equal(t, []string{"Section"}, data.MissingHeaders([]string{"Form ID", "Section"}))
}

func TestReadTableNamedSheet(t *testing.T) {
	raw := testkit.MustBuild(t, testkit.Sheet{Name: "Sheet1"})

	_, err := ReadTable(raw, DefaultSheet)
	assert.True(t, errors.HasCode(err, errors.CodeSheetNotFound))

	data, err := ReadTable(raw, "Sheet1")
	require.NoError(t, err)
	assert.Empty(t, data.Headers)
	assert.Empty(t, data.Rows)
}

func TestExcelConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultExcelConfig().Validate())
	assert.True(t, errors.HasCode(ExcelConfig{Sheet: "", StartRow: 1}.Validate(), errors.CodeConfigInvalid))
	assert.True(t, errors.HasCode(ExcelConfig{Sheet: "x", StartRow: 0}.Validate(), errors.CodeConfigInvalid))
}

