package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCodes(t *testing.T) {
	codes := ValidCodes()

	assert.Equal(t, 158, codes.Len())
	for _, code := range []int{10, 11, 12, 431, 9565, 23157, 23159} {
		assert.True(t, codes.Contains(code), "expected %d in set", code)
	}
	for _, code := range []int{0, 13, 16, 23158, -10} {
		assert.False(t, codes.Contains(code), "did not expect %d in set", code)
	}

	sorted := codes.Sorted()
	require.Len(t, sorted, 158)
	assert.Equal(t, 10, sorted[0])
	assert.Equal(t, 23159, sorted[len(sorted)-1])
	assert.IsIncreasing(t, sorted)
}

func TestValidCodesAreIndependentCopies(t *testing.T) {
	a := ValidCodes()
	delete(a.members, 10)

	assert.False(t, a.Contains(10))
	assert.True(t, ValidCodes().Contains(10))
}

func TestEmptyCodes(t *testing.T) {
	var zero CodeSet
	assert.False(t, zero.Contains(10))
	assert.Equal(t, 0, EmptyCodes().Len())
	assert.Empty(t, EmptyCodes().Sorted())
}

func TestExportLayoutMatchesPositions(t *testing.T) {
	require.Len(t, ExportLayout, 15)
	at := func(pos int) string { return ExportLayout[pos-1] }

	assert.Equal(t, HeaderSection, at(ColSection))
	assert.Equal(t, HeaderSubsection, at(ColSubsection))
	assert.Equal(t, HeaderFieldID, at(ColFieldID))
	assert.Equal(t, HeaderFieldDescription, at(ColMarker))
	assert.Equal(t, HeaderPositionID, at(ColMarkerCompanion))
	assert.Equal(t, HeaderFieldType, at(ColFieldType))
	assert.Equal(t, HeaderEccairsValueID, at(ColEccairsValueID))
	assert.Equal(t, HeaderEccairsValue, at(ColEccairsValue))

	for _, h := range RequiredHeaders {
		assert.Contains(t, ExportLayout, h)
	}
}

func TestToggleAll(t *testing.T) {
	dropdowns := []LargeDropdown{
		{FieldID: "100", Description: "Aircraft type", OptionCount: 60},
		{FieldID: "200", Description: "Airport", OptionCount: 300},
	}

	on := ToggleAll(dropdowns, true)
	assert.Equal(t, FieldConfig{"100": true, "200": true}, on)

	off := ToggleAll(dropdowns, false)
	assert.Equal(t, FieldConfig{"100": false, "200": false}, off)

	on["100"] = false
	assert.True(t, ToggleAll(dropdowns, true)["100"], "each call returns a fresh map")
	assert.Empty(t, ToggleAll(nil, true))
}

func TestFieldConfigShowAll(t *testing.T) {
	cfg := FieldConfig{"1": true, "2": false}

	assert.True(t, cfg.ShowAll("1"))
	assert.False(t, cfg.ShowAll("2"))
	assert.False(t, cfg.ShowAll("missing"))

	var nilCfg FieldConfig
	assert.False(t, nilCfg.ShowAll("1"))
}

func TestFieldConfigRestrictAndClone(t *testing.T) {
	cfg := FieldConfig{"1": true, "stale": true}
	restricted := cfg.Restrict([]LargeDropdown{{FieldID: "1"}, {FieldID: "2"}})
	assert.Equal(t, FieldConfig{"1": true}, restricted)

	clone := cfg.Clone()
	clone["1"] = false
	assert.True(t, cfg["1"])
}

func TestFieldLabelAndCount(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{Title: "A", Subsections: []Subsection{
				{Title: "x", Named: true, Fields: []Field{{ID: "1", Description: "Date", Mandatory: true}}},
				{Fields: []Field{{ID: "2", Description: "Remarks"}}},
			}},
			{Title: "B", Subsections: []Subsection{{Fields: []Field{{ID: "3"}}}}},
		},
	}

	assert.Equal(t, 3, doc.FieldCount())
	assert.Equal(t, "Date*", doc.Sections[0].Subsections[0].Fields[0].Label())
	assert.Equal(t, "Remarks", doc.Sections[0].Subsections[1].Fields[0].Label())
}
