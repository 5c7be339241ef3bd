package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"formexport/domain/form"
)

// ExportGeneratorConfig configures the synthetic export generator
type ExportGeneratorConfig struct {
	Forms              int     `json:"forms"`
	SectionsPerForm    int     `json:"sections_per_form"`
	FieldsPerSection   int     `json:"fields_per_section"`
	DropdownRate       float64 `json:"dropdown_rate"`
	LargeDropdownRate  float64 `json:"large_dropdown_rate"`
	UnnamedSubsections float64 `json:"unnamed_subsections"`
	WithMarker         bool    `json:"with_marker"`
	Seed               int64   `json:"seed"`
}

// DefaultExportConfig returns a small export with every feature present
func DefaultExportConfig() ExportGeneratorConfig {
	return ExportGeneratorConfig{
		Forms:              2,
		SectionsPerForm:    3,
		FieldsPerSection:   5,
		DropdownRate:       0.4,
		LargeDropdownRate:  0.2,
		UnnamedSubsections: 0.3,
		WithMarker:         true,
		Seed:               42,
	}
}

// ExportGenerator produces sparse exports the way iQSMS writes them:
// repeated form, section and field values only on the first row of a group.
type ExportGenerator struct {
	config  ExportGeneratorConfig
	rng     *rand.Rand
	codes   []int
	nextID  int
	nextPos int
}

// NewExportGenerator creates a deterministic generator for the seed
func NewExportGenerator(config ExportGeneratorConfig) *ExportGenerator {
	return &ExportGenerator{
		config:  config,
		rng:     rand.New(rand.NewSource(config.Seed)),
		codes:   form.ValidCodes().Sorted(),
		nextID:  50000,
		nextPos: 1,
	}
}

// GenerateRows generates the data rows, without the header
func (g *ExportGenerator) GenerateRows() []ExportRow {
	var rows []ExportRow
	for f := 1; f <= g.config.Forms; f++ {
		rows = append(rows, g.generateForm(f)...)
	}
	if g.config.WithMarker {
		rows = append(rows, g.markerRows()...)
	}
	return rows
}

// Workbook generates rows and writes them as an export workbook
func (g *ExportGenerator) Workbook() ([]byte, error) {
	return BuildExport(g.GenerateRows())
}

func (g *ExportGenerator) generateForm(n int) []ExportRow {
	var rows []ExportRow
	first := true
	for s := 1; s <= g.config.SectionsPerForm; s++ {
		subsection := fmt.Sprintf("Part %d.%d", n, s)
		if g.rng.Float64() < g.config.UnnamedSubsections {
			subsection = ""
		}
		sectionStart := true
		for k := 0; k < g.config.FieldsPerSection; k++ {
			fieldRows := g.generateField()
			if sectionStart {
				fieldRows[0].Section = fmt.Sprintf("Section %d", s)
				fieldRows[0].Subsection = subsection
				sectionStart = false
			}
			if first {
				fieldRows[0].FormDescription = fmt.Sprintf("Sample Report %d", n)
				fieldRows[0].FormID = strconv.Itoa(100 + n)
				first = false
			}
			rows = append(rows, fieldRows...)
		}
	}
	return rows
}

func (g *ExportGenerator) generateField() []ExportRow {
	row := ExportRow{
		Mandatory:  "F",
		PositionID: strconv.Itoa(g.nextPos),
		FieldType:  "Text",
	}
	g.nextPos++
	if g.rng.Float64() < 0.3 {
		row.Mandatory = "T"
	}

	if g.rng.Float64() >= g.config.DropdownRate {
		row.FieldID = strconv.Itoa(g.nextID)
		g.nextID++
		row.FieldDescription = fmt.Sprintf("Free text %s", row.FieldID)
		row.FieldKey = "text_" + row.FieldID
		return []ExportRow{row}
	}

	row.FieldType = form.DropdownType
	row.FieldID = strconv.Itoa(g.codes[g.rng.Intn(len(g.codes))])
	row.FieldDescription = fmt.Sprintf("Choice %s", row.FieldID)
	row.FieldKey = "choice_" + row.FieldID
	row.EccairsAttribute = row.FieldID
	row.EccairsValueID = "1"
	row.EccairsValue = "Unknown"

	count := 3 + g.rng.Intn(8)
	if g.rng.Float64() < g.config.LargeDropdownRate {
		count = form.LargeOptionCutoff + 1 + g.rng.Intn(70)
	}
	rows := Options(row, count)
	for i := 1; i < len(rows); i++ {
		rows[i] = ExportRow{Option: rows[i].Option, OptionID: rows[i].OptionID}
	}
	return rows
}

// markerRows appends the species lookup list that follows the forms in a
// real export. Its Position ID is blank so normalization cuts it off.
func (g *ExportGenerator) markerRows() []ExportRow {
	rows := []ExportRow{{FieldDescription: form.MarkerText, FieldType: form.DropdownType}}
	for _, species := range []string{"Gull", "Pigeon", "Starling", "Lapwing"} {
		rows = append(rows, ExportRow{Option: species})
	}
	return rows
}
