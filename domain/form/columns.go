// Package form holds the data model of a form/field export and of the
// documents generated from it.
package form

// Header names of the export columns. The composer binds columns by these
// names; the normalizer addresses the same columns by position.
const (
	HeaderFormDescription  = "Form Description"
	HeaderFormID           = "Form ID"
	HeaderSection          = "Section"
	HeaderSubsection       = "Subsection Header"
	HeaderMandatory        = "Mandatory"
	HeaderFieldID          = "Field ID"
	HeaderFieldDescription = "Field Description"
	HeaderPositionID       = "Position ID"
	HeaderFieldKey         = "Field Key"
	HeaderFieldType        = "Field Type"
	HeaderOption           = "Option"
	HeaderOptionID         = "Option ID"
	HeaderEccairsAttribute = "Eccairs Attribute"
	HeaderEccairsValueID   = "Eccairs Value ID"
	HeaderEccairsValue     = "Eccairs Value"
)

// 1-based column positions used by the normalizer.
const (
	ColSection          = 3
	ColSubsection       = 4
	ColFieldID          = 6
	ColMarker           = 7
	ColMarkerCompanion  = 8
	ColFieldType        = 10
	ColEccairsValueID   = 14
	ColEccairsValue     = 15
	FillDownFirstColumn = 1
	FillDownLastColumn  = 10
)

// Literal values with meaning to the pipeline.
const (
	MarkerText        = "Bird species"
	DropdownType      = "Dropdown select"
	EmptySubsection   = "(empty subsection)"
	NotApplicable     = "n/a"
	MandatoryFlag     = "T"
	LargeOptionCutoff = 50
)

// ExportLayout is the canonical column order of an iQSMS form/field export.
// Position i+1 in the sheet holds ExportLayout[i].
var ExportLayout = []string{
	HeaderFormDescription,
	HeaderFormID,
	HeaderSection,
	HeaderSubsection,
	HeaderMandatory,
	HeaderFieldID,
	HeaderFieldDescription,
	HeaderPositionID,
	HeaderFieldKey,
	HeaderFieldType,
	HeaderOption,
	HeaderOptionID,
	HeaderEccairsAttribute,
	HeaderEccairsValueID,
	HeaderEccairsValue,
}

// RequiredHeaders must be present for composition.
var RequiredHeaders = []string{
	HeaderFormDescription,
	HeaderFormID,
	HeaderSection,
	HeaderSubsection,
	HeaderPositionID,
	HeaderFieldID,
	HeaderFieldDescription,
	HeaderFieldType,
	HeaderMandatory,
	HeaderOption,
}
