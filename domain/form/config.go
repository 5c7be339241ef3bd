package form

// FieldConfig records, per Field ID, whether a dropdown with more than
// LargeOptionCutoff options lists all of them. Missing entries mean "no".
type FieldConfig map[string]bool

// ShowAll reports the choice for a field.
func (c FieldConfig) ShowAll(fieldID string) bool {
	return c[fieldID]
}

// Clone returns an independent copy.
func (c FieldConfig) Clone() FieldConfig {
	out := make(FieldConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// LargeDropdown describes a dropdown whose option list exceeds the cutoff.
type LargeDropdown struct {
	FieldID     string `json:"field_id" yaml:"field_id"`
	Description string `json:"description" yaml:"description"`
	OptionCount int    `json:"option_count" yaml:"option_count"`
}

// ToggleAll returns a fresh configuration with every listed dropdown set to on.
func ToggleAll(dropdowns []LargeDropdown, on bool) FieldConfig {
	cfg := make(FieldConfig, len(dropdowns))
	for _, d := range dropdowns {
		cfg[d.FieldID] = on
	}
	return cfg
}

// Restrict drops entries that do not name one of the given dropdowns.
func (c FieldConfig) Restrict(dropdowns []LargeDropdown) FieldConfig {
	out := make(FieldConfig, len(dropdowns))
	for _, d := range dropdowns {
		if v, ok := c[d.FieldID]; ok {
			out[d.FieldID] = v
		}
	}
	return out
}
