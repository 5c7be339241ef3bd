package main

import (
	"fmt"

	"formexport/domain/form"

	"github.com/AlecAivazis/survey/v2"
)

// chooseFields asks which large dropdowns list all their options. It is a
// variable so tests can answer without a terminal.
var chooseFields = surveyChooseFields

func dropdownLabel(d form.LargeDropdown) string {
	return fmt.Sprintf("%s (%s, %d options)", d.Description, d.FieldID, d.OptionCount)
}

func surveyChooseFields(large []form.LargeDropdown, current form.FieldConfig, cutoff int) (form.FieldConfig, error) {
	labels := make([]string, len(large))
	var defaults []string
	byLabel := make(map[string]string, len(large))
	for i, d := range large {
		labels[i] = dropdownLabel(d)
		byLabel[labels[i]] = d.FieldID
		if current.ShowAll(d.FieldID) {
			defaults = append(defaults, labels[i])
		}
	}

	prompt := &survey.MultiSelect{
		Message:  fmt.Sprintf("Dropdowns with more than %d options: which should list every option?", cutoff),
		Options:  labels,
		Default:  defaults,
		PageSize: 15,
	}
	var picked []string
	if err := survey.AskOne(prompt, &picked); err != nil {
		return nil, fmt.Errorf("selection aborted: %w", err)
	}

	cfg := form.ToggleAll(large, false)
	for _, label := range picked {
		cfg[byLabel[label]] = true
	}
	return cfg, nil
}
