// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import "github.com/charmbracelet/huh"

// InitAnswers holds the options collected by RunInitForm.
type InitAnswers struct {
	ConfigFormat string // yaml or toml
	Name         string
	Source       string
	Output       string
	Dtypes       string
	Nulls        string
}

// RunInitForm runs the interactive form for the init command.
func RunInitForm(a *InitAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Config format").
				Options(
					huh.NewOption("YAML (recommended)", "yaml"),
					huh.NewOption("TOML", "toml"),
				).
				Value(&a.ConfigFormat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dataset name").
				Placeholder("orders").
				Validate(requiredValidator("dataset name")).
				Value(&a.Name),
			huh.NewInput().
				Title("Schema source").
				Placeholder("schemas/orders.yaml").
				Validate(sourceValidator).
				Value(&a.Source),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Placeholder("models.py").
				Validate(outputValidator).
				Value(&a.Output),
			huh.NewSelect[string]().
				Title("Column types").
				Options(modeOptions...).
				Value(&a.Dtypes),
			huh.NewSelect[string]().
				Title("Nullability").
				Options(nullOptions...).
				Value(&a.Nulls),
		),
	).WithTheme(Theme()).Run()
}
