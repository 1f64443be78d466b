// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import "github.com/charmbracelet/huh"

// GenerateAnswers holds the options collected by RunGenerateForm. Fields
// that are already set are used as defaults.
type GenerateAnswers struct {
	Source   string
	Output   string
	RootName string
	Dtypes   string
	Nulls    string
}

// RunGenerateForm runs the interactive form for the generate command.
// The source question is skipped when askSource is false.
func RunGenerateForm(a *GenerateAnswers, askSource bool) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema source").
				Description("Descriptor, JSON Schema, Arrow or Parquet file").
				Placeholder("schemas/orders.yaml").
				Validate(sourceValidator).
				Value(&a.Source),
		).WithHideFunc(func() bool { return !askSource }),
		huh.NewGroup(
			huh.NewInput().
				Title("Root class name").
				Placeholder("DatasetModel").
				Value(&a.RootName),
			huh.NewInput().
				Title("Output file").
				Description("Leave empty to print the module").
				Placeholder("models.py").
				Validate(outputValidator).
				Value(&a.Output),
		),
		huh.NewGroup(
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
