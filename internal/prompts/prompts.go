// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package prompts provides interactive terminal prompts and styled output
// for CLI commands.
package prompts

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dacolabs/blueprint/internal/blueprint"
	"github.com/dacolabs/blueprint/internal/source"
)

// Theme returns the shared huh theme used across all CLI forms.
func Theme() *huh.Theme {
	theme := huh.ThemeBase16()
	theme.FieldSeparator = lipgloss.NewStyle().SetString("\n").MarginBottom(1)
	theme.Form.Base = theme.Form.Base.MarginTop(1)
	theme.Group.Base = theme.Group.Base.MarginTop(1)
	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("#f9ca24"))
	theme.Blurred.Title = theme.Blurred.Title.Foreground(lipgloss.Color("#bababa"))
	return theme
}

// ResultField is a label-value pair for PrintResult.
type ResultField struct {
	Label string
	Value string
}

// PrintResult prints a styled summary with green checkmarks and gray labels.
func PrintResult(w io.Writer, fields []ResultField, successMsg string) {
	success := lipgloss.NewStyle().Foreground(lipgloss.Color("#27ca3f"))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#bababa"))
	check := success.Render("✓")

	_, _ = fmt.Fprintln(w)
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", check, label.Render(f.Label+":"), f.Value)
	}

	if successMsg != "" {
		_, _ = fmt.Fprintln(w, success.Render("\n"+successMsg))
	}
}

// PrintProblems prints one red cross per problem.
func PrintProblems(w io.Writer, title string, problems []string) {
	failure := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f56"))
	cross := failure.Render("✗")

	_, _ = fmt.Fprintln(w, failure.Render(title))
	for _, p := range problems {
		_, _ = fmt.Fprintf(w, "%s %s\n", cross, p)
	}
}

// Mode and null policy choices offered by the forms.
var (
	modeOptions = []huh.Option[string]{
		huh.NewOption("Bare columns (off)", blueprint.ModeOff.String()),
		huh.NewOption("Type tags (on)", blueprint.ModeTagged.String()),
		huh.NewOption("Type values (as_values)", blueprint.ModeValues.String()),
	}
	nullOptions = []huh.Option[string]{
		huh.NewOption("Forbid nulls", blueprint.NullsForbidden.String()),
		huh.NewOption("Allow nulls", blueprint.NullsAllowed.String()),
		huh.NewOption("Leave unspecified", blueprint.NullsUnspecified.String()),
	}
)

// outputValidator accepts an empty destination (print to stdout) or a path
// that Collect would be able to create.
func outputValidator(s string) error {
	if s == "" {
		return nil
	}
	return blueprint.CheckDestination(s)
}

// sourceValidator accepts an existing file in a recognized format.
func sourceValidator(s string) error {
	if s == "" {
		return errors.New("source is required")
	}
	if _, err := source.DetectFormat(s); err != nil {
		return err
	}
	if _, err := os.Stat(s); err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	return nil
}

func requiredValidator(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
