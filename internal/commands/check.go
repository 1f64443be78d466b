// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dacolabs/blueprint/internal/blueprint"
	"github.com/dacolabs/blueprint/internal/prompts"
	"github.com/dacolabs/blueprint/internal/session"
	"github.com/spf13/cobra"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &inputOptions{}

	cmd := &cobra.Command{
		Use:   "check [[NAME=]SOURCE ...]",
		Short: "Validate dataset schemas without writing anything",
		Long: `Read the dataset schemas, print them as trees and report every nested struct
column whose name is not a valid Python identifier. When an output file is
configured, its destination is checked as well.`,
		Example: `  # Check a single file
  blueprint check schemas/orders.schema.json

  # Check the configured datasets
  blueprint check`,
		PersistentPreRunE: session.PreRunLoadOptional,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePlan(cmd, opts, args, session.FromCommand(cmd), root.getenv)
			if err != nil {
				return err
			}
			p.opts.Logger = root.logger(cmd)
			return runCheck(cmd, p)
		},
	}
	opts.register(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, p *plan) error {
	out := cmd.OutOrStdout()

	rs, err := blueprint.Normalize(cmd.Context(), p.source(), p.opts.RootName, p.opts.Logger)
	if err != nil {
		return err
	}
	for _, r := range rs.Roots {
		_, _ = fmt.Fprint(out, prompts.SchemaTree(r.Name, r.Tree))
	}

	var problems []string
	var invalid *blueprint.InvalidIdentifierError
	if err := blueprint.Validate(rs); errors.As(err, &invalid) {
		for _, path := range invalid.Paths {
			problems = append(problems, fmt.Sprintf("%s: struct column name must be a valid Python identifier", path))
		}
	}
	if p.opts.Path != "" {
		if err := blueprint.CheckDestination(p.opts.Path); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		prompts.PrintProblems(out, "Check failed", problems)
		return fmt.Errorf("check failed with %d problem(s)", len(problems))
	}

	mod, err := blueprint.Compile(rs, p.opts)
	if err != nil {
		return err
	}
	prompts.PrintResult(out, []prompts.ResultField{
		{Label: "Roots", Value: strings.Join(mod.Roots, ", ")},
		{Label: "Classes", Value: strings.Join(mod.Classes, ", ")},
	}, "Schemas are valid")
	return nil
}
