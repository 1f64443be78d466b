// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"

	"github.com/dacolabs/blueprint/internal/blueprint"
	"github.com/dacolabs/blueprint/internal/prompts"
	"github.com/dacolabs/blueprint/internal/session"
	"github.com/spf13/cobra"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &inputOptions{}

	cmd := &cobra.Command{
		Use:   "generate [[NAME=]SOURCE ...]",
		Short: "Generate model classes from dataset schemas",
		Long: `Generate a Python module with one vfm.VFrameModel subclass per dataset and per
nested struct column. Sources are descriptor files (YAML, JSON, TOML), JSON Schema
files (*.schema.json, *.schema.yaml), OpenDPI data products (one model per port),
Arrow IPC and Parquet files, or PostgreSQL tables. Without arguments the datasets of blueprint.yaml are used.`,
		Example: `  # Print the module for a single descriptor
  blueprint generate schemas/orders.yaml

  # Several datasets, written to a file
  blueprint generate customers=data/customers.parquet orders=data/orders.arrow -o models/sales.py

  # One model per port of an OpenDPI data product
  blueprint generate opendpi.yaml -o models/product.py

  # Typed columns from a PostgreSQL table
  blueprint generate --table sales.orders --dsn postgres://localhost/shop --dtypes as_values

  # Use the datasets configured in blueprint.yaml
  blueprint generate`,
		PersistentPreRunE: session.PreRunLoadOptional,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePlan(cmd, opts, args, session.FromCommand(cmd), root.getenv)
			if err != nil {
				return err
			}
			p.opts.Logger = root.logger(cmd)
			return runGenerate(cmd, p)
		},
	}
	opts.register(cmd)

	return cmd
}

func runGenerate(cmd *cobra.Command, p *plan) error {
	text, err := blueprint.Collect(cmd.Context(), p.source(), p.opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if p.opts.Path == "" {
		_, err := fmt.Fprint(out, text)
		return err
	}

	prompts.PrintResult(out, []prompts.ResultField{
		{Label: "Datasets", Value: p.labels()},
		{Label: "Output", Value: p.opts.Path},
	}, "Models generated")
	return nil
}
