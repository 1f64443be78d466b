// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dacolabs/blueprint/internal/config"
	"github.com/dacolabs/blueprint/internal/prompts"
	"github.com/spf13/cobra"
)

type initOptions struct {
	prompts.InitAnswers
	nonInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new blueprint project",
		Long: `Initialize a new blueprint project with a blueprint.yaml (or blueprint.toml)
configuration file describing the datasets to generate models for.`,
		Example: `  # Interactive mode
  blueprint init

  # Non-interactive
  blueprint init --name orders --source schemas/orders.yaml --output models.py --non-interactive
  blueprint init --config-format toml --source data/orders.parquet --non-interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(cmd, cwd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFormat, "config-format", "yaml", "Config file format (yaml or toml)")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Dataset name (root class name)")
	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Schema source file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Destination .py file")
	cmd.Flags().StringVar(&opts.Dtypes, "dtypes", "off", "Column type rendering (off, on, as_values)")
	cmd.Flags().StringVar(&opts.Nulls, "nulls", "false", "allow_nulls argument (true, false, none)")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts (requires --source)")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *initOptions) error {
	// Check that the directory isn't already initialized
	if existing, err := config.Find(dir); err == nil {
		return fmt.Errorf("%s already exists; project already initialized", filepath.Base(existing))
	}

	if opts.nonInteractive {
		if opts.Source == "" {
			return errors.New("non-interactive mode requires --source")
		}
	} else if err := prompts.RunInitForm(&opts.InitAnswers); err != nil {
		return err
	}

	var fileName string
	switch opts.ConfigFormat {
	case "", "yaml":
		fileName = "blueprint.yaml"
	case "toml":
		fileName = "blueprint.toml"
	default:
		return fmt.Errorf("unsupported config format %q (expected yaml or toml)", opts.ConfigFormat)
	}

	cfg := config.Config{
		Version:  config.CurrentConfigVersion,
		Output:   opts.Output,
		Dtypes:   opts.Dtypes,
		Nulls:    opts.Nulls,
		Datasets: []config.Dataset{{Name: opts.Name, Source: opts.Source}},
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(filepath.Join(dir, fileName)); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "Config", Value: fileName},
		{Label: "Source", Value: opts.Source},
	}, "Initialization completed")
	return nil
}
