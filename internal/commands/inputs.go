// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dacolabs/blueprint/internal/blueprint"
	"github.com/dacolabs/blueprint/internal/config"
	"github.com/dacolabs/blueprint/internal/opendpi"
	"github.com/dacolabs/blueprint/internal/prompts"
	"github.com/dacolabs/blueprint/internal/session"
	"github.com/dacolabs/blueprint/internal/source"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoInputs = errors.New("no schema source given (pass a file, --table, or configure datasets in blueprint.yaml)")

// inputOptions are the flags shared by generate and check.
type inputOptions struct {
	output      string
	rootName    string
	dtypes      string
	nulls       string
	format      string
	dsn         string
	tables      []string
	noUsage     bool
	interactive bool
}

func (o *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Destination .py file (prints the module when empty)")
	cmd.Flags().StringVar(&o.rootName, "root-name", "", "Class name of a single unnamed dataset (default DatasetModel)")
	cmd.Flags().StringVar(&o.dtypes, "dtypes", "off", "Column type rendering (off, on, as_values)")
	cmd.Flags().StringVar(&o.nulls, "nulls", "false", "allow_nulls argument (true, false, none)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Source file format (yaml, json, toml, jsonschema, opendpi, arrow, parquet); detected when empty")
	cmd.Flags().StringVar(&o.dsn, "dsn", "", "PostgreSQL connection string for --table (default $DATABASE_URL)")
	cmd.Flags().StringSliceVar(&o.tables, "table", nil, "PostgreSQL table to read, optionally schema-qualified (repeatable)")
	cmd.Flags().BoolVar(&o.noUsage, "no-usage", false, "Do not print the usage suggestion after writing a file")
	cmd.Flags().BoolVarP(&o.interactive, "interactive", "i", false, "Prompt for missing options")
}

// input is one resolved dataset.
type input struct {
	name    string // empty for a single unnamed dataset
	label   string
	dataset blueprint.Dataset
}

// plan is everything a compilation needs.
type plan struct {
	inputs []input
	opts   blueprint.Options
}

func (p *plan) source() blueprint.Source {
	if len(p.inputs) == 1 && p.inputs[0].name == "" {
		return blueprint.Single(p.inputs[0].dataset)
	}
	return blueprint.Collection(lo.Map(p.inputs, func(in input, _ int) blueprint.Named {
		return blueprint.Named{Name: in.name, Dataset: in.dataset}
	}))
}

func (p *plan) labels() string {
	return strings.Join(lo.Map(p.inputs, func(in input, _ int) string { return in.label }), ", ")
}

// resolvePlan merges the project config (if any), the command line and,
// in interactive mode, the user's answers. Flags take precedence over the
// config file.
func resolvePlan(cmd *cobra.Command, o *inputOptions, args []string, proj *session.Context, getenv func(string) string) (*plan, error) {
	var cfg config.Config
	if proj != nil {
		cfg = *proj.Config
		cfg.Output = proj.Resolve(cfg.Output)
	}
	flags := cmd.Flags()
	pick := func(flag, flagValue, cfgValue string) string {
		if flags.Changed(flag) || cfgValue == "" {
			return flagValue
		}
		return cfgValue
	}

	answers := prompts.GenerateAnswers{
		Output:   pick("output", o.output, cfg.Output),
		RootName: pick("root-name", o.rootName, cfg.RootName),
		Dtypes:   pick("dtypes", o.dtypes, cfg.Dtypes),
		Nulls:    pick("nulls", o.nulls, cfg.Nulls),
	}
	usage := !o.noUsage
	if !flags.Changed("no-usage") && cfg.Usage != nil {
		usage = *cfg.Usage
	}

	inputs, err := argInputs(o, args, getenv)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 && proj != nil {
		if inputs, err = configInputs(proj, getenv); err != nil {
			return nil, err
		}
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("interactive mode requires a terminal")
		}
		if err := prompts.RunGenerateForm(&answers, len(inputs) == 0); err != nil {
			return nil, err
		}
		if len(inputs) == 0 {
			inputs = []input{fileInput(answers.Source, "", source.Format(o.format))}
		}
	}
	if len(inputs) == 0 {
		return nil, errNoInputs
	}

	mode, err := blueprint.ParseMode(answers.Dtypes)
	if err != nil {
		return nil, err
	}
	nulls, err := blueprint.ParseNullPolicy(answers.Nulls)
	if err != nil {
		return nil, err
	}

	p := &plan{
		inputs: inputs,
		opts: blueprint.Options{
			Path:     answers.Output,
			RootName: answers.RootName,
			Dtypes:   mode,
			Nulls:    nulls,
		},
	}
	if usage && p.opts.Path != "" {
		p.opts.Usage = cmd.OutOrStdout()
	}
	return p, nil
}

// argInputs turns positional file arguments and --table flags into inputs.
// A file argument may be given as name=path; with several inputs, unnamed
// files are named after their base name.
func argInputs(o *inputOptions, args []string, getenv func(string) string) ([]input, error) {
	format, err := source.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 0, len(args)+len(o.tables))
	for _, arg := range args {
		name, path := splitNamed(arg)
		expanded, err := fileInputs(path, name, format)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, expanded...)
	}

	if len(o.tables) > 0 {
		dsn := o.dsn
		if dsn == "" && getenv != nil {
			dsn = getenv("DATABASE_URL")
		}
		if dsn == "" {
			return nil, errors.New("--table requires --dsn or DATABASE_URL")
		}
		for _, table := range o.tables {
			inputs = append(inputs, input{
				name:    tableName(table),
				label:   table,
				dataset: source.Table{DSN: dsn, Name: table},
			})
		}
	}

	if len(inputs) > 1 {
		for i := range inputs {
			if inputs[i].name == "" {
				inputs[i].name = baseName(inputs[i].label)
			}
		}
	}
	return inputs, nil
}

func configInputs(proj *session.Context, getenv func(string) string) ([]input, error) {
	inputs := make([]input, 0, len(proj.Config.Datasets))
	for _, d := range proj.Config.Datasets {
		if d.Postgres != nil {
			dsn := os.Expand(d.Postgres.DSN, func(key string) string {
				if getenv == nil {
					return ""
				}
				return getenv(key)
			})
			name := d.Name
			if name == "" && len(proj.Config.Datasets) > 1 {
				name = tableName(d.Postgres.Table)
			}
			inputs = append(inputs, input{
				name:    name,
				label:   d.Postgres.Table,
				dataset: source.Table{DSN: dsn, Name: d.Postgres.Table},
			})
			continue
		}
		format, err := source.ParseFormat(d.Format)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", d.Name, err)
		}
		expanded, err := fileInputs(proj.Resolve(d.Source), d.Name, format)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", d.Name, err)
		}
		inputs = append(inputs, expanded...)
	}
	return inputs, nil
}

func fileInput(path, name string, format source.Format) input {
	return input{name: name, label: path, dataset: source.File{Path: path, Format: format}}
}

// fileInputs is fileInput, except that an OpenDPI data product expands into
// one named input per port, prefixed with name when one is given.
func fileInputs(path, name string, format source.Format) ([]input, error) {
	detected := format
	if detected == "" {
		detected, _ = source.DetectFormat(path)
	}
	if detected != source.FormatOpenDPI {
		return []input{fileInput(path, name, format)}, nil
	}

	spec, err := source.OpenProduct(path)
	if err != nil {
		return nil, err
	}
	datasets := spec.Datasets()
	if len(datasets) == 0 {
		return nil, fmt.Errorf("data product %s has no port with a schema", path)
	}
	return lo.Map(datasets, func(ds opendpi.PortDataset, _ int) input {
		portName := ds.Name()
		if name != "" {
			portName = name + "_" + portName
		}
		return input{name: portName, label: path + "#" + ds.Name(), dataset: ds}
	}), nil
}

// splitNamed splits "name=path". Arguments whose prefix looks like a path
// are not split.
func splitNamed(arg string) (name, path string) {
	name, path, ok := strings.Cut(arg, "=")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return "", arg
	}
	return name, path
}

// baseName is the file name without directory and extensions.
func baseName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// tableName is the unqualified table name.
func tableName(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}
