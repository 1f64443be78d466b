// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles blueprint project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dacolabs/blueprint/internal/blueprint"
	"github.com/dacolabs/blueprint/internal/source"
	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// FileNames are the recognized config file names, in lookup order.
var FileNames = []string{"blueprint.yaml", "blueprint.yml", "blueprint.toml"}

var (
	// ErrUnsupportedVersion indicates a config file written for another format version.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalid indicates a config value that fails validation.
	ErrInvalid = errors.New("invalid config")
)

// Config represents the blueprint.yaml (or blueprint.toml) project file.
type Config struct {
	Version  int       `yaml:"version" toml:"version"`
	Output   string    `yaml:"output,omitempty" toml:"output,omitempty"`
	RootName string    `yaml:"rootName,omitempty" toml:"rootName,omitempty"`
	Dtypes   string    `yaml:"dtypes,omitempty" toml:"dtypes,omitempty"`
	Nulls    string    `yaml:"nulls,omitempty" toml:"nulls,omitempty"`
	Usage    *bool     `yaml:"usage,omitempty" toml:"usage,omitempty"`
	Datasets []Dataset `yaml:"datasets,omitempty" toml:"datasets,omitempty"`
}

// Dataset is one schema input. Exactly one of Source and Postgres is set.
type Dataset struct {
	Name     string    `yaml:"name,omitempty" toml:"name,omitempty"`
	Source   string    `yaml:"source,omitempty" toml:"source,omitempty"`
	Format   string    `yaml:"format,omitempty" toml:"format,omitempty"`
	Postgres *Postgres `yaml:"postgres,omitempty" toml:"postgres,omitempty"`
}

// Postgres locates a table in a PostgreSQL database. Environment variables
// in DSN are expanded when the dataset is opened.
type Postgres struct {
	DSN   string `yaml:"dsn" toml:"dsn"`
	Table string `yaml:"table" toml:"table"`
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Find returns the path of the first config file present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads a Config from a file path. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	var cfg Config
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path, in TOML for .toml paths and YAML
// otherwise.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	if isTOML(path) {
		return toml.NewEncoder(f).Encode(c)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, c.Version, CurrentConfigVersion)
	}
	if c.Output != "" && !strings.HasSuffix(c.Output, blueprint.PythonSuffix) {
		return fmt.Errorf("%w: output %q must end in %s", ErrInvalid, c.Output, blueprint.PythonSuffix)
	}
	if _, err := blueprint.ParseMode(c.Dtypes); err != nil {
		return fmt.Errorf("%w: dtypes: %w", ErrInvalid, err)
	}
	if c.Nulls != "" {
		if _, err := blueprint.ParseNullPolicy(c.Nulls); err != nil {
			return fmt.Errorf("%w: nulls: %w", ErrInvalid, err)
		}
	}

	seen := make(map[string]bool, len(c.Datasets))
	for i, d := range c.Datasets {
		if err := d.validate(len(c.Datasets) > 1); err != nil {
			return fmt.Errorf("%w: datasets[%d]: %w", ErrInvalid, i, err)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: datasets[%d]: duplicate name %q", ErrInvalid, i, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

func (d Dataset) validate(named bool) error {
	if named && d.Name == "" {
		return errors.New("name is required when several datasets are configured")
	}
	switch {
	case d.Source == "" && d.Postgres == nil:
		return errors.New("one of source or postgres is required")
	case d.Source != "" && d.Postgres != nil:
		return errors.New("source and postgres are mutually exclusive")
	case d.Postgres != nil:
		if d.Postgres.DSN == "" || d.Postgres.Table == "" {
			return errors.New("postgres requires dsn and table")
		}
		if d.Format != "" {
			return errors.New("format only applies to file sources")
		}
	}
	if _, err := source.ParseFormat(d.Format); err != nil {
		return err
	}
	return nil
}
