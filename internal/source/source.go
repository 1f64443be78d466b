// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package source extracts dataset schema trees from files and databases.
//
// Supported inputs are descriptor files (YAML, JSON or TOML documents that
// map column names to dtype strings or nested mappings), JSON Schema files,
// OpenDPI data products, Arrow IPC and Parquet files, and PostgreSQL tables.
// File and Table are lazy: the schema is only read when CollectSchema is called.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dacolabs/blueprint/internal/jschema"
	"github.com/dacolabs/blueprint/internal/opendpi"
	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/samber/lo"
)

// ErrUnsupportedFormat indicates a source format that cannot be read.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Format identifies how a source file is decoded.
type Format string

// Supported formats.
const (
	FormatYAML       Format = "yaml"
	FormatJSON       Format = "json"
	FormatTOML       Format = "toml"
	FormatJSONSchema Format = "jsonschema"
	FormatOpenDPI    Format = "opendpi"
	FormatArrow      Format = "arrow"
	FormatParquet    Format = "parquet"
)

// Formats lists every supported file format.
var Formats = []Format{FormatYAML, FormatJSON, FormatTOML, FormatJSONSchema, FormatOpenDPI, FormatArrow, FormatParquet}

// ParseFormat validates a format name. The empty string is accepted and
// means the format is detected from the file name.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return "", nil
	}
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// DetectFormat derives the format from a file name. JSON Schema files are
// recognized by a ".schema.json", ".schema.yaml" or ".schema.yml" suffix,
// data products by an "opendpi" stem such as "opendpi.yaml" or
// "sales.opendpi.json".
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	switch {
	case (stem == "opendpi" || strings.HasSuffix(stem, ".opendpi")) &&
		lo.Contains([]string{".yaml", ".yml", ".json"}, filepath.Ext(name)):
		return FormatOpenDPI, nil
	case strings.HasSuffix(name, ".schema.json"),
		strings.HasSuffix(name, ".schema.yaml"),
		strings.HasSuffix(name, ".schema.yml"):
		return FormatJSONSchema, nil
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".arrow", ".feather", ".ipc":
		return FormatArrow, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: cannot detect format of %s", ErrUnsupportedFormat, path)
	}
}

// File is a dataset whose schema is read from a file.
type File struct {
	Path   string
	Format Format // detected from Path when empty
}

// CollectSchema reads the file and returns its schema tree.
func (f File) CollectSchema(ctx context.Context) (*schema.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := f.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(f.Path); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatYAML, FormatJSON, FormatTOML:
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		tree, err := ParseDescriptor(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		return tree, nil
	case FormatJSONSchema:
		return readJSONSchema(f.Path)
	case FormatOpenDPI:
		return readSinglePort(ctx, f.Path)
	case FormatArrow:
		return ReadIPC(f.Path)
	case FormatParquet:
		return ReadParquet(f.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readJSONSchema(path string) (*schema.Tree, error) {
	loader := jschema.NewLoader(os.DirFS(filepath.Dir(path)))
	doc, err := loader.LoadFile(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	tree, err := jschema.ToTree(doc, loader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// OpenProduct parses the OpenDPI data product at path. External schema
// refs resolve relative to the spec file.
func OpenProduct(path string) (*opendpi.Spec, error) {
	return opendpi.ParseFile(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// readSinglePort reads a data product as one dataset. Products with several
// ports must be expanded with OpenProduct instead.
func readSinglePort(ctx context.Context, path string) (*schema.Tree, error) {
	spec, err := OpenProduct(path)
	if err != nil {
		return nil, err
	}
	datasets := spec.Datasets()
	if len(datasets) != 1 {
		return nil, fmt.Errorf("%w: data product %s has %d ports with a schema, expected one", ErrUnsupportedFormat, path, len(datasets))
	}
	return datasets[0].CollectSchema(ctx)
}
