// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// Document is a loaded schema file together with the document order of
// its object properties.
type Document struct {
	Path     string
	Schema   *jsonschema.Schema
	KeyOrder map[string][]string
	// Components are reusable schemas of a data product spec, referenced
	// as "#/components/schemas/<name>". Nil for plain schema files.
	Components map[string]*jsonschema.Schema
}

func loadAndExtractOrder(data []byte, filePath string) (*jsonschema.Schema, map[string][]string, error) {
	var schema jsonschema.Schema

	switch {
	case strings.HasSuffix(filePath, ".yaml") || strings.HasSuffix(filePath, ".yml"):
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, nil, err
		}
		asJSON, err := json.Marshal(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert YAML schema: %w", err)
		}
		if err := json.Unmarshal(asJSON, &schema); err != nil {
			return nil, nil, err
		}
		keyOrder, err := ExtractKeyOrderFromYAML(data)
		if err != nil {
			return nil, nil, err
		}
		return &schema, keyOrder, nil
	case strings.HasSuffix(filePath, ".json"):
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, nil, err
		}
		keyOrder, err := ExtractKeyOrderFromJSON(data)
		if err != nil {
			return nil, nil, err
		}
		return &schema, keyOrder, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
}

// Loader loads schemas from a filesystem.
type Loader struct {
	fsys  fs.FS
	cache map[string]*Document
}

// NewLoader creates a Loader that reads from the given filesystem.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, cache: make(map[string]*Document)}
}

// LoadFile loads and parses a schema file.
// The format is determined from the file extension.
func (l *Loader) LoadFile(filePath string) (*Document, error) {
	filePath = path.Clean(filePath)
	if doc, ok := l.cache[filePath]; ok {
		return doc, nil
	}

	f, err := l.fsys.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	schema, keyOrder, err := loadAndExtractOrder(data, filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	doc := &Document{Path: filePath, Schema: schema, KeyOrder: keyOrder}
	l.cache[filePath] = doc
	return doc, nil
}

// LoadRef loads the document an external $ref points to, relative to the
// directory of the referring document.
func (l *Loader) LoadRef(from *Document, ref string) (*Document, error) {
	file, _, _ := strings.Cut(ref, "#")
	return l.LoadFile(path.Join(path.Dir(from.Path), file))
}
