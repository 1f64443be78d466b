// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package source

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/dacolabs/blueprint/internal/dtype"
	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDescriptor indicates a descriptor document of the wrong shape.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// ParseDescriptor decodes a descriptor document. Every entry maps a column
// name either to a dtype string (see dtype.Parse) or to a nested mapping,
// which becomes a struct column. Column order follows the document.
func ParseDescriptor(data []byte, format Format) (*schema.Tree, error) {
	switch format {
	case FormatYAML:
		return parseYAMLDescriptor(data)
	case FormatJSON:
		return parseJSONDescriptor(data)
	case FormatTOML:
		return parseTOMLDescriptor(data)
	default:
		return nil, fmt.Errorf("%w: %q is not a descriptor format", ErrUnsupportedFormat, format)
	}
}

func addLeaf(t *schema.Tree, name, value string) error {
	dt, err := dtype.Parse(value)
	if err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}
	return t.Add(name, dt)
}

func parseYAMLDescriptor(data []byte) (*schema.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return schema.New(), nil
	}
	return yamlTree(doc.Content[0])
}

func yamlTree(n *yaml.Node) (*schema.Tree, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidDescriptor, n.Line)
	}

	t := schema.New()
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, value := n.Content[i].Value, n.Content[i+1]
		if value.Kind == yaml.AliasNode && value.Alias != nil {
			value = value.Alias
		}
		switch value.Kind {
		case yaml.ScalarNode:
			if err := addLeaf(t, name, value.Value); err != nil {
				return nil, fmt.Errorf("line %d: %w", value.Line, err)
			}
		case yaml.MappingNode:
			sub, err := yamlTree(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if err := t.AddStruct(name, sub); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: line %d: column %q must be a dtype or a mapping", ErrInvalidDescriptor, value.Line, name)
		}
	}
	return t, nil
}

func parseJSONDescriptor(data []byte) (*schema.Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidDescriptor)
	}
	return jsonTree(dec)
}

// jsonTree reads object members up to and including the closing brace.
func jsonTree(dec *json.Decoder) (*schema.Tree, error) {
	t := schema.New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrInvalidDescriptor, keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := valTok.(type) {
		case string:
			if err := addLeaf(t, name, v); err != nil {
				return nil, err
			}
		case json.Delim:
			if v != '{' {
				return nil, fmt.Errorf("%w: column %q must be a dtype or an object", ErrInvalidDescriptor, name)
			}
			sub, err := jsonTree(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if err := t.AddStruct(name, sub); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: column %q must be a dtype or an object", ErrInvalidDescriptor, name)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseTOMLDescriptor(data []byte) (*schema.Tree, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	root := schema.New()
	// md.Keys lists tables and keys in document order.
	for _, key := range md.Keys() {
		if err := tomlAdd(root, raw, key); err != nil {
			return nil, err
		}
	}
	// Keys not reported by the metadata follow in sorted order.
	if err := tomlFill(root, raw); err != nil {
		return nil, err
	}
	return root, nil
}

// tomlAdd places the value at key into the tree, creating parent struct
// columns as needed. Columns already present are left alone.
func tomlAdd(root *schema.Tree, raw map[string]any, key toml.Key) error {
	t, values := root, raw
	for i, part := range key {
		value, ok := values[part]
		if !ok {
			return nil
		}
		last := i == len(key)-1

		switch v := value.(type) {
		case string:
			if !last {
				return fmt.Errorf("%w: %s is a dtype, not a table", ErrInvalidDescriptor, key)
			}
			if _, exists := t.Lookup(part); exists {
				return nil
			}
			return addLeaf(t, part, v)
		case map[string]any:
			col, exists := t.Lookup(part)
			if !exists {
				if err := t.AddStruct(part, schema.New()); err != nil {
					return err
				}
				col, _ = t.Lookup(part)
			}
			if !col.IsStruct() {
				return fmt.Errorf("%w: %s is both a dtype and a table", ErrInvalidDescriptor, key)
			}
			t, values = col.Struct, v
		default:
			return fmt.Errorf("%w: column %s must be a dtype or a table", ErrInvalidDescriptor, key)
		}
	}
	return nil
}

func tomlFill(t *schema.Tree, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := tomlAdd(t, values, toml.Key{name}); err != nil {
			return err
		}
		if sub, ok := values[name].(map[string]any); ok {
			col, _ := t.Lookup(name)
			if err := tomlFill(col.Struct, sub); err != nil {
				return err
			}
		}
	}
	return nil
}
