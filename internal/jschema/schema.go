// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package jschema provides JSON Schema loading and conversion into dataset
// schema trees.
package jschema

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// IsFileRef returns true if ref is an external file reference.
// File refs do not start with "#".
func IsFileRef(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "#")
}

// Sections holding reusable schemas, named by their dotted document path.
const (
	SectionDefs        = "$defs"
	SectionDefinitions = "definitions"
	SectionComponents  = "components.schemas"
)

// defPrefixes maps the internal $ref prefix of each section to the section.
var defPrefixes = []struct{ prefix, section string }{
	{"#/$defs/", SectionDefs},
	{"#/definitions/", SectionDefinitions},
	{"#/components/schemas/", SectionComponents},
}

// DefName extracts the section and definition name from an internal $ref
// such as "#/$defs/Address", "#/definitions/Address" or, in data product
// specs, "#/components/schemas/Address".
func DefName(ref string) (section, name string, ok bool) {
	for _, p := range defPrefixes {
		if n, found := strings.CutPrefix(ref, p.prefix); found {
			return p.section, n, true
		}
	}
	return "", "", false
}

// keyOrder maps a dotted document path (e.g. "properties",
// "$defs.address.properties") to its keys in document order.
type keyOrder map[string][]string

func (k keyOrder) add(path string, keys []string) {
	for _, key := range keys {
		if !lo.Contains(k[path], key) {
			k[path] = append(k[path], key)
		}
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// ExtractKeyOrderFromJSON reads raw JSON and records the key order of every
// "properties" object. Array elements share their parent's path, so the
// keys of several allOf members are merged in document order.
func ExtractKeyOrderFromJSON(data []byte) (map[string][]string, error) {
	result := make(keyOrder)
	dec := json.NewDecoder(bytes.NewReader(data))

	var extract func(path string) error
	extract = func(path string) error {
		token, err := dec.Token()
		if err != nil {
			return err
		}
		delim, ok := token.(json.Delim)
		if !ok {
			return nil
		}
		switch delim {
		case '{':
			var keys []string
			for dec.More() {
				keyToken, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyToken.(string)
				if !ok {
					return fmt.Errorf("unexpected object key %v", keyToken)
				}
				keys = append(keys, key)
				if err := extract(joinPath(path, key)); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			if path == "properties" || strings.HasSuffix(path, ".properties") {
				result.add(path, keys)
			}
		case '[':
			for dec.More() {
				if err := extract(path); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
		}
		return nil
	}

	if err := extract(""); err != nil {
		return nil, fmt.Errorf("failed to extract key order: %w", err)
	}
	return result, nil
}

// ExtractKeyOrderFromYAML is ExtractKeyOrderFromJSON for YAML documents.
func ExtractKeyOrderFromYAML(data []byte) (map[string][]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	result := make(keyOrder)

	var extract func(n *yaml.Node, path string)
	extract = func(n *yaml.Node, path string) {
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				extract(c, path)
			}
		case yaml.AliasNode:
			if n.Alias != nil {
				extract(n.Alias, path)
			}
		case yaml.MappingNode:
			keys := make([]string, 0, len(n.Content)/2)
			for i := 0; i+1 < len(n.Content); i += 2 {
				key := n.Content[i].Value
				keys = append(keys, key)
				extract(n.Content[i+1], joinPath(path, key))
			}
			if path == "properties" || strings.HasSuffix(path, ".properties") {
				result.add(path, keys)
			}
		case yaml.SequenceNode:
			for _, c := range n.Content {
				extract(c, path)
			}
		}
	}
	extract(&doc, "")
	return result, nil
}
