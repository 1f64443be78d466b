// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package opendpi

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/dacolabs/blueprint/internal/jschema"
	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec indicates a malformed data product spec.
var ErrInvalidSpec = errors.New("invalid OpenDPI spec")

type rawSpec struct {
	OpenDPI     string                   `json:"opendpi"`
	Info        rawInfo                  `json:"info"`
	Tags        []rawTag                 `json:"tags,omitempty"`
	Connections map[string]rawConnection `json:"connections"`
	Ports       map[string]rawPort       `json:"ports"`
	Components  *rawComponents           `json:"components,omitempty"`
}

type rawInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type rawTag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type rawConnection struct {
	Type        string         `json:"type"`
	Host        string         `json:"host"`
	Description string         `json:"description,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
}

type rawPort struct {
	Description string              `json:"description,omitempty"`
	Connections []rawPortConnection `json:"connections"`
	Schema      *jsonschema.Schema  `json:"schema"`
}

type rawPortConnection struct {
	Connection string `json:"connection"`
	Location   string `json:"location"`
}

type rawComponents struct {
	Schemas map[string]*jsonschema.Schema `json:"schemas,omitempty"`
}

// ParseFile reads the spec at name in fsys. YAML and JSON are both
// accepted. External schema refs are resolved relative to the spec file
// when a port schema is converted.
func ParseFile(fsys fs.FS, name string) (*Spec, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	spec, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	spec.doc.Path = path.Clean(name)
	spec.loader = jschema.NewLoader(fsys)
	return spec, nil
}

// parse decodes a spec document. JSON is a subset of YAML, so one decoder
// serves both; the YAML node tree also gives the port order.
func parse(data []byte) (*Spec, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	var generic any
	if err := root.Decode(&generic); err != nil {
		return nil, err
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert spec: %w", err)
	}
	var raw rawSpec
	if err := json.Unmarshal(asJSON, &raw); err != nil {
		return nil, err
	}

	keyOrder, err := jschema.ExtractKeyOrderFromYAML(data)
	if err != nil {
		return nil, err
	}

	connections := make(map[string]Connection, len(raw.Connections))
	for name, rc := range raw.Connections {
		connections[name] = Connection{
			Protocol:    rc.Type,
			Host:        rc.Host,
			Description: rc.Description,
			Variables:   rc.Variables,
		}
	}

	tags := make([]Tag, len(raw.Tags))
	for i, rt := range raw.Tags {
		tags[i] = Tag(rt)
	}

	names := mappingKeys(&root, "ports")
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no ports", ErrInvalidSpec)
	}

	ports := make([]Port, 0, len(names))
	for _, name := range names {
		rp := raw.Ports[name]
		portConns := make([]PortConnection, len(rp.Connections))
		for i, rpc := range rp.Connections {
			ref := strings.TrimPrefix(rpc.Connection, "#/connections/")
			conn, ok := connections[ref]
			if !ok {
				return nil, fmt.Errorf("%w: port %q: connection %q not found", ErrInvalidSpec, name, rpc.Connection)
			}
			portConns[i] = PortConnection{Connection: &conn, Location: rpc.Location}
		}
		ports = append(ports, Port{
			Name:        name,
			Description: rp.Description,
			Connections: portConns,
			Schema:      rp.Schema,
		})
	}

	doc := &jschema.Document{KeyOrder: keyOrder}
	if raw.Components != nil {
		doc.Components = raw.Components.Schemas
	}

	return &Spec{
		OpenDPI: raw.OpenDPI,
		Info: Info{
			Title:       raw.Info.Title,
			Version:     raw.Info.Version,
			Description: raw.Info.Description,
		},
		Tags:        tags,
		Connections: connections,
		Ports:       ports,
		doc:         doc,
	}, nil
}

// mappingKeys returns the keys of the top-level mapping named key, in
// document order.
func mappingKeys(root *yaml.Node, key string) []string {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	node := findYAMLMappingKey(root.Content[0], key)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// findYAMLMappingKey finds the value node for a given key in a YAML mapping node.
func findYAMLMappingKey(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
