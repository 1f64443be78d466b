// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package opendpi reads OpenDPI data product specifications. Every port of
// a data product that declares a schema is a dataset.
package opendpi

import (
	"github.com/dacolabs/blueprint/internal/jschema"
	"github.com/google/jsonschema-go/jsonschema"
)

// Spec represents the root structure of an OpenDPI specification file.
type Spec struct {
	OpenDPI     string
	Info        Info
	Tags        []Tag
	Connections map[string]Connection
	Ports       []Port // document order

	doc    *jschema.Document
	loader *jschema.Loader
}

// Info contains metadata about the data product.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Tag is used for categorizing ports.
type Tag struct {
	Name        string
	Description string
}

// Connection represents an infrastructure endpoint where data resides.
type Connection struct {
	Protocol    string
	Host        string
	Description string
	Variables   map[string]any
}

// Port represents a data output interface exposed by the data product.
type Port struct {
	Name        string
	Description string
	Connections []PortConnection
	Schema      *jsonschema.Schema
}

// PortConnection represents a connection-location pair for a port.
type PortConnection struct {
	Connection *Connection
	Location   string
}

// Port returns the port with the given name.
func (s *Spec) Port(name string) (*Port, bool) {
	for i := range s.Ports {
		if s.Ports[i].Name == name {
			return &s.Ports[i], true
		}
	}
	return nil, false
}
