// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package opendpi

import (
	"context"
	"errors"
	"fmt"

	"github.com/dacolabs/blueprint/internal/jschema"
	"github.com/dacolabs/blueprint/internal/schema"
)

// ErrNoSchema indicates a port that does not declare a schema.
var ErrNoSchema = errors.New("port has no schema")

// PortDataset is the dataset exposed by one port of a data product.
type PortDataset struct {
	spec *Spec
	port *Port
}

// Datasets returns a dataset for every port that declares a schema, in
// document order.
func (s *Spec) Datasets() []PortDataset {
	var out []PortDataset
	for i := range s.Ports {
		if s.Ports[i].Schema != nil {
			out = append(out, PortDataset{spec: s, port: &s.Ports[i]})
		}
	}
	return out
}

// Dataset returns the dataset of the named port.
func (s *Spec) Dataset(name string) (PortDataset, error) {
	p, ok := s.Port(name)
	if !ok {
		return PortDataset{}, fmt.Errorf("%w: port %q not found", ErrInvalidSpec, name)
	}
	if p.Schema == nil {
		return PortDataset{}, fmt.Errorf("port %q: %w", name, ErrNoSchema)
	}
	return PortDataset{spec: s, port: p}, nil
}

// Name returns the port name.
func (d PortDataset) Name() string { return d.port.Name }

// CollectSchema converts the port schema into a schema tree. Refs to
// components and to external files are followed.
func (d PortDataset) CollectSchema(ctx context.Context) (*schema.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := jschema.ConvertSchema(d.spec.doc, d.port.Schema, "ports."+d.port.Name+".schema", d.spec.loader)
	if err != nil {
		return nil, fmt.Errorf("port %q: %w", d.port.Name, err)
	}
	return tree, nil
}
