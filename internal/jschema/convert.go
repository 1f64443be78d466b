// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dacolabs/blueprint/internal/dtype"
	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/samber/lo"
)

var (
	// ErrUnsupportedFormat indicates a schema file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported schema file format")

	// ErrUnsupportedSchema indicates a schema that cannot describe a dataset.
	ErrUnsupportedSchema = errors.New("unsupported schema")

	// ErrRecursiveRef indicates a $ref cycle, which a finite dataset schema
	// cannot express.
	ErrRecursiveRef = errors.New("recursive $ref")
)

// converter holds the state of one ToTree call.
type converter struct {
	loader    *Loader
	resolving map[string]bool
}

// ToTree converts the root object schema of doc into a dataset schema
// tree. Object properties become columns in document order; nested objects
// become struct columns. External file refs are loaded through loader,
// which may be nil when the document has none.
func ToTree(doc *Document, loader *Loader) (*schema.Tree, error) {
	return ConvertSchema(doc, doc.Schema, "", loader)
}

// ConvertSchema is ToTree for a schema embedded in doc at the dotted path
// prefix, such as the schema of a data product port.
func ConvertSchema(doc *Document, s *jsonschema.Schema, prefix string, loader *Loader) (*schema.Tree, error) {
	c := &converter{loader: loader, resolving: make(map[string]bool)}
	dt, err := c.convert(doc, s, prefix)
	if err != nil {
		return nil, err
	}
	if dt.Kind != dtype.Struct {
		return nil, fmt.Errorf("%w: root must be an object, got %s", ErrUnsupportedSchema, dt)
	}
	return schema.FromFields(dt.Fields)
}

func (c *converter) convert(doc *Document, s *jsonschema.Schema, prefix string) (*dtype.DataType, error) {
	if s == nil {
		return dtype.Scalar(dtype.String), nil
	}
	if s.Ref != "" {
		return c.convertRef(doc, s.Ref)
	}
	if len(s.AllOf) > 0 {
		return c.convertAllOf(doc, s, prefix)
	}
	if variants := append(append([]*jsonschema.Schema{}, s.AnyOf...), s.OneOf...); len(variants) > 0 {
		nonNull := lo.Filter(variants, func(v *jsonschema.Schema, _ int) bool {
			return v == nil || v.Type != "null"
		})
		if len(nonNull) == 1 {
			return c.convert(doc, nonNull[0], prefix)
		}
		return dtype.Scalar(dtype.Object), nil
	}

	typ, err := schemaType(s)
	if err != nil {
		return nil, err
	}

	switch typ {
	case "object":
		fields, err := c.convertProperties(doc, s, prefix)
		if err != nil {
			return nil, err
		}
		return dtype.StructOf(fields...), nil
	case "array":
		elem, err := c.convert(doc, s.Items, joinPath(prefix, "items"))
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		if s.MinItems != nil && s.MaxItems != nil && *s.MinItems == *s.MaxItems && *s.MinItems > 0 {
			return dtype.ArrayOf(elem, *s.MinItems), nil
		}
		return dtype.ListOf(elem), nil
	case "string":
		return dtype.Scalar(stringKind(s.Format)), nil
	case "integer":
		return dtype.Scalar(dtype.Int64), nil
	case "number":
		return dtype.Scalar(dtype.Float64), nil
	case "boolean":
		return dtype.Scalar(dtype.Boolean), nil
	case "null":
		return dtype.Scalar(dtype.Null), nil
	case "mixed":
		return dtype.Scalar(dtype.Object), nil
	default:
		return dtype.Scalar(dtype.String), nil
	}
}

// schemaType returns the single non-null type of s. Properties imply an
// object; several non-null types are reported as "mixed".
func schemaType(s *jsonschema.Schema) (string, error) {
	types := s.Types
	if s.Type != "" {
		types = []string{s.Type}
	}
	nonNull := lo.Without(types, "null")
	switch {
	case len(nonNull) == 1:
		return nonNull[0], nil
	case len(nonNull) > 1:
		return "mixed", nil
	case len(types) > 0:
		return "null", nil
	case len(s.Properties) > 0:
		return "object", nil
	default:
		return "", nil
	}
}

func stringKind(format string) dtype.Kind {
	switch format {
	case "date":
		return dtype.Date
	case "date-time":
		return dtype.Datetime
	case "time":
		return dtype.Time
	case "duration":
		return dtype.Duration
	case "byte", "binary":
		return dtype.Binary
	default:
		return dtype.String
	}
}

func (c *converter) convertProperties(doc *Document, s *jsonschema.Schema, prefix string) ([]dtype.Field, error) {
	propsPath := joinPath(prefix, "properties")
	names := orderedKeys(s.Properties, doc.KeyOrder[propsPath])

	fields := make([]dtype.Field, 0, len(names))
	for _, name := range names {
		dt, err := c.convert(doc, s.Properties[name], joinPath(propsPath, name))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		fields = append(fields, dtype.Field{Name: name, Type: dt})
	}
	return fields, nil
}

// convertAllOf merges the properties of every member into one struct.
func (c *converter) convertAllOf(doc *Document, s *jsonschema.Schema, prefix string) (*dtype.DataType, error) {
	var fields []dtype.Field
	seen := make(map[string]int)

	members := append([]*jsonschema.Schema{}, s.AllOf...)
	if len(s.Properties) > 0 {
		members = append(members, &jsonschema.Schema{Type: "object", Properties: s.Properties})
	}
	for i, m := range members {
		memberPrefix := joinPath(prefix, "allOf")
		if i == len(s.AllOf) {
			memberPrefix = prefix
		}
		dt, err := c.convert(doc, m, memberPrefix)
		if err != nil {
			return nil, fmt.Errorf("allOf: %w", err)
		}
		if dt.Kind != dtype.Struct {
			return nil, fmt.Errorf("%w: allOf member is %s, not an object", ErrUnsupportedSchema, dt)
		}
		for _, f := range dt.Fields {
			if idx, ok := seen[f.Name]; ok {
				fields[idx] = f
				continue
			}
			seen[f.Name] = len(fields)
			fields = append(fields, f)
		}
	}
	return dtype.StructOf(fields...), nil
}

func (c *converter) convertRef(doc *Document, ref string) (*dtype.DataType, error) {
	key := doc.Path + ref
	if c.resolving[key] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveRef, ref)
	}
	c.resolving[key] = true
	defer delete(c.resolving, key)

	if IsFileRef(ref) {
		if c.loader == nil {
			return nil, fmt.Errorf("%w: external $ref %s without a loader", ErrUnsupportedSchema, ref)
		}
		target, err := c.loader.LoadRef(doc, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to load $ref %s: %w", ref, err)
		}
		_, fragment, _ := strings.Cut(ref, "#")
		if fragment == "" {
			return c.convert(target, target.Schema, "")
		}
		return c.convertRef(target, "#"+fragment)
	}

	section, name, ok := DefName(ref)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported $ref %s", ErrUnsupportedSchema, ref)
	}
	def, ok := doc.definition(section, name)
	if !ok {
		return nil, fmt.Errorf("%w: unresolved $ref %s", ErrUnsupportedSchema, ref)
	}
	return c.convert(doc, def, section+"."+name)
}

// definition looks name up in the given section of doc only.
func (doc *Document) definition(section, name string) (*jsonschema.Schema, bool) {
	var defs map[string]*jsonschema.Schema
	switch section {
	case SectionDefs:
		if doc.Schema != nil {
			defs = doc.Schema.Defs
		}
	case SectionDefinitions:
		if doc.Schema != nil {
			defs = doc.Schema.Definitions
		}
	case SectionComponents:
		defs = doc.Components
	}
	def, ok := defs[name]
	return def, ok
}

// orderedKeys returns the property names in document order. Names missing
// from the recorded order follow in sorted order.
func orderedKeys(props map[string]*jsonschema.Schema, order []string) []string {
	result := make([]string, 0, len(props))
	for _, key := range order {
		if _, ok := props[key]; ok {
			result = append(result, key)
		}
	}
	var rest []string
	for key := range props {
		if !lo.Contains(result, key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(result, rest...)
}
