// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package schema provides the ordered schema tree of a columnar dataset.
//
// A Tree maps column names to either a leaf data type or a nested Tree
// (a struct column). Column order is significant and preserved.
package schema

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dacolabs/blueprint/internal/dtype"
)

var (
	// ErrDuplicateColumn indicates a column name that already exists in the tree.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrInvalidColumnName indicates a column or struct field name that is
	// not valid UTF-8. Such names cannot be written as Python string literals.
	ErrInvalidColumnName = errors.New("column name is not valid UTF-8")
)

// Column is one entry of a Tree. Exactly one of Type and Struct is set.
type Column struct {
	Name   string
	Type   *dtype.DataType // leaf descriptor
	Struct *Tree           // nested struct column
}

// IsStruct reports whether the column is a nested struct.
func (c Column) IsStruct() bool {
	return c.Struct != nil
}

// Tree is an ordered mapping from column name to leaf type or nested tree.
type Tree struct {
	columns []Column
	index   map[string]int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{index: make(map[string]int)}
}

// Add appends a leaf column. Struct-typed columns are unnested into a
// nested tree; struct values inside List or Array stay part of the leaf.
func (t *Tree) Add(name string, dt *dtype.DataType) error {
	if dt != nil && dt.Kind == dtype.Struct {
		sub, err := FromFields(dt.Fields)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return t.AddStruct(name, sub)
	}
	if dt == nil {
		dt = dtype.Scalar(dtype.Unknown)
	}
	return t.add(Column{Name: name, Type: dt})
}

// AddStruct appends a nested struct column.
func (t *Tree) AddStruct(name string, sub *Tree) error {
	if sub == nil {
		sub = New()
	}
	return t.add(Column{Name: name, Struct: sub})
}

func (t *Tree) add(c Column) error {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if !utf8.ValidString(c.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidColumnName, c.Name)
	}
	if name, ok := invalidFieldName(c.Type); ok {
		return fmt.Errorf("%s: %w: %q", c.Name, ErrInvalidColumnName, name)
	}
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// invalidFieldName finds a struct field name inside a leaf type, such as
// List(Struct(...)), that is not valid UTF-8.
func invalidFieldName(dt *dtype.DataType) (string, bool) {
	if dt == nil {
		return "", false
	}
	for _, f := range dt.Fields {
		if !utf8.ValidString(f.Name) {
			return f.Name, true
		}
		if name, ok := invalidFieldName(f.Type); ok {
			return name, true
		}
	}
	return invalidFieldName(dt.Inner)
}

// Columns returns the columns in insertion order.
func (t *Tree) Columns() []Column {
	if t == nil {
		return nil
	}
	return t.columns
}

// Len returns the number of columns.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Lookup returns the column with the given name.
func (t *Tree) Lookup(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// CollectSchema returns the tree itself, so a Tree can be used wherever a
// dataset-like schema provider is expected.
func (t *Tree) CollectSchema(context.Context) (*Tree, error) {
	return t, nil
}

// FromFields builds a tree from an ordered field list, unnesting struct
// fields into nested trees.
func FromFields(fields []dtype.Field) (*Tree, error) {
	t := New()
	for _, f := range fields {
		if err := t.Add(f.Name, f.Type); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Fields flattens the tree back into an ordered field list; nested trees
// become struct value types.
func (t *Tree) Fields() []dtype.Field {
	fields := make([]dtype.Field, 0, t.Len())
	for _, c := range t.Columns() {
		if c.IsStruct() {
			fields = append(fields, dtype.Field{Name: c.Name, Type: dtype.StructOf(c.Struct.Fields()...)})
			continue
		}
		fields = append(fields, dtype.Field{Name: c.Name, Type: c.Type})
	}
	return fields
}
