// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package schema

import (
	"iter"
	"strings"

	"github.com/samber/lo"
)

// Path is the list of column names from a tree's root to a column.
type Path []string

// String joins the path with dots.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Walk returns an iterator over every column of the tree, depth-first in
// column order, paired with its path. A struct column is yielded before
// its children.
func Walk(t *Tree) iter.Seq2[Path, Column] {
	return func(yield func(Path, Column) bool) {
		walk(t, nil, yield)
	}
}

func walk(t *Tree, prefix Path, yield func(Path, Column) bool) bool {
	for _, c := range t.Columns() {
		p := append(append(Path{}, prefix...), c.Name)
		if !yield(p, c) {
			return false
		}
		if c.IsStruct() && !walk(c.Struct, p, yield) {
			return false
		}
	}
	return true
}

// Names returns the column names of the tree in order.
func (t *Tree) Names() []string {
	return lo.Map(t.Columns(), func(c Column, _ int) string { return c.Name })
}

// Depth returns the number of struct levels below the tree (0 for a flat tree).
func (t *Tree) Depth() int {
	return lo.Max(lo.FilterMap(t.Columns(), func(c Column, _ int) (int, bool) {
		if !c.IsStruct() {
			return 0, false
		}
		return c.Struct.Depth() + 1, true
	}))
}
