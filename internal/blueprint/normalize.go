// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dacolabs/blueprint/internal/schema"
)

// DefaultRootName is the root key used for a single dataset when no name
// is configured.
const DefaultRootName = "DatasetModel"

// Dataset is anything able to produce its schema tree on demand.
type Dataset interface {
	CollectSchema(ctx context.Context) (*schema.Tree, error)
}

// Source is the input of a compilation: a single dataset (see Single) or
// an ordered, named collection of datasets (see Collection).
type Source interface {
	roots(ctx context.Context, defaultName string) ([]Root, bool, error)
}

// Root is one top-level schema submitted to the compiler.
type Root struct {
	Key  string       // key as given by the caller
	Name string       // Key converted to a class name
	Tree *schema.Tree // the root's schema
}

// RootSet is the normalized input of a compilation.
type RootSet struct {
	Roots []Root
	// Multi is set when more than one root was given; nested class names are
	// then suffixed with their root's name.
	Multi bool
}

type single struct {
	d Dataset
}

// Single wraps one dataset. Its root key is the configured root name.
func Single(d Dataset) Source {
	return single{d: d}
}

func (s single) roots(ctx context.Context, defaultName string) ([]Root, bool, error) {
	tree, err := s.d.CollectSchema(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("collect schema of %s: %w", defaultName, err)
	}
	return []Root{{Key: defaultName, Name: ClassName(defaultName), Tree: tree}}, false, nil
}

// Named pairs a dataset with its root key.
type Named struct {
	Name    string
	Dataset Dataset
}

// Collection is an ordered set of named datasets. A collection with a
// single entry behaves exactly like Single.
type Collection []Named

func (c Collection) roots(ctx context.Context, _ string) ([]Root, bool, error) {
	roots := make([]Root, 0, len(c))
	for _, n := range c {
		tree, err := n.Dataset.CollectSchema(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("collect schema of %s: %w", n.Name, err)
		}
		roots = append(roots, Root{Key: n.Name, Name: ClassName(n.Name), Tree: tree})
	}
	return roots, len(c) > 1, nil
}

// Normalize collects the schema of every dataset in src and decides the
// naming mode.
func Normalize(ctx context.Context, src Source, defaultName string, logger *slog.Logger) (*RootSet, error) {
	if defaultName == "" {
		defaultName = DefaultRootName
	}
	if logger == nil {
		logger = discard
	}

	roots, multi, err := src.roots(ctx, defaultName)
	if err != nil {
		return nil, err
	}
	for i, r := range roots {
		if r.Tree == nil {
			roots[i].Tree = schema.New()
		}
		logger.Debug("normalized root", "key", r.Key, "class", r.Name, "columns", roots[i].Tree.Len())
	}
	return &RootSet{Roots: roots, Multi: multi}, nil
}

var discard = slog.New(slog.DiscardHandler)
