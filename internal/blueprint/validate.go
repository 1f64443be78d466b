// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import (
	"errors"
	"strings"

	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/samber/lo"
)

// ErrInvalidIdentifier indicates struct column names that cannot be used
// as attribute names.
var ErrInvalidIdentifier = errors.New("invalid identifiers")

// InvalidIdentifierError lists every struct column whose name is not a
// legal identifier, as dotted paths from the root. With several roots the
// paths start with the root key.
type InvalidIdentifierError struct {
	Paths []string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifiers: struct column name must be a valid Python identifier: " +
		strings.Join(e.Paths, ", ")
}

// Is makes errors.Is(err, ErrInvalidIdentifier) hold.
func (e *InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// Validate checks that every nested struct key of every root is a legal
// identifier. Leaf keys are not checked; they are sanitized instead.
// All offending paths are reported at once.
func Validate(rs *RootSet) error {
	var bad []string
	for _, r := range rs.Roots {
		for path, col := range schema.Walk(r.Tree) {
			if col.IsStruct() && !IsIdentifier(col.Name) {
				if rs.Multi {
					path = append(schema.Path{r.Key}, path...)
				}
				bad = append(bad, path.String())
			}
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &InvalidIdentifierError{Paths: lo.Uniq(bad)}
}
