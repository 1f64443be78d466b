// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package dtype

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	// ErrSyntax indicates a data type expression that cannot be parsed.
	ErrSyntax = errors.New("invalid data type expression")

	// ErrUnknownType indicates a tag name that is not a known kind.
	ErrUnknownType = errors.New("unknown data type")
)

// Parse reads a data type expression such as
//
//	Int64
//	List(String)
//	Array(Float64, 3)
//	Struct({id: Int64, "display name": String})
//
// Composite types nest arbitrarily.
func Parse(s string) (*DataType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	tree, err := parser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrSyntax, s, err)
	}
	dt, err := fromNode(tree.Node)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	return dt, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level tables.
func MustParse(s string) *DataType {
	dt, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return dt
}

func fromNode(node ast.Node) (*DataType, error) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return scalarFromName(n.Value)
	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected callee", ErrSyntax)
		}
		return fromCall(callee.Value, n.Arguments)
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrSyntax, node)
	}
}

func scalarFromName(name string) (*DataType, error) {
	k, ok := LookupKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	switch k {
	case List, Array:
		return nil, fmt.Errorf("%w: %s requires an element type", ErrSyntax, k)
	case Struct:
		return StructOf(), nil
	}
	return Scalar(k), nil
}

func fromCall(name string, args []ast.Node) (*DataType, error) {
	k, ok := LookupKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}

	switch k {
	case List:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: List takes 1 argument, got %d", ErrSyntax, len(args))
		}
		inner, err := fromNode(args[0])
		if err != nil {
			return nil, err
		}
		return ListOf(inner), nil

	case Array:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: Array takes 2 arguments, got %d", ErrSyntax, len(args))
		}
		inner, err := fromNode(args[0])
		if err != nil {
			return nil, err
		}
		width, ok := args[1].(*ast.IntegerNode)
		if !ok || width.Value <= 0 {
			return nil, fmt.Errorf("%w: Array width must be a positive integer", ErrSyntax)
		}
		return ArrayOf(inner, width.Value), nil

	case Struct:
		if len(args) == 0 {
			return StructOf(), nil
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: Struct takes 1 argument, got %d", ErrSyntax, len(args))
		}
		m, ok := args[0].(*ast.MapNode)
		if !ok {
			return nil, fmt.Errorf("%w: Struct expects a {name: type} mapping", ErrSyntax)
		}
		return structFromMap(m)

	default:
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", ErrSyntax, k)
		}
		return Scalar(k), nil
	}
}

func structFromMap(m *ast.MapNode) (*DataType, error) {
	fields := make([]Field, 0, len(m.Pairs))
	seen := make(map[string]struct{}, len(m.Pairs))
	for _, p := range m.Pairs {
		pair, ok := p.(*ast.PairNode)
		if !ok {
			return nil, fmt.Errorf("%w: malformed struct field", ErrSyntax)
		}
		key, ok := pair.Key.(*ast.StringNode)
		if !ok {
			return nil, fmt.Errorf("%w: struct field names must be identifiers or strings", ErrSyntax)
		}
		if _, dup := seen[key.Value]; dup {
			return nil, fmt.Errorf("%w: duplicate struct field %q", ErrSyntax, key.Value)
		}
		seen[key.Value] = struct{}{}

		ft, err := fromNode(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key.Value, err)
		}
		fields = append(fields, Field{Name: key.Value, Type: ft})
	}
	return StructOf(fields...), nil
}
