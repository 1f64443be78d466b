// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dacolabs/blueprint/internal/dtype"
)

// Names referenced by the generated module.
const (
	columnCallable = "pg.vcol"
	modelBase      = "vfm.VFrameModel"
	valueNamespace = "pl"
)

var (
	// ErrUnknownMode indicates an unrecognized type-rendering mode.
	ErrUnknownMode = errors.New("unknown dtype rendering mode")

	// ErrUnknownNullPolicy indicates an unrecognized nullability policy.
	ErrUnknownNullPolicy = errors.New("unknown nullability policy")
)

// Mode selects how leaf data types are rendered.
type Mode int

const (
	// ModeOff emits declarations without type information.
	ModeOff Mode = iota
	// ModeTagged emits pg.vcol.<Tag>(...) constructors.
	ModeTagged
	// ModeValues emits explicit, recursive pl.<Type> value expressions.
	ModeValues
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeTagged:
		return "on"
	case ModeValues:
		return "as_values"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "off", "on" or "as_values". "false" and "true" are
// accepted for off and on.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "false":
		return ModeOff, nil
	case "on", "true":
		return ModeTagged, nil
	case "as_values", "values":
		return ModeValues, nil
	default:
		return ModeOff, fmt.Errorf("%w: %q (expected off, on or as_values)", ErrUnknownMode, s)
	}
}

// NullPolicy controls the allow_nulls argument of leaf declarations.
type NullPolicy int

const (
	// NullsForbidden emits allow_nulls=False.
	NullsForbidden NullPolicy = iota
	// NullsAllowed emits allow_nulls=True.
	NullsAllowed
	// NullsUnspecified omits the argument.
	NullsUnspecified
)

func (p NullPolicy) String() string {
	switch p {
	case NullsForbidden:
		return "false"
	case NullsAllowed:
		return "true"
	case NullsUnspecified:
		return "none"
	default:
		return fmt.Sprintf("NullPolicy(%d)", int(p))
	}
}

// ParseNullPolicy parses "true", "false" or "none".
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false":
		return NullsForbidden, nil
	case "true":
		return NullsAllowed, nil
	case "none", "null", "unspecified":
		return NullsUnspecified, nil
	default:
		return NullsForbidden, fmt.Errorf("%w: %q (expected true, false or none)", ErrUnknownNullPolicy, s)
	}
}

// kwarg returns the allow_nulls keyword argument, or "" when unspecified.
func (p NullPolicy) kwarg() string {
	switch p {
	case NullsAllowed:
		return "allow_nulls=True"
	case NullsForbidden:
		return "allow_nulls=False"
	default:
		return ""
	}
}

// renderer turns a leaf data type plus trailing keyword arguments into a
// column declaration expression.
type renderer func(dt *dtype.DataType, kwargs []string) string

var renderers = map[Mode]renderer{
	ModeOff:    renderBare,
	ModeTagged: renderTagged,
	ModeValues: renderValues,
}

// renderBare keeps the dedicated List/Array heads so the shape survives.
func renderBare(dt *dtype.DataType, kwargs []string) string {
	if isSequence(dt) {
		return call(columnCallable+"."+string(dt.Kind), kwargs)
	}
	return call(columnCallable, kwargs)
}

// renderTagged never carries element types for List and Array.
func renderTagged(dt *dtype.DataType, kwargs []string) string {
	return call(columnCallable+"."+string(kindOf(dt)), kwargs)
}

func renderValues(dt *dtype.DataType, kwargs []string) string {
	args := append([]string{"dtype=" + valueExpr(dt)}, kwargs...)
	if isSequence(dt) {
		return call(columnCallable+"."+string(dt.Kind), args)
	}
	return call(columnCallable, args)
}

// valueExpr renders the full type value expression, recursing into
// composite types.
func valueExpr(dt *dtype.DataType) string {
	switch kindOf(dt) {
	case dtype.List:
		return fmt.Sprintf("%s.List(%s)", valueNamespace, valueExpr(dt.Inner))
	case dtype.Array:
		return fmt.Sprintf("%s.Array(%s, %d)", valueNamespace, valueExpr(dt.Inner), dt.Width)
	case dtype.Struct:
		items := make([]string, 0, len(dt.Fields))
		for _, f := range dt.Fields {
			items = append(items, fmt.Sprintf("%s.Field(%s, %s)", valueNamespace, pyRepr(f.Name), valueExpr(f.Type)))
		}
		return fmt.Sprintf("%s.Struct([%s])", valueNamespace, strings.Join(items, ", "))
	default:
		return valueNamespace + "." + string(kindOf(dt))
	}
}

func kindOf(dt *dtype.DataType) dtype.Kind {
	if dt == nil {
		return dtype.Unknown
	}
	return dt.Kind
}

func isSequence(dt *dtype.DataType) bool {
	k := kindOf(dt)
	return k == dtype.List || k == dtype.Array
}

func call(head string, args []string) string {
	return head + "(" + strings.Join(args, ", ") + ")"
}

// pyString renders s as a double-quoted string literal. Column names are
// valid UTF-8 (schema.Tree rejects others), so no \x escapes are emitted.
func pyString(s string) string {
	return strconv.Quote(s)
}

// pyRepr renders s the way the target language's repr() would: single
// quotes unless s contains a single quote and no double quote.
func pyRepr(s string) string {
	q := strconv.Quote(s)
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return q
	}
	inner := q[1 : len(q)-1]
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, "'", `\'`)
	return "'" + inner + "'"
}
