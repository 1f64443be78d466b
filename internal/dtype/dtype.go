// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package dtype describes column data types of a columnar dataset.
//
// A DataType is either a scalar tag (Int64, String, ...) or one of the
// composite kinds List, Array and Struct, which carry their element type,
// fixed width and field list respectively.
package dtype

import (
	"strconv"
	"strings"
)

// Kind is the tag name of a data type, e.g. "Int64" or "List".
type Kind string

// Known kinds. The names match the tags understood by the generated models.
const (
	Int8        Kind = "Int8"
	Int16       Kind = "Int16"
	Int32       Kind = "Int32"
	Int64       Kind = "Int64"
	Int128      Kind = "Int128"
	UInt8       Kind = "UInt8"
	UInt16      Kind = "UInt16"
	UInt32      Kind = "UInt32"
	UInt64      Kind = "UInt64"
	UInt128     Kind = "UInt128"
	Float32     Kind = "Float32"
	Float64     Kind = "Float64"
	Decimal     Kind = "Decimal"
	String      Kind = "String"
	Binary      Kind = "Binary"
	Boolean     Kind = "Boolean"
	Date        Kind = "Date"
	Datetime    Kind = "Datetime"
	Duration    Kind = "Duration"
	Time        Kind = "Time"
	Categorical Kind = "Categorical"
	Enum        Kind = "Enum"
	Null        Kind = "Null"
	Object      Kind = "Object"
	Unknown     Kind = "Unknown"
	List        Kind = "List"
	Array       Kind = "Array"
	Struct      Kind = "Struct"
)

var knownKinds = map[Kind]struct{}{
	Int8: {}, Int16: {}, Int32: {}, Int64: {}, Int128: {},
	UInt8: {}, UInt16: {}, UInt32: {}, UInt64: {}, UInt128: {},
	Float32: {}, Float64: {}, Decimal: {},
	String: {}, Binary: {}, Boolean: {},
	Date: {}, Datetime: {}, Duration: {}, Time: {},
	Categorical: {}, Enum: {}, Null: {}, Object: {}, Unknown: {},
	List: {}, Array: {}, Struct: {},
}

// aliases maps alternative spellings to their canonical kind.
var aliases = map[string]Kind{
	"Utf8": String,
	"Str":  String,
	"Bool": Boolean,
}

// LookupKind resolves a tag name (or one of its aliases) to a Kind.
func LookupKind(name string) (Kind, bool) {
	if k, ok := aliases[name]; ok {
		return k, true
	}
	k := Kind(name)
	_, ok := knownKinds[k]
	return k, ok
}

// IsNested reports whether the kind carries a composite payload.
func (k Kind) IsNested() bool {
	return k == List || k == Array || k == Struct
}

// DataType is a leaf descriptor: a scalar tag or a composite type.
type DataType struct {
	Kind   Kind
	Inner  *DataType // element type of List and Array
	Width  int       // fixed width of Array
	Fields []Field   // ordered fields of Struct
}

// Field is a named member of a Struct data type.
type Field struct {
	Name string
	Type *DataType
}

// Scalar returns a data type without composite payload.
func Scalar(k Kind) *DataType {
	return &DataType{Kind: k}
}

// ListOf returns a variable-length list of inner.
func ListOf(inner *DataType) *DataType {
	return &DataType{Kind: List, Inner: inner}
}

// ArrayOf returns a fixed-size array of width elements of inner.
func ArrayOf(inner *DataType, width int) *DataType {
	return &DataType{Kind: Array, Inner: inner, Width: width}
}

// StructOf returns a struct value type with the given ordered fields.
func StructOf(fields ...Field) *DataType {
	return &DataType{Kind: Struct, Fields: fields}
}

// String renders the canonical textual form accepted by Parse.
func (d *DataType) String() string {
	var sb strings.Builder
	d.write(&sb)
	return sb.String()
}

func (d *DataType) write(sb *strings.Builder) {
	if d == nil {
		sb.WriteString(string(Unknown))
		return
	}
	switch d.Kind {
	case List:
		sb.WriteString("List(")
		d.Inner.write(sb)
		sb.WriteString(")")
	case Array:
		sb.WriteString("Array(")
		d.Inner.write(sb)
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(d.Width))
		sb.WriteString(")")
	case Struct:
		sb.WriteString("Struct({")
		for i, f := range d.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(f.Name))
			sb.WriteString(": ")
			f.Type.write(sb)
		}
		sb.WriteString("})")
	default:
		sb.WriteString(string(d.Kind))
	}
}

// Equal reports whether two data types describe the same shape.
func (d *DataType) Equal(o *DataType) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Width != o.Width || len(d.Fields) != len(o.Fields) {
		return false
	}
	if (d.Inner != nil || o.Inner != nil) && !d.Inner.Equal(o.Inner) {
		return false
	}
	for i := range d.Fields {
		if d.Fields[i].Name != o.Fields[i].Name || !d.Fields[i].Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	return true
}
