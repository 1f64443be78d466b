// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dacolabs/blueprint/internal/dtype"
	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/jackc/pgx/v5"
)

// ErrRecursiveComposite indicates a composite type that contains itself.
var ErrRecursiveComposite = errors.New("recursive composite type")

// Table is a dataset whose schema is read from a PostgreSQL table, view or
// composite type.
type Table struct {
	DSN  string
	Name string // optionally schema-qualified, e.g. "sales.orders"
}

// CollectSchema connects to the database and reads the table's columns.
func (t Table) CollectSchema(ctx context.Context) (*schema.Tree, error) {
	conn, err := pgx.Connect(ctx, t.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(ctx) //nolint:errcheck

	return tableTree(ctx, pgCatalog{conn: conn}, t.Name)
}

// pgType is a row of pg_type, reduced to what the mapping needs.
type pgType struct {
	Name  string // typname, e.g. "int4" or "_text"
	Kind  string // typtype: b(ase), c(omposite), d(omain), e(num), r(ange), m(ultirange), p(seudo)
	Elem  uint32 // element type of arrays
	RelID uint32 // relation of composite types
	Base  uint32 // base type of domains
}

type pgColumn struct {
	Name string
	Type pgType
}

// catalog answers the system catalog queries needed to describe a table.
type catalog interface {
	relation(ctx context.Context, name string) (uint32, error)
	columns(ctx context.Context, relid uint32) ([]pgColumn, error)
	typeByOID(ctx context.Context, oid uint32) (pgType, error)
}

const (
	relationQuery = `SELECT $1::regclass::oid`

	columnsQuery = `
SELECT a.attname, t.typname, t.typtype::text, t.typelem, t.typrelid, t.typbasetype
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

	typeQuery = `
SELECT t.typname, t.typtype::text, t.typelem, t.typrelid, t.typbasetype
FROM pg_catalog.pg_type t
WHERE t.oid = $1`
)

type pgCatalog struct {
	conn *pgx.Conn
}

func (c pgCatalog) relation(ctx context.Context, name string) (uint32, error) {
	var oid uint32
	if err := c.conn.QueryRow(ctx, relationQuery, name).Scan(&oid); err != nil {
		return 0, fmt.Errorf("relation %q: %w", name, err)
	}
	return oid, nil
}

func (c pgCatalog) columns(ctx context.Context, relid uint32) ([]pgColumn, error) {
	rows, err := c.conn.Query(ctx, columnsQuery, relid)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (pgColumn, error) {
		var col pgColumn
		err := row.Scan(&col.Name, &col.Type.Name, &col.Type.Kind, &col.Type.Elem, &col.Type.RelID, &col.Type.Base)
		return col, err
	})
}

func (c pgCatalog) typeByOID(ctx context.Context, oid uint32) (pgType, error) {
	var t pgType
	err := c.conn.QueryRow(ctx, typeQuery, oid).Scan(&t.Name, &t.Kind, &t.Elem, &t.RelID, &t.Base)
	if err != nil {
		return pgType{}, fmt.Errorf("type %d: %w", oid, err)
	}
	return t, nil
}

// describer resolves catalog types into data types, following arrays,
// domains and composite types.
type describer struct {
	cat       catalog
	resolving map[uint32]bool
}

func tableTree(ctx context.Context, cat catalog, name string) (*schema.Tree, error) {
	relid, err := cat.relation(ctx, name)
	if err != nil {
		return nil, err
	}
	d := &describer{cat: cat, resolving: make(map[uint32]bool)}
	fields, err := d.relationFields(ctx, relid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return schema.FromFields(fields)
}

func (d *describer) relationFields(ctx context.Context, relid uint32) ([]dtype.Field, error) {
	if d.resolving[relid] {
		return nil, fmt.Errorf("%w: relation %d", ErrRecursiveComposite, relid)
	}
	d.resolving[relid] = true
	defer delete(d.resolving, relid)

	cols, err := d.cat.columns(ctx, relid)
	if err != nil {
		return nil, err
	}
	fields := make([]dtype.Field, 0, len(cols))
	for _, col := range cols {
		dt, err := d.describe(ctx, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		fields = append(fields, dtype.Field{Name: col.Name, Type: dt})
	}
	return fields, nil
}

func (d *describer) describe(ctx context.Context, t pgType) (*dtype.DataType, error) {
	switch {
	case t.Elem != 0 && len(t.Name) > 0 && t.Name[0] == '_':
		elem, err := d.cat.typeByOID(ctx, t.Elem)
		if err != nil {
			return nil, err
		}
		inner, err := d.describe(ctx, elem)
		if err != nil {
			return nil, err
		}
		return dtype.ListOf(inner), nil
	case t.Kind == "c":
		fields, err := d.relationFields(ctx, t.RelID)
		if err != nil {
			return nil, fmt.Errorf("composite %s: %w", t.Name, err)
		}
		return dtype.StructOf(fields...), nil
	case t.Kind == "d":
		base, err := d.cat.typeByOID(ctx, t.Base)
		if err != nil {
			return nil, err
		}
		return d.describe(ctx, base)
	case t.Kind == "e":
		return dtype.Scalar(dtype.Enum), nil
	default:
		return dtype.Scalar(pgScalarKind(t.Name)), nil
	}
}

// pgScalarKind maps a built-in PostgreSQL type name to a dtype kind.
func pgScalarKind(name string) dtype.Kind {
	switch name {
	case "int2":
		return dtype.Int16
	case "int4":
		return dtype.Int32
	case "int8":
		return dtype.Int64
	case "oid", "xid", "cid":
		return dtype.UInt32
	case "float4":
		return dtype.Float32
	case "float8":
		return dtype.Float64
	case "numeric", "money":
		return dtype.Decimal
	case "text", "varchar", "bpchar", "char", "name", "citext", "uuid",
		"json", "jsonb", "xml", "inet", "cidr", "macaddr", "macaddr8":
		return dtype.String
	case "bytea":
		return dtype.Binary
	case "bool":
		return dtype.Boolean
	case "date":
		return dtype.Date
	case "timestamp", "timestamptz":
		return dtype.Datetime
	case "time", "timetz":
		return dtype.Time
	case "interval":
		return dtype.Duration
	case "void", "unknown":
		return dtype.Null
	default:
		return dtype.Unknown
	}
}
