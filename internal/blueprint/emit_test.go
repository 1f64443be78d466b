// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dacolabs/blueprint/internal/dtype"
	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree builds a schema tree from alternating name / dtype expression pairs.
func tree(t *testing.T, kv ...string) *schema.Tree {
	t.Helper()
	require.Zero(t, len(kv)%2, "tree needs name/type pairs")
	fields := make([]dtype.Field, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		dt, err := dtype.Parse(kv[i+1])
		require.NoError(t, err)
		fields = append(fields, dtype.Field{Name: kv[i], Type: dt})
	}
	tr, err := schema.FromFields(fields)
	require.NoError(t, err)
	return tr
}

func compile(t *testing.T, src Source, opts Options) *Module {
	t.Helper()
	rs, err := Normalize(context.Background(), src, opts.RootName, nil)
	require.NoError(t, err)
	mod, err := Compile(rs, opts)
	require.NoError(t, err)
	return mod
}

func TestCompile_SingleRoot(t *testing.T) {
	customers := tree(t,
		"id", "Int64",
		"first name", "String",
		"address", "Struct({street: String, zip: Int32})",
		"tags", "List(String)",
	)

	mod := compile(t, Single(customers), Options{RootName: "customers"})

	want := `import paguro as pg
from paguro.models import vfm

__all__ = ['Customers']

class Address(vfm.VFrameModel):
    street = pg.vcol(allow_nulls=False)
    zip = pg.vcol(allow_nulls=False)

class Customers(vfm.VFrameModel):
    id = pg.vcol(allow_nulls=False)
    first_name = pg.vcol(name="first name", allow_nulls=False)
    address: Address
    tags = pg.vcol.List(allow_nulls=False)
`
	assert.Equal(t, want, mod.Text)
	assert.Equal(t, []string{"Customers"}, mod.Roots)
	assert.Equal(t, []string{"Address", "Customers"}, mod.Classes)
}

func TestCompile_DefaultRootName(t *testing.T) {
	mod := compile(t, Single(tree(t, "a", "Int64")), Options{})
	assert.Equal(t, []string{"DatasetModel"}, mod.Roots)
	assert.Contains(t, mod.Text, "class DatasetModel(vfm.VFrameModel):")
}

func TestCompile_Deterministic(t *testing.T) {
	build := func() string {
		src := Single(tree(t,
			"a", "Int64",
			"b", "Struct({c: Struct({d: List(Struct({e: Date}))}), f: Array(Int8, 2)})",
			"g h", "Boolean",
		))
		return compile(t, src, Options{Dtypes: ModeValues}).Text
	}
	first := build()
	for range 5 {
		assert.Equal(t, first, build())
	}
}

func TestCompile_PostOrder(t *testing.T) {
	mod := compile(t, Single(tree(t,
		"outer", "Struct({middle: Struct({inner: Struct({v: Int64})})})",
	)), Options{RootName: "root"})

	assert.Equal(t, []string{"Inner", "Middle", "Outer", "Root"}, mod.Classes)

	for _, pair := range [][2]string{{"Inner", "Middle"}, {"Middle", "Outer"}, {"Outer", "Root"}} {
		def := strings.Index(mod.Text, "class "+pair[0]+"(")
		ref := strings.Index(mod.Text, ": "+pair[0]+"\n")
		require.NotEqual(t, -1, def)
		require.NotEqual(t, -1, ref)
		assert.Less(t, def, ref, "%s must be defined before %s references it", pair[0], pair[1])
	}
}

func TestCompile_MultiRootSuffixesNestedClasses(t *testing.T) {
	customers := tree(t, "id", "Int64", "address", "Struct({city: String})")
	suppliers := tree(t, "address", "Struct({city: String})", "name", "String")

	mod := compile(t, Collection{
		{Name: "customers", Dataset: customers},
		{Name: "suppliers", Dataset: suppliers},
	}, Options{})

	assert.Equal(t, []string{"Customers", "Suppliers"}, mod.Roots)
	assert.Equal(t, []string{"AddressCustomers", "Customers", "AddressSuppliers", "Suppliers"}, mod.Classes)
	assert.Contains(t, mod.Text, "__all__ = ['Customers', 'Suppliers']")
	assert.Contains(t, mod.Text, "    address: AddressCustomers\n")
	assert.Contains(t, mod.Text, "    address: AddressSuppliers\n")

	for _, ds := range []struct {
		name string
		tree *schema.Tree
	}{{"customers", customers}, {"suppliers", suppliers}} {
		single := compile(t, Single(ds.tree), Options{RootName: ds.name})
		assert.Contains(t, single.Classes, "Address")

		one := compile(t, Collection{{Name: ds.name, Dataset: ds.tree}}, Options{})
		assert.Equal(t, single.Text, one.Text, "a one-entry collection behaves like a single dataset")
	}
}

func TestCompile_MultiRootDeepNesting(t *testing.T) {
	mod := compile(t, Collection{
		{Name: "orders", Dataset: tree(t, "ship_to", "Struct({geo: Struct({lat: Float64})})")},
		{Name: "returns", Dataset: tree(t, "id", "Int64")},
	}, Options{})

	assert.Equal(t, []string{"GeoOrders", "ShipToOrders", "Orders", "Returns"}, mod.Classes)
}

func TestCompile_ClassNameCollisions(t *testing.T) {
	mod := compile(t, Single(tree(t,
		"a", "Struct({x: Struct({v: Int64})})",
		"b", "Struct({x: Struct({w: Int64})})",
		"c", "Struct({x: Struct({})})",
	)), Options{})

	assert.Equal(t, []string{"X", "A", "X2", "B", "X3", "C", "DatasetModel"}, mod.Classes)
	assert.Contains(t, mod.Text, "class A(vfm.VFrameModel):\n    x: X\n")
	assert.Contains(t, mod.Text, "class B(vfm.VFrameModel):\n    x: X2\n")
	assert.Contains(t, mod.Text, "class C(vfm.VFrameModel):\n    x: X3\n")
}

func TestCompile_RootKeysCollidingAfterConversion(t *testing.T) {
	mod := compile(t, Collection{
		{Name: "a-b", Dataset: tree(t, "v", "Int64")},
		{Name: "a_b", Dataset: tree(t, "w", "Int64")},
	}, Options{})

	assert.Equal(t, []string{"AB", "AB2"}, mod.Roots)
}

func TestCompile_AttributeCollisions(t *testing.T) {
	mod := compile(t, Single(tree(t,
		"a b", "Int64",
		"a-b", "Int64",
		"a_b", "Int64",
		"class", "String",
	)), Options{Nulls: NullsUnspecified})

	want := `class DatasetModel(vfm.VFrameModel):
    a_b = pg.vcol(name="a b")
    a_b_2 = pg.vcol(name="a-b")
    a_b_3 = pg.vcol(name="a_b")
    class_ = pg.vcol(name="class")
`
	assert.True(t, strings.HasSuffix(mod.Text, want), mod.Text)
}

func TestCompile_LeadingUnderscoreKeys(t *testing.T) {
	mod := compile(t, Single(tree(t,
		"_meta", "Struct({x: Int64})",
		"_id", "Int64",
	)), Options{Nulls: NullsUnspecified})

	// Struct attributes carry no name binding, so "_meta" is only
	// recoverable from the leaf columns' name= arguments.
	want := `class Meta(vfm.VFrameModel):
    x = pg.vcol()

class DatasetModel(vfm.VFrameModel):
    meta: Meta
    id = pg.vcol(name="_id")
`
	assert.True(t, strings.HasSuffix(mod.Text, want), mod.Text)
}

func TestCompile_AttributesAreLocalToClass(t *testing.T) {
	mod := compile(t, Single(tree(t,
		"id", "Int64",
		"child", "Struct({id: Int64})",
	)), Options{Nulls: NullsUnspecified})

	assert.Contains(t, mod.Text, "class Child(vfm.VFrameModel):\n    id = pg.vcol()\n")
	assert.Contains(t, mod.Text, "class DatasetModel(vfm.VFrameModel):\n    id = pg.vcol()\n")
}

func TestCompile_EmptyStruct(t *testing.T) {
	mod := compile(t, Single(tree(t, "meta", "Struct({})")), Options{RootName: "events"})

	want := `import paguro as pg
from paguro.models import vfm

__all__ = ['Events']

class Meta(vfm.VFrameModel):
    pass

class Events(vfm.VFrameModel):
    meta: Meta
`
	assert.Equal(t, want, mod.Text)
}

func TestCompile_EmptyRoot(t *testing.T) {
	mod := compile(t, Single(schema.New()), Options{})
	assert.True(t, strings.HasSuffix(mod.Text, "class DatasetModel(vfm.VFrameModel):\n    pass\n"))
}

func TestCompile_Modes(t *testing.T) {
	src := tree(t,
		"id", "Int64",
		"tags", "List(String)",
		"vec", "Array(Float64, 3)",
		"items", "List(Struct({sku: String, qty: Int32}))",
		"my col", "Date",
	)

	tests := []struct {
		name      string
		opts      Options
		wantLines []string
		polars    bool
	}{
		{
			name: "off",
			opts: Options{Dtypes: ModeOff, Nulls: NullsForbidden},
			wantLines: []string{
				"    id = pg.vcol(allow_nulls=False)",
				"    tags = pg.vcol.List(allow_nulls=False)",
				"    vec = pg.vcol.Array(allow_nulls=False)",
				"    items = pg.vcol.List(allow_nulls=False)",
				`    my_col = pg.vcol(name="my col", allow_nulls=False)`,
			},
		},
		{
			name: "off without nullability",
			opts: Options{Dtypes: ModeOff, Nulls: NullsUnspecified},
			wantLines: []string{
				"    id = pg.vcol()",
				"    tags = pg.vcol.List()",
				`    my_col = pg.vcol(name="my col")`,
			},
		},
		{
			name: "tagged",
			opts: Options{Dtypes: ModeTagged, Nulls: NullsAllowed},
			wantLines: []string{
				"    id = pg.vcol.Int64(allow_nulls=True)",
				"    tags = pg.vcol.List(allow_nulls=True)",
				"    vec = pg.vcol.Array(allow_nulls=True)",
				"    items = pg.vcol.List(allow_nulls=True)",
				`    my_col = pg.vcol.Date(name="my col", allow_nulls=True)`,
			},
		},
		{
			name: "tagged without nullability",
			opts: Options{Dtypes: ModeTagged, Nulls: NullsUnspecified},
			wantLines: []string{
				"    id = pg.vcol.Int64()",
				"    tags = pg.vcol.List()",
			},
		},
		{
			name:   "values",
			opts:   Options{Dtypes: ModeValues, Nulls: NullsForbidden},
			polars: true,
			wantLines: []string{
				"    id = pg.vcol(dtype=pl.Int64, allow_nulls=False)",
				"    tags = pg.vcol.List(dtype=pl.List(pl.String), allow_nulls=False)",
				"    vec = pg.vcol.Array(dtype=pl.Array(pl.Float64, 3), allow_nulls=False)",
				"    items = pg.vcol.List(dtype=pl.List(pl.Struct([pl.Field('sku', pl.String), pl.Field('qty', pl.Int32)])), allow_nulls=False)",
				`    my_col = pg.vcol(dtype=pl.Date, name="my col", allow_nulls=False)`,
			},
		},
		{
			name:   "values without nullability",
			opts:   Options{Dtypes: ModeValues, Nulls: NullsUnspecified},
			polars: true,
			wantLines: []string{
				"    id = pg.vcol(dtype=pl.Int64)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := compile(t, Single(src), tt.opts)
			lines := strings.Split(mod.Text, "\n")
			for _, want := range tt.wantLines {
				assert.Contains(t, lines, want)
			}
			if tt.polars {
				assert.Contains(t, lines, "import polars as pl")
			} else {
				assert.NotContains(t, mod.Text, "polars")
			}
		})
	}
}

func TestCompile_ValuesNestedComposite(t *testing.T) {
	mod := compile(t, Single(tree(t,
		"matrix", `List(Array(Struct({"x y": List(Int8), "it's": Struct({})}), 2))`,
	)), Options{Dtypes: ModeValues, Nulls: NullsUnspecified})

	assert.Contains(t, mod.Text,
		`    matrix = pg.vcol.List(dtype=pl.List(pl.Array(pl.Struct([pl.Field('x y', pl.List(pl.Int8)), pl.Field("it's", pl.Struct([]))]), 2)))`)
}

func TestCompile_UnknownMode(t *testing.T) {
	rs, err := Normalize(context.Background(), Single(schema.New()), "", nil)
	require.NoError(t, err)
	_, err = Compile(rs, Options{Dtypes: Mode(42)})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestValidate_ReportsEveryPath(t *testing.T) {
	bad := tree(t,
		"bad key", `Struct({"also bad": Struct({x: Int64}), ok: Struct({class: Struct({})})})`,
		"good leaf!", "Int64",
		"fine", "Struct({})",
		"2nd", "Struct({})",
	)
	rs, err := Normalize(context.Background(), Collection{
		{Name: "one", Dataset: bad},
		{Name: "two", Dataset: bad},
	}, "", nil)
	require.NoError(t, err)

	err = Validate(rs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	var identErr *InvalidIdentifierError
	require.True(t, errors.As(err, &identErr))
	assert.Equal(t, []string{
		"one.bad key", "one.bad key.also bad", "one.bad key.ok.class", "one.2nd",
		"two.bad key", "two.bad key.also bad", "two.bad key.ok.class", "two.2nd",
	}, identErr.Paths)
	for _, p := range identErr.Paths {
		assert.Contains(t, err.Error(), p)
	}
	assert.NotContains(t, err.Error(), "good leaf!")

	_, err = Compile(rs, Options{})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestValidate_SingleRootPathsOmitRootKey(t *testing.T) {
	bad := tree(t, "bad key", `Struct({"also bad": Struct({})})`)
	for _, src := range []Source{
		Single(bad),
		Collection{{Name: "orders", Dataset: bad}},
	} {
		rs, err := Normalize(context.Background(), src, "", nil)
		require.NoError(t, err)

		var identErr *InvalidIdentifierError
		require.ErrorAs(t, Validate(rs), &identErr)
		assert.Equal(t, []string{"bad key", "bad key.also bad"}, identErr.Paths)
	}
}

func TestValidate_LeafKeysExempt(t *testing.T) {
	rs, err := Normalize(context.Background(), Single(tree(t, "not valid!", "Int64", "for", "String")), "", nil)
	require.NoError(t, err)
	assert.NoError(t, Validate(rs))
}
