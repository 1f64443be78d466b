// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dacolabs/blueprint/internal/config"
	"github.com/dacolabs/blueprint/internal/session"
	"github.com/dacolabs/blueprint/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNamed(t *testing.T) {
	tests := []struct {
		arg, name, path string
	}{
		{"orders.yaml", "", "orders.yaml"},
		{"orders=data/orders.yaml", "orders", "data/orders.yaml"},
		{"data/a=b.yaml", "", "data/a=b.yaml"},
		{"=orders.yaml", "", "=orders.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, path := splitNamed(tt.arg)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestBaseAndTableName(t *testing.T) {
	assert.Equal(t, "orders", baseName("data/orders.schema.json"))
	assert.Equal(t, "orders", baseName("orders"))
	assert.Equal(t, ".hidden", baseName(".hidden"))
	assert.Equal(t, "orders", tableName("sales.orders"))
	assert.Equal(t, "orders", tableName("orders"))
}

func TestArgInputs(t *testing.T) {
	inputs, err := argInputs(&inputOptions{}, []string{"data/orders.parquet"}, nil)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Empty(t, inputs[0].name)
	assert.Equal(t, source.File{Path: "data/orders.parquet"}, inputs[0].dataset)

	opts := &inputOptions{format: "jsonschema", tables: []string{"sales.customers"}}
	inputs, err = argInputs(opts, []string{"data/orders.json"}, env(map[string]string{"DATABASE_URL": "postgres://db/shop"}))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "orders", inputs[0].name)
	assert.Equal(t, source.File{Path: "data/orders.json", Format: source.FormatJSONSchema}, inputs[0].dataset)
	assert.Equal(t, "customers", inputs[1].name)
	assert.Equal(t, source.Table{DSN: "postgres://db/shop", Name: "sales.customers"}, inputs[1].dataset)
}

func TestArgInputs_DataProduct(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.opendpi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`opendpi: "1.0.0"
ports:
  orders:
    schema:
      type: object
      properties:
        id:
          type: integer
  archive:
    description: no schema
`), 0o600))

	inputs, err := argInputs(&inputOptions{}, []string{"sales=" + path}, nil)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "sales_orders", inputs[0].name)
	assert.Equal(t, path+"#orders", inputs[0].label)

	_, err = argInputs(&inputOptions{}, []string{filepath.Join(dir, "missing.opendpi.yaml")}, nil)
	assert.Error(t, err)
}

func TestConfigInputs(t *testing.T) {
	proj := &session.Context{
		Dir: "/srv/project",
		Config: &config.Config{
			Version: 1,
			Datasets: []config.Dataset{
				{Name: "orders", Source: "schemas/orders.yaml", Format: "yaml"},
				{Postgres: &config.Postgres{DSN: "postgres://${PGUSER}@db/shop", Table: "sales.customers"}},
			},
		},
	}

	inputs, err := configInputs(proj, env(map[string]string{"PGUSER": "reader"}))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "orders", inputs[0].name)
	assert.Equal(t, source.File{Path: "/srv/project/schemas/orders.yaml", Format: source.FormatYAML}, inputs[0].dataset)
	assert.Equal(t, "customers", inputs[1].name)
	assert.Equal(t, source.Table{DSN: "postgres://reader@db/shop", Name: "sales.customers"}, inputs[1].dataset)
}

func TestPlanSource(t *testing.T) {
	single := &plan{inputs: []input{{label: "a.yaml"}}}
	assert.Equal(t, "a.yaml", single.labels())

	named := &plan{inputs: []input{{name: "a", label: "a.yaml"}, {name: "b", label: "b.yaml"}}}
	assert.Equal(t, "a.yaml, b.yaml", named.labels())
	assert.NotNil(t, named.source())
	assert.NotNil(t, single.source())
}
