// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dacolabs/blueprint/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

// execute runs the root command inside dir and returns its stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(env(nil))
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const ordersDescriptor = `
id: Int64
address:
  city: String
tags: List(String)
`

func TestGenerate_PrintsModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersDescriptor)

	out, err := execute(t, dir, "generate", "orders.yaml", "--root-name", "orders", "--dtypes", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "__all__ = ['Orders']")
	assert.Contains(t, out, "class Address(vfm.VFrameModel):\n    city = pg.vcol.String(allow_nulls=False)\n")
	assert.Contains(t, out, "class Orders(vfm.VFrameModel):\n    id = pg.vcol.Int64(allow_nulls=False)\n    address: Address\n    tags = pg.vcol.List(allow_nulls=False)\n")
}

func TestGenerate_WritesFileForSeveralDatasets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schemas/customers.yaml", "address:\n  city: String\n")
	writeFile(t, dir, "schemas/suppliers.json", `{"address": {"city": "String"}}`)

	out, err := execute(t, dir, "generate", "schemas/customers.yaml", "vendors=schemas/suppliers.json", "-o", "models.py", "--nulls", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "from models import Customers, Vendors")
	assert.Contains(t, out, "Models generated")

	written, err := os.ReadFile(filepath.Join(dir, "models.py")) //nolint:gosec // test file path
	require.NoError(t, err)
	text := string(written)
	assert.Contains(t, text, "class AddressCustomers(vfm.VFrameModel):\n    city = pg.vcol()\n")
	assert.Contains(t, text, "class AddressVendors(vfm.VFrameModel):")
	assert.Contains(t, text, "__all__ = ['Customers', 'Vendors']")
}

func TestGenerate_DataProductPorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "opendpi.yaml", `opendpi: "1.0.0"
info:
  title: Sales
  version: "1.0.0"
ports:
  orders:
    schema:
      type: object
      properties:
        id:
          type: integer
  customers:
    schema:
      type: object
      properties:
        email:
          type: string
`)

	out, err := execute(t, dir, "generate", "opendpi.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "class Orders(vfm.VFrameModel):\n    id = pg.vcol(allow_nulls=False)\n")
	assert.Contains(t, out, "class Customers(vfm.VFrameModel):\n    email = pg.vcol(allow_nulls=False)\n")
}

func TestGenerate_NoUsage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersDescriptor)

	out, err := execute(t, dir, "generate", "orders.yaml", "-o", "models.py", "--no-usage")
	require.NoError(t, err)
	assert.NotContains(t, out, "Suggested usage")
	assert.FileExists(t, filepath.Join(dir, "models.py"))
}

func TestGenerate_RefusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersDescriptor)
	writeFile(t, dir, "models.py", "# mine\n")

	_, err := execute(t, dir, "generate", "orders.yaml", "-o", "models.py")
	require.Error(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "models.py")) //nolint:gosec // test file path
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(content))
}

func TestGenerate_UsesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schemas/orders.yaml", ordersDescriptor)
	writeFile(t, dir, "blueprint.yaml", `version: 1
output: models/sales.py
dtypes: on
usage: false
datasets:
  - name: orders
    source: schemas/orders.yaml
`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "models"), 0o750))

	out, err := execute(t, dir, "generate", "--dtypes", "as_values")
	require.NoError(t, err)
	assert.NotContains(t, out, "Suggested usage")

	written, err := os.ReadFile(filepath.Join(dir, "models", "sales.py")) //nolint:gosec // test file path
	require.NoError(t, err)
	assert.Contains(t, string(written), "import polars as pl\n")
	assert.Contains(t, string(written), "    id = pg.vcol(dtype=pl.Int64, allow_nulls=False)\n")
	assert.Contains(t, string(written), "class Orders(vfm.VFrameModel):")
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersDescriptor)
	writeFile(t, dir, "bad.yaml", "bad key:\n  x: Int64\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no inputs", args: []string{"generate"}, wantErr: "no schema source given"},
		{name: "table without dsn", args: []string{"generate", "--table", "orders"}, wantErr: "--table requires --dsn"},
		{name: "unknown dtypes", args: []string{"generate", "orders.yaml", "--dtypes", "maybe"}, wantErr: "unknown dtype rendering mode"},
		{name: "unknown format", args: []string{"generate", "orders.yaml", "--format", "csv"}, wantErr: "unsupported source format"},
		{name: "invalid struct name", args: []string{"generate", "bad.yaml"}, wantErr: "bad key"},
		{name: "missing file", args: []string{"generate", "missing.yaml"}, wantErr: "missing.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dir, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersDescriptor)

	out, err := execute(t, dir, "check", "orders.yaml", "--root-name", "Orders")
	require.NoError(t, err)
	assert.Contains(t, out, "Orders\n")
	assert.Contains(t, out, "[Int64]  id")
	assert.Contains(t, out, "[String]  city")
	assert.Contains(t, out, "Address, Orders")
	assert.Contains(t, out, "Schemas are valid")
	assert.NoFileExists(t, filepath.Join(dir, "models.py"))
}

func TestCheck_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "bad key:\n  x: Int64\nok:\n  \"also bad\":\n    y: Int64\n")
	writeFile(t, dir, "models.py", "")

	out, err := execute(t, dir, "check", "bad.yaml", "-o", "models.py")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 problem(s)")
	assert.Contains(t, out, "bad key: struct column name must be a valid Python identifier")
	assert.Contains(t, out, "ok.also bad: struct column name must be a valid Python identifier")
	assert.Contains(t, out, "refusing to overwrite existing file")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "init", "--non-interactive", "--name", "orders", "--source", "orders.yaml", "--output", "models.py", "--dtypes", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialization completed")

	cfg, err := config.Load(filepath.Join(dir, "blueprint.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "models.py", cfg.Output)
	assert.Equal(t, "on", cfg.Dtypes)
	assert.Equal(t, []config.Dataset{{Name: "orders", Source: "orders.yaml"}}, cfg.Datasets)

	_, err = execute(t, dir, "init", "--non-interactive", "--source", "other.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestInit_TOML(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "init", "--non-interactive", "--config-format", "toml", "--source", "data/orders.parquet")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "blueprint.toml"))
	require.NoError(t, err)
	assert.Equal(t, "data/orders.parquet", cfg.Datasets[0].Source)
}

func TestInit_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "init", "--non-interactive")
	assert.ErrorContains(t, err, "requires --source")

	_, err = execute(t, dir, "init", "--non-interactive", "--source", "o.yaml", "--config-format", "ini")
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = execute(t, dir, "init", "--non-interactive", "--source", "o.yaml", "--output", "models.txt")
	assert.ErrorContains(t, err, "invalid configuration")
	assert.NoFileExists(t, filepath.Join(dir, "blueprint.yaml"))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "blueprint version")

	out, err = execute(t, t.TempDir(), "version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, out, "blueprint version")
}

func TestGenerate_VerboseLogging(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", ordersDescriptor)
	t.Chdir(dir)

	run := func(getenv func(string) string, args ...string) string {
		var stdout, stderr bytes.Buffer
		cmd := NewRootCmd(getenv)
		cmd.SetArgs(args)
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return stderr.String()
	}

	quiet := run(env(nil), "generate", "orders.yaml")
	assert.NotContains(t, quiet, "level=DEBUG")

	verbose := run(env(nil), "generate", "orders.yaml", "--verbose")
	assert.Contains(t, verbose, "level=DEBUG")
	assert.Contains(t, verbose, "emitted class")

	fromEnv := run(env(map[string]string{"BLUEPRINT_DEBUG": "1"}), "generate", "orders.yaml")
	assert.Contains(t, fromEnv, "normalized root")
}
