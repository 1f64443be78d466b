// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"
	"io"

	"github.com/dacolabs/blueprint/internal/commands"
)

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters (context, arguments, output
// streams, env lookup).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	rootCmd := commands.NewRootCmd(getenv)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}
