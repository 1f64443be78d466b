// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	verbose bool
	getenv  func(string) string
}

// logger returns a text logger on the command's stderr. Debug output is
// enabled by --verbose or the BLUEPRINT_DEBUG environment variable.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose || (o.getenv != nil && o.getenv("BLUEPRINT_DEBUG") != "") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(getenv func(string) string) *cobra.Command {
	opts := &rootOptions{getenv: getenv}

	rootCmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Generate model class skeletons from dataset schemas",
		Long: `Blueprint reads the schema of one or more columnar datasets and generates a
Python module declaring a vfm.VFrameModel subclass per dataset and per nested
struct column.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
