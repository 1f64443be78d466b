// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session provides project context loading for CLI commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dacolabs/blueprint/internal/config"
)

var (
	// ErrNotInitialized indicates no blueprint config was found in the current directory.
	ErrNotInitialized = errors.New("not in a blueprint project (blueprint.yaml not found)")

	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Context holds the loaded project configuration.
type Context struct {
	// Dir is the project directory; relative paths in Config resolve against it.
	Dir string

	// ConfigPath is the config file the project was loaded from.
	ConfigPath string

	// Config is the validated configuration.
	Config *config.Config
}

// Resolve returns path relative to the project directory, unless it is
// already absolute.
func (c *Context) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// Load loads the project context from the current working directory and
// returns a new context.Context with the project Context stored in it.
func Load(ctx context.Context) (context.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadDir(ctx, cwd)
}

// LoadDir is Load for an explicit project directory.
func LoadDir(ctx context.Context, dir string) (context.Context, error) {
	configPath, err := config.Find(dir)
	if err != nil {
		return nil, ErrNotInitialized
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, validateErr)
	}

	return context.WithValue(ctx, contextKey{}, &Context{
		Dir:        dir,
		ConfigPath: configPath,
		Config:     cfg,
	}), nil
}

// From extracts the project Context from a context.Context.
// Returns nil if no Context is stored.
func From(ctx context.Context) *Context {
	if c, ok := ctx.Value(contextKey{}).(*Context); ok {
		return c
	}
	return nil
}
