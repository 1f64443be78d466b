// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package blueprint generates model class skeletons from dataset schemas.
//
// A compilation normalizes one or many schemas into a RootSet, validates
// nested struct names, resolves collision-free class and attribute names
// and emits a module whose classes subclass vfm.VFrameModel and declare
// their columns with pg.vcol.
package blueprint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PythonSuffix is the required extension of destination files.
const PythonSuffix = ".py"

var (
	// ErrNotPythonFile indicates a destination without the .py suffix.
	ErrNotPythonFile = errors.New("destination must be a .py file")

	// ErrParentNotFound indicates a destination whose directory does not exist.
	ErrParentNotFound = errors.New("parent folder must already exist")

	// ErrDestinationExists indicates a destination that would be overwritten.
	ErrDestinationExists = errors.New("refusing to overwrite existing file")
)

// Options configures a compilation.
type Options struct {
	// Path is the destination file. Empty returns the text instead.
	Path string
	// RootName is the root key of a Single dataset. Defaults to DatasetModel.
	RootName string
	// Dtypes selects the type rendering mode.
	Dtypes Mode
	// Nulls selects the allow_nulls argument.
	Nulls NullPolicy
	// Usage receives a usage suggestion after a file was written. Nil
	// disables the suggestion.
	Usage io.Writer
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return discard
	}
	return o.Logger
}

// Collect builds the model module for src. Without a destination path the
// generated text is returned; otherwise it is written to opts.Path and an
// empty string is returned.
func Collect(ctx context.Context, src Source, opts Options) (string, error) {
	if opts.Path != "" {
		if err := CheckDestination(opts.Path); err != nil {
			return "", err
		}
	}

	rs, err := Normalize(ctx, src, opts.RootName, opts.Logger)
	if err != nil {
		return "", err
	}
	mod, err := Compile(rs, opts)
	if err != nil {
		return "", err
	}

	if opts.Path == "" {
		return mod.Text, nil
	}
	if err := WriteModule(opts.Path, mod); err != nil {
		return "", err
	}
	opts.logger().Info("wrote model blueprint", "path", opts.Path, "classes", len(mod.Classes))

	if opts.Usage != nil {
		PrintUsage(opts.Usage, opts.Path, mod.Roots)
	}
	return "", nil
}

// CheckDestination verifies that path ends in .py, that its parent
// directory exists and that the file itself does not.
func CheckDestination(path string) error {
	if filepath.Ext(path) != PythonSuffix {
		return fmt.Errorf("%w: got %s", ErrNotPythonFile, path)
	}
	parent := filepath.Dir(path)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrParentNotFound, parent)
	}
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to inspect destination: %w", err)
	}
	return nil
}

// WriteModule writes the module text to path in a single write. The file
// is created exclusively; a failed write leaves no file behind.
func WriteModule(path string, mod *Module) error {
	if err := CheckDestination(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // path is provided by caller
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.WriteString(f, mod.Text); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// PrintUsage writes a short snippet showing how to import and use the
// generated root classes.
func PrintUsage(w io.Writer, path string, roots []string) {
	names := strings.Join(roots, ", ")

	importLine := "import " + names
	if module := modulePath(path); module != "" {
		importLine = fmt.Sprintf("from %s import %s", module, names)
	}

	_, _ = fmt.Fprintf(w, "\n# ------- Suggested usage for models %s\n\n", names)
	_, _ = fmt.Fprintln(w, "import paguro as pg")
	_, _ = fmt.Fprintf(w, "%s\n\n", importLine)
	_, _ = fmt.Fprintln(w, "# Assign a model to a dataset instance:")
	_, _ = fmt.Fprintln(w, "# dataset = dataset.with_model(YourModelClass)")
	_, _ = fmt.Fprintln(w)
}

// modulePath turns a destination path into a dotted module path, e.g.
// "models/customers.py" -> "models.customers".
func modulePath(path string) string {
	trimmed := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(path)), PythonSuffix)
	var parts []string
	for _, p := range strings.Split(trimmed, "/") {
		if p == "" || p == "." || p == ".." || strings.HasSuffix(p, ":") {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ".")
}
