// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/samber/lo"
)

//go:embed templates/models.py.tmpl
var tmplFS embed.FS

var tmpl = template.Must(template.ParseFS(tmplFS, "templates/models.py.tmpl"))

// moduleData feeds the module template.
type moduleData struct {
	Values  bool
	All     string
	Base    string
	Classes []classBlock
}

// classBlock is one class definition; Body lines are unindented.
type classBlock struct {
	Name string
	Body []string
}

// Module is the result of a compilation.
type Module struct {
	// Text is the generated source.
	Text string
	// Roots are the class names of the roots, in root order.
	Roots []string
	// Classes are all class names, in emission order (children first).
	Classes []string
}

// compiler holds the state of a single Compile call.
type compiler struct {
	multi   bool
	nulls   NullPolicy
	render  renderer
	classes namePool
	blocks  []classBlock
	emitted []string
	logger  *slog.Logger
}

// Compile validates the root set and generates the model module.
//
// Classes are emitted in post-order so that every class is defined before
// the class that references it.
func Compile(rs *RootSet, opts Options) (*Module, error) {
	if err := Validate(rs); err != nil {
		return nil, err
	}
	render, ok := renderers[opts.Dtypes]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, opts.Dtypes)
	}

	c := &compiler{
		multi:   rs.Multi,
		nulls:   opts.Nulls,
		render:  render,
		classes: make(namePool),
		logger:  opts.logger(),
	}

	roots := make([]string, 0, len(rs.Roots))
	for _, r := range rs.Roots {
		roots = append(roots, c.buildClass(r.Tree, r.Name, r.Name))
	}

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "models.py.tmpl", moduleData{
		Values:  opts.Dtypes == ModeValues,
		All:     strings.Join(lo.Map(roots, func(n string, _ int) string { return pyRepr(n) }), ", "),
		Base:    modelBase,
		Classes: c.blocks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return &Module{
		Text:    buf.String(),
		Roots:   roots,
		Classes: c.emitted,
	}, nil
}

// buildClass reserves a class name for tree, emits every nested struct
// first and then the class body itself. It returns the reserved name.
func (c *compiler) buildClass(tree *schema.Tree, suggested, rootName string) string {
	name := c.classes.reserve(ClassName(suggested))

	children := make(map[string]string)
	for _, col := range tree.Columns() {
		if !col.IsStruct() {
			continue
		}
		child := ClassName(col.Name)
		if c.multi {
			child += rootName
		}
		children[col.Name] = c.buildClass(col.Struct, child, rootName)
	}

	var body []string
	if tree.Len() == 0 {
		body = append(body, "pass")
	}

	attrs := make(attrPool)
	for _, col := range tree.Columns() {
		attr := attrs.reserve(col.Name)
		if col.IsStruct() {
			body = append(body, fmt.Sprintf("%s: %s", attr, children[col.Name]))
			continue
		}

		var kwargs []string
		if attr != col.Name {
			kwargs = append(kwargs, "name="+pyString(col.Name))
		}
		if kw := c.nulls.kwarg(); kw != "" {
			kwargs = append(kwargs, kw)
		}
		body = append(body, fmt.Sprintf("%s = %s", attr, c.render(col.Type, kwargs)))
	}

	c.blocks = append(c.blocks, classBlock{Name: name, Body: body})
	c.emitted = append(c.emitted, name)
	c.logger.Debug("emitted class", "class", name, "root", rootName, "fields", tree.Len())
	return name
}
