// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"github.com/dacolabs/blueprint/internal/schema"
	"github.com/xlab/treeprint"
)

// SchemaTree renders a schema tree below a root label. Leaves are shown
// with their data type, struct columns as branches.
func SchemaTree(label string, t *schema.Tree) string {
	root := treeprint.NewWithRoot(label)
	addColumns(root, t)
	return root.String()
}

func addColumns(node treeprint.Tree, t *schema.Tree) {
	for _, col := range t.Columns() {
		if col.IsStruct() {
			addColumns(node.AddMetaBranch("Struct", col.Name), col.Struct)
			continue
		}
		node.AddMetaNode(col.Type.String(), col.Name)
	}
}
