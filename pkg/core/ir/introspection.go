// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// This file defines methods that allow for introspection of a finalized
// graph. Backend emitters are pure readers: they enumerate Reachable(),
// read kinds, shapes, dtypes and ConstValue, and must never mutate the graph.
//
// The API is limited -- we want flexibility to change the implementation
// without concerns on breaking compatibility.

// Report returns a human-readable summary of the graph: node counts per kind
// and the total memory held by reachable constants.
func (g *Graph) Report() string {
	reachable := g.Reachable()
	perKind := make(map[OpType]int)
	var constBytes uintptr
	for _, n := range reachable {
		perKind[n.OpType()]++
		if n.Type() == NodeTypeConstant {
			constBytes += n.Shape().Memory()
		}
	}

	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Graph %q: %s nodes created, %s reachable\n",
		g.Name(), humanize.Comma(int64(len(g.nodes))), humanize.Comma(int64(len(reachable))))
	_, _ = fmt.Fprintf(&sb, "\tconstants: %s\n", humanize.Bytes(uint64(constBytes)))
	for _, n := range reachable {
		// Count lines ordered by first appearance.
		count, pending := perKind[n.OpType()]
		if !pending {
			continue
		}
		delete(perKind, n.OpType())
		_, _ = fmt.Fprintf(&sb, "\t%s: %d\n", n.OpType(), count)
	}
	return sb.String()
}
