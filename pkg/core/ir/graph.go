// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

// Package ir implements the intermediate representation at the core of the
// compiler: a directed acyclic dataflow graph of operator nodes over
// shaped, typed values.
//
// The main elements in the package are:
//
//   - Graph: the container of nodes. An external importer builds an initial
//     graph through the op constructors (or the Build dispatch, see
//     importer.go), rewrite passes simplify it, and a backend emitter reads
//     the finalized result through the read-only enumeration methods.
//
//   - Node: one operator instance. Construction runs shape/type inference
//     immediately and panics (through github.com/gomlx/exceptions) on a
//     contract violation, so an invalid node is never observable. Use
//     exceptions.TryCatch to convert construction failures to errors.
//
//   - Output: one typed, shaped result port of a node, with a registry of
//     its consumers. ReplaceOutput is the single sanctioned graph-surgery
//     primitive.
//
// A Graph is unprotected shared mutable state: concurrent mutation of one
// graph instance must be serialized by the caller. Independent graphs are
// fully independent.
package ir

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// NodeId is a unique id of a node within a Graph. It also defines the graph's
// enumeration order: ids are assigned sequentially at creation.
type NodeId int

// InvalidNodeId indicates a node that failed to be created.
const InvalidNodeId = NodeId(-1)

// Graph holds the operator nodes and dependencies of one computation.
//
// Nodes are appended in creation order, which is the enumeration order used
// by the rewrite passes. The graph proper -- what is handed to a backend
// emitter -- is the subset of nodes reachable from the declared outputs.
type Graph struct {
	name    string
	nodes   []*Node
	outputs []*Output

	finalized bool
}

// New creates an empty Graph with the given name.
func New(name string) *Graph {
	return &Graph{name: name}
}

// Name of the computation this Graph defines, set during its construction.
func (g *Graph) Name() string { return g.name }

// AssertValid panics if the graph is nil or has been finalized for building.
func (g *Graph) AssertValid() {
	if g == nil {
		exceptions.Panicf("Graph is nil")
	}
}

// registerNode appends the node, returning its unique id within the Graph.
func (g *Graph) registerNode(node *Node) NodeId {
	id := NodeId(len(g.nodes))
	g.nodes = append(g.nodes, node)
	return id
}

// NumNodes returns the number of nodes created in the graph, including nodes
// no longer reachable after rewriting.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeById returns the node with the given id.
func (g *Graph) NodeById(id NodeId) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("invalid Graph.NodeById(id=%d): graph has %d nodes", id, len(g.nodes))
	}
	return g.nodes[id]
}

// Nodes returns a snapshot of every node created in the graph, in enumeration
// (creation) order. Rewrite rules may append new nodes; the snapshot is not
// affected.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// SetOutputs declares the outputs of the computation. Reachability from these
// outputs defines the graph handed to a backend emitter.
func (g *Graph) SetOutputs(outputs ...*Output) {
	for ii, o := range outputs {
		if o == nil {
			exceptions.Panicf("Graph(%q).SetOutputs: output %d is nil", g.name, ii)
		}
		o.node.AssertValid()
		if o.node.graph != g {
			exceptions.Panicf("Graph(%q).SetOutputs: output %d belongs to graph %q",
				g.name, ii, o.node.graph.Name())
		}
	}
	g.outputs = outputs
}

// Outputs returns the declared outputs of the computation.
//
// Note: declared outputs are roots, not consumer slots -- splicing a node
// that a declared output points at does not rewire the declaration. Declare
// outputs after rewriting, or re-declare them, when the root node itself is
// eliminated.
func (g *Graph) Outputs() []*Output {
	out := make([]*Output, len(g.outputs))
	copy(out, g.outputs)
	return out
}

// Reachable returns the nodes reachable from the declared outputs, in
// enumeration order. If no outputs were declared, it returns all nodes.
func (g *Graph) Reachable() []*Node {
	if len(g.outputs) == 0 {
		return g.Nodes()
	}
	visited := make(map[*Node]bool, len(g.nodes))
	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, input := range n.inputs {
			visit(input.node)
		}
	}
	for _, o := range g.outputs {
		visit(o.node)
	}
	out := make([]*Node, 0, len(visited))
	for _, n := range g.nodes {
		if visited[n] {
			out = append(out, n)
		}
	}
	return out
}

// String converts the Graph to a multi-line string, one line per node. Nodes
// no longer reachable from the declared outputs are marked with (x).
func (g *Graph) String() string {
	reachable := make(map[*Node]bool, len(g.nodes))
	for _, n := range g.Reachable() {
		reachable[n] = true
	}
	parts := []string{fmt.Sprintf("Graph %q: %d nodes", g.name, len(g.nodes))}
	for ii, node := range g.nodes {
		mark := ""
		if !reachable[node] {
			mark = " (x)"
		}
		parts = append(parts, fmt.Sprintf("#%d\t%s%s", ii, node, mark))
	}
	return strings.Join(parts, "\n")
}
