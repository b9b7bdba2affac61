// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
)

// Node represents one operator instance in the computation graph. It is
// created by the op constructors (see ops.go), which run shape/type inference
// immediately -- a node that violates its operator contract is never created.
//
// A node owns its output ports. Its inputs are edges to outputs owned by other
// nodes. Nodes are immutable after construction except through the sanctioned
// surgery primitive ReplaceOutput, which rewires inputs and re-runs inference.
type Node struct {
	graph *Graph
	id    NodeId

	// inputs are the edges of the computation graph, ordered.
	inputs []*Output

	// outputs are the ports this node produces, ordered. Almost every node
	// has exactly one.
	outputs []*Output

	// attrs is the per-kind typed attribute bag. Its concrete type fixes the
	// node's kind+version, arity contract and inference rule.
	attrs nodeAttrs
}

// nodeAttrs is the per-kind attribute bag of a node. The concrete type fixes
// the operator's kind+version and its inference rule.
//
// infer is a pure, deterministic function from input shapes to output shapes.
// It is replayed at construction and whenever inputs change, and panics (via
// exceptions) on a contract violation.
type nodeAttrs interface {
	OpType() OpType

	// String prints a descriptive representation of the operator, using its
	// attributes.
	String() string

	infer(inputs []*Output) []shapes.Shape
}

// newNode builds, validates and registers a node: it checks all inputs belong
// to the same graph, runs the operator's shape/type inference (which panics on
// a contract violation) and registers the new node as consumer of its inputs.
func newNode(g *Graph, attrs nodeAttrs, inputs []*Output) *Node {
	g.AssertValid()
	for ii, input := range inputs {
		if input == nil {
			exceptions.Panicf("%s: input[%d] is nil", attrs.OpType(), ii)
		}
		input.node.AssertValid()
		if input.node.graph != g {
			exceptions.Panicf("%s: input[%d] belongs to graph %q, not to graph %q -- "+
				"combining nodes from different graphs is not allowed",
				attrs.OpType(), ii, input.node.graph.Name(), g.Name())
		}
	}

	n := &Node{
		graph:  g,
		inputs: inputs,
		attrs:  attrs,
	}
	outputShapes := attrs.infer(inputs)
	n.outputs = make([]*Output, len(outputShapes))
	for ii, shape := range outputShapes {
		n.outputs[ii] = &Output{node: n, index: ii, shape: shape}
	}
	for ii, input := range inputs {
		input.registerConsumer(n, ii)
	}
	n.id = g.registerNode(n)
	return n
}

// reinfer re-runs the node's shape/type inference after its inputs changed,
// updating the output port shapes in place. Output shapes are never stale.
func (n *Node) reinfer() {
	outputShapes := n.attrs.infer(n.inputs)
	if len(outputShapes) != len(n.outputs) {
		exceptions.Panicf("%s: inference changed the number of outputs from %d to %d",
			n.OpType(), len(n.outputs), len(outputShapes))
	}
	for ii, shape := range outputShapes {
		n.outputs[ii].shape = shape
	}
}

// Graph that holds this Node.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Id is the unique id of this node within the Graph.
func (n *Node) Id() NodeId { return n.id }

// Type identifies the operation performed by the node.
func (n *Node) Type() NodeType {
	if n == nil || n.attrs == nil {
		return NodeTypeInvalid
	}
	return n.attrs.OpType().Type
}

// OpType returns the stable kind+version identifier of the node's operator.
func (n *Node) OpType() OpType {
	if n == nil || n.attrs == nil {
		return OpType{}
	}
	return n.attrs.OpType()
}

// NumInputs returns the node's input arity.
func (n *Node) NumInputs() int { return len(n.inputs) }

// Input returns the ii-th input edge of the node.
func (n *Node) Input(ii int) *Output {
	if ii < 0 || ii >= len(n.inputs) {
		exceptions.Panicf("node %s has %d inputs, Input(%d) out-of-range", n, len(n.inputs), ii)
	}
	return n.inputs[ii]
}

// Inputs returns a copy of the node's ordered input edges.
func (n *Node) Inputs() []*Output {
	out := make([]*Output, len(n.inputs))
	copy(out, n.inputs)
	return out
}

// NumOutputs returns the number of output ports of the node.
//
// Almost every node has one output only.
func (n *Node) NumOutputs() int { return len(n.outputs) }

// Output returns the node's single output port. It panics if the node has
// more than one -- use OutputPort for those.
func (n *Node) Output() *Output {
	if len(n.outputs) != 1 {
		exceptions.Panicf("node %s has %d outputs, use OutputPort instead", n, len(n.outputs))
	}
	return n.outputs[0]
}

// OutputPort returns the ii-th output port of the node.
func (n *Node) OutputPort(ii int) *Output {
	if ii < 0 || ii >= len(n.outputs) {
		exceptions.Panicf("node %s has %d outputs, OutputPort(%d) out-of-range", n, len(n.outputs), ii)
	}
	return n.outputs[ii]
}

// Shape of the node's single output.
func (n *Node) Shape() shapes.Shape { return n.Output().shape }

// DType returns the DType of the node's single output.
func (n *Node) DType() dtypes.DType { return n.Shape().DType }

// Rank returns the rank of the node's single output shape.
func (n *Node) Rank() int { return n.Shape().Rank() }

// IsScalar returns whether the node's single output is a scalar.
func (n *Node) IsScalar() bool { return n.Shape().IsScalar() }

// AssertValid panics if n is nil or in an invalid state.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.attrs == nil {
		exceptions.Panicf("Node in an invalid state")
	}
	n.graph.AssertValid()
}

// CopyWithNewInputs builds a structurally identical node bound to the given
// input edges: same kind, version and attributes. It panics if the number of
// inputs doesn't match the original's arity, or if the new inputs violate the
// operator's contract.
func (n *Node) CopyWithNewInputs(inputs ...*Output) *Node {
	n.AssertValid()
	if len(inputs) != len(n.inputs) {
		exceptions.Panicf("CopyWithNewInputs(%s): got %d inputs, operator takes %d",
			n.OpType(), len(inputs), len(n.inputs))
	}
	return newNode(n.graph, n.attrs, inputs)
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	if n.attrs == nil {
		return "Node(invalid)"
	}
	parts := make([]string, 0, len(n.outputs))
	for _, o := range n.outputs {
		parts = append(parts, o.shape.String())
	}
	return fmt.Sprintf("%s -> %s", n.attrs, strings.Join(parts, ", "))
}
