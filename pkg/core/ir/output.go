// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
)

// Output identifies one typed, shaped result port of a node: the pair
// (producing node, port index). It is exclusively owned by its producing node.
//
// Each Output keeps a registry of the consumer slots currently reading it.
// The registry is used only for traversal and rewiring (see ReplaceOutput),
// never for lifetime: node lifetime is reachability from the Graph.
type Output struct {
	node  *Node
	index int
	shape shapes.Shape

	// name is a diagnostic name, usually assigned by the importer from the
	// source model. ReplaceOutput transfers it to the replacement if the
	// replacement has none.
	name string

	consumers []ConsumerSlot
}

// ConsumerSlot identifies one input slot of a consumer node: the consumer
// reads the Output as its InputIndex-th input.
type ConsumerSlot struct {
	Node       *Node
	InputIndex int
}

// Node returns the node producing this output.
func (o *Output) Node() *Node { return o.node }

// Index returns the port index of this output within its producing node.
func (o *Output) Index() int { return o.index }

// Shape of the value carried by this output.
func (o *Output) Shape() shapes.Shape { return o.shape }

// DType of the value carried by this output.
func (o *Output) DType() dtypes.DType { return o.shape.DType }

// Name returns the diagnostic name of this output, if any.
func (o *Output) Name() string { return o.name }

// SetName assigns a diagnostic name to this output.
func (o *Output) SetName(name string) { o.name = name }

// Consumers returns a copy of the consumer slots currently reading this
// output. The returned slice is a snapshot: rewiring does not invalidate it.
func (o *Output) Consumers() []ConsumerSlot {
	out := make([]ConsumerSlot, len(o.consumers))
	copy(out, o.consumers)
	return out
}

// NumConsumers returns how many input slots currently read this output.
func (o *Output) NumConsumers() int { return len(o.consumers) }

// String implements fmt.Stringer.
func (o *Output) String() string {
	if o == nil {
		return "Output(nil)"
	}
	if o.name != "" {
		return fmt.Sprintf("%s#%d(%q) -> %s", o.node.Type(), o.index, o.name, o.shape)
	}
	return fmt.Sprintf("%s#%d -> %s", o.node.Type(), o.index, o.shape)
}

// registerConsumer records that consumer reads this output as input inputIdx.
func (o *Output) registerConsumer(consumer *Node, inputIdx int) {
	o.consumers = append(o.consumers, ConsumerSlot{Node: consumer, InputIndex: inputIdx})
}

// ReplaceOutput rewires every consumer slot currently reading old to read
// replacement instead, re-running shape inference on each rewired consumer so
// no output shape goes stale. If old carries a diagnostic name and replacement
// has none, the name transfers to the replacement.
//
// It returns whether any consumer existed. This is the only sanctioned
// graph-mutation primitive: the consumer snapshot is taken up front, so within
// one rewrite invocation no consumer observes a partially rewired state.
func ReplaceOutput(old, replacement *Output) bool {
	old.node.AssertValid()
	replacement.node.AssertValid()
	if old == replacement {
		return false
	}

	consumers := old.Consumers()
	for _, slot := range consumers {
		slot.Node.inputs[slot.InputIndex] = replacement
		replacement.registerConsumer(slot.Node, slot.InputIndex)
	}
	// Re-infer each distinct consumer once, only after all of its slots are
	// rewired: a consumer reading old through several slots never observes a
	// partially rewired input list.
	reinferred := make(map[*Node]bool, len(consumers))
	for _, slot := range consumers {
		if reinferred[slot.Node] {
			continue
		}
		reinferred[slot.Node] = true
		slot.Node.reinfer()
	}
	old.consumers = old.consumers[:0]

	if old.name != "" && replacement.name == "" {
		replacement.name = old.name
	}
	return len(consumers) > 0
}
