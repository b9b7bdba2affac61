// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

// Package nopelim implements no-op elimination: a catalog of local
// term-rewriting rules, each splicing out one kind of redundant operator
// sequence, dispatched by the exact operator kind+version.
//
// Every rule that depends on shape comparison requires static shapes on both
// sides: a dynamic shape can never be proven safe, so the rule returns "no
// change" instead of risking an unsound rewrite. Skips are logged at
// klog.V(2) -- informational only, never an error.
package nopelim

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorir/pkg/core/ir"
	"github.com/gomlx/tensorir/pkg/support/sets"
	"k8s.io/klog/v2"
)

// Handler is one rewrite rule: it may mutate the graph only through
// ir.ReplaceOutput (or not at all) and must return whether it did.
type Handler func(n *ir.Node) bool

// typeAgnosticOps are operator kinds whose result is independent of the input
// element type: a conversion feeding only such a consumer can be elided even
// when the types differ.
var typeAgnosticOps = sets.MakeWith(ir.OpNonZero)

// Pass is the no-op elimination pass: a dispatch table from operator
// kind+version to the rewrite rule handling it. Kinds absent from the table
// are simply not visited.
type Pass struct {
	dispatcher map[ir.OpType]Handler
}

// New creates the pass with the full rewrite-rule catalog registered.
func New() *Pass {
	return &Pass{dispatcher: map[ir.OpType]Handler{
		ir.OpPad:          eliminateIdentityOp,
		ir.OpSlice:        eliminateIdentityOp,
		ir.OpBroadcast:    eliminateIdentityOp,
		ir.OpReduceSum:    eliminateReduceSum,
		ir.OpConvert:      eliminateConvert,
		ir.OpConcat:       eliminateConcat,
		ir.OpReshape:      eliminateReshape,
		ir.OpSqueeze:      eliminateSqueeze,
		ir.OpUnsqueeze:    eliminateUnsqueeze,
		ir.OpStopGradient: eliminateStopGradient,
	}}
}

// Name implements passes.Pass.
func (p *Pass) Name() string { return "NopElimination" }

// Register adds (or replaces) the handler for an operator kind+version.
// Registering a nil handler removes the entry.
func (p *Pass) Register(op ir.OpType, handler Handler) {
	if handler == nil {
		delete(p.dispatcher, op)
		return
	}
	p.dispatcher[op] = handler
}

// Run visits every node currently reachable in the graph exactly once, in the
// graph's enumeration order (a snapshot -- nodes created by handlers are not
// re-visited in this invocation), applying the handler registered for each
// node's exact kind+version. It returns true iff any handler reported a
// change.
func (p *Pass) Run(g *ir.Graph) bool {
	changed := false
	for _, n := range g.Reachable() {
		handler, found := p.dispatcher[n.OpType()]
		if !found {
			continue
		}
		changed = handler(n) || changed
	}
	return changed
}

// eliminateIdentityOp splices out any single-input operator whose output
// shape statically equals its input shape (Pad, Slice, Broadcast).
func eliminateIdentityOp(n *ir.Node) bool {
	inShape := n.Input(0).Shape()
	outShape := n.Output().Shape()
	if !inShape.IsStatic() || !outShape.IsStatic() {
		klog.V(2).Infof("nopelim: %s has dynamic shapes, skipping", n)
		return false
	}
	if !inShape.Equal(outShape) {
		return false
	}
	return ir.ReplaceOutput(n.Output(), n.Input(0))
}

// eliminateReduceSum splices out a reduction with an empty reduction-axis
// set: it reduces nothing, for all input shapes.
func eliminateReduceSum(n *ir.Node) bool {
	if len(n.ReduceAxes()) != 0 {
		return false
	}
	return ir.ReplaceOutput(n.Output(), n.Input(0))
}

// eliminateConvert splices out a conversion to its own input's element type.
// Additionally, if the conversion's sole consumer is type-agnostic, the
// conversion is elided even when the types differ -- collapsing through an
// upstream conversion chain as well.
func eliminateConvert(n *ir.Node) bool {
	isOutTypeAgnostic := false
	if n.Output().NumConsumers() == 1 {
		consumer := n.Output().Consumers()[0].Node
		isOutTypeAgnostic = typeAgnosticOps.Has(consumer.OpType())
	}
	input := n.Input(0)
	if n.ConvertDType() != input.DType() && !isOutTypeAgnostic {
		return false
	}
	if isOutTypeAgnostic && input.Node().Type() == ir.NodeTypeConvert {
		input = input.Node().Input(0)
	}
	return ir.ReplaceOutput(n.Output(), input)
}

// eliminateConcat splices out a concatenation with exactly one input stream.
func eliminateConcat(n *ir.Node) bool {
	if n.NumInputs() != 1 {
		return false
	}
	return ir.ReplaceOutput(n.Output(), n.Input(0))
}

// eliminateReshape splices out an identity reshape, and fuses a reshape whose
// input is itself a reshape, squeeze or unsqueeze into one reshape built
// directly from the innermost upstream input.
func eliminateReshape(n *ir.Node) bool {
	input := n.Input(0)
	outShape := n.Output().Shape()
	if !input.Shape().IsStatic() || !outShape.IsStatic() {
		klog.V(2).Infof("nopelim: %s has dynamic shapes, skipping", n)
		return false
	}
	if input.Shape().Equal(outShape) {
		return ir.ReplaceOutput(n.Output(), input)
	}
	switch input.Node().Type() {
	case ir.NodeTypeReshape, ir.NodeTypeSqueeze, ir.NodeTypeUnsqueeze:
		// The final target shape becomes a compile-time shape constant bound
		// to the innermost input. The candidate may not be constructible --
		// a squeeze over a non-1 axis changes the element count.
		fused, ok := tryBuild(func() *ir.Node {
			return ir.ReshapeDims(input.Node().Input(0), outShape.Dimensions...)
		})
		if !ok {
			return false
		}
		return ir.ReplaceOutput(n.Output(), fused.Output())
	}
	return false
}

// constAxesOf returns the axis set of a squeeze/unsqueeze node, which must be
// its constant second input to be statically known.
func constAxesOf(n *ir.Node) ([]int, bool) {
	return n.Input(1).Node().ConstDims()
}

// tryBuild constructs a candidate replacement node, converting a construction
// failure into "no solution": ambiguity is never an error here.
func tryBuild(build func() *ir.Node) (n *ir.Node, ok bool) {
	err := exceptions.TryCatch[error](func() { n = build() })
	if err != nil {
		klog.V(2).Infof("nopelim: candidate replacement not constructible: %v", err)
		return nil, false
	}
	return n, true
}

// eliminateUnsqueeze cancels or fuses an unsqueeze whose input is a squeeze
// (or folds it into an upstream reshape).
func eliminateUnsqueeze(n *ir.Node) bool {
	dataShape := n.Input(0).Shape()
	input := n.Input(0).Node()

	if input.Type() == ir.NodeTypeSqueeze && !dataShape.DynamicRank {
		sqAxes, okSq := constAxesOf(input)
		unsqAxes, okUnsq := constAxesOf(n)
		if !okSq || !okUnsq {
			klog.V(2).Infof("nopelim: squeeze->unsqueeze axes are not constants, skipping %s", n)
			return false
		}
		if axesEqual(sqAxes, unsqAxes) {
			// Exact inverse pair: both ops vanish.
			return ir.ReplaceOutput(n.Output(), input.Input(0))
		}
		if remaining, ok := axesRemaining(unsqAxes, sqAxes, true); ok {
			if newSq, built := tryBuild(func() *ir.Node {
				return ir.SqueezeAxes(input.Input(0), remaining...)
			}); built && n.Output().Shape().SameScheme(newSq.Shape()) {
				return ir.ReplaceOutput(n.Output(), newSq.Output())
			}
		}
		if remaining, ok := axesRemaining(sqAxes, unsqAxes, true); ok {
			if newUnsq, built := tryBuild(func() *ir.Node {
				return ir.UnsqueezeAxes(input.Input(0), remaining...)
			}); built && n.Output().Shape().SameScheme(newUnsq.Shape()) {
				return ir.ReplaceOutput(n.Output(), newUnsq.Output())
			}
		}
		return false
	}

	if input.Type() == ir.NodeTypeReshape && n.Output().Shape().IsStatic() {
		fused, ok := tryBuild(func() *ir.Node {
			return ir.ReshapeDims(input.Input(0), n.Output().Shape().Dimensions...)
		})
		if !ok {
			return false
		}
		return ir.ReplaceOutput(n.Output(), fused.Output())
	}
	return false
}

// eliminateSqueeze cancels or fuses a squeeze whose input is an unsqueeze
// (or folds it into an upstream reshape). The residual axis renumbering here
// crosses a rank change, so axesRemaining runs with rankReducing=false.
func eliminateSqueeze(n *ir.Node) bool {
	dataShape := n.Input(0).Shape()
	input := n.Input(0).Node()

	if input.Type() == ir.NodeTypeUnsqueeze && !dataShape.DynamicRank {
		unsqAxes, okUnsq := constAxesOf(input)
		sqAxes, okSq := constAxesOf(n)
		if !okUnsq || !okSq {
			klog.V(2).Infof("nopelim: unsqueeze->squeeze axes are not constants, skipping %s", n)
			return false
		}
		if axesEqual(unsqAxes, sqAxes) {
			return ir.ReplaceOutput(n.Output(), input.Input(0))
		}
		if remaining, ok := axesRemaining(unsqAxes, sqAxes, false); ok {
			if newSq, built := tryBuild(func() *ir.Node {
				return ir.SqueezeAxes(input.Input(0), remaining...)
			}); built && n.Output().Shape().SameScheme(newSq.Shape()) {
				return ir.ReplaceOutput(n.Output(), newSq.Output())
			}
		}
		if remaining, ok := axesRemaining(sqAxes, unsqAxes, false); ok {
			if newUnsq, built := tryBuild(func() *ir.Node {
				return ir.UnsqueezeAxes(input.Input(0), remaining...)
			}); built && n.Output().Shape().SameScheme(newUnsq.Shape()) {
				return ir.ReplaceOutput(n.Output(), newUnsq.Output())
			}
		}
		return false
	}

	if input.Type() == ir.NodeTypeReshape && n.Output().Shape().IsStatic() {
		fused, ok := tryBuild(func() *ir.Node {
			return ir.ReshapeDims(input.Input(0), n.Output().Shape().Dimensions...)
		})
		if !ok {
			return false
		}
		return ir.ReplaceOutput(n.Output(), fused.Output())
	}
	return false
}

// eliminateStopGradient splices out the gradient-barrier marker,
// unconditionally: the only rule that never returns "no change".
func eliminateStopGradient(n *ir.Node) bool {
	ir.ReplaceOutput(n.Output(), n.Input(0))
	return true
}
