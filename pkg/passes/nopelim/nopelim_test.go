// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package nopelim

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/ir"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/stretchr/testify/require"
)

// sink attaches a consumer outside the rewrite catalog, so tests can observe
// where the final consumers end up wired after a pass.
func sink(x *ir.Output) *ir.Node {
	return ir.Mul(x, x)
}

func TestIdentityShapeElision(t *testing.T) {
	pass := New()

	{ // Zero padding is the identity.
		g := ir.New("pad")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
		pad := ir.Pad(x.Output(), []int{0, 0}, []int{0, 0})
		tail := sink(pad.Output())
		require.True(t, pass.Run(g))
		require.Same(t, x.Output(), tail.Input(0))
	}
	{ // Non-trivial padding stays.
		g := ir.New("pad_keep")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
		pad := ir.Pad(x.Output(), []int{1, 0}, []int{0, 0})
		tail := sink(pad.Output())
		require.False(t, pass.Run(g))
		require.Same(t, pad.Output(), tail.Input(0))
	}
	{ // Full-range slice is the identity.
		g := ir.New("slice")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
		sl := ir.Slice(x.Output(), []int{0, 0}, []int{2, 3})
		tail := sink(sl.Output())
		require.True(t, pass.Run(g))
		require.Same(t, x.Output(), tail.Input(0))
	}
	{ // Broadcasting to the input's own shape is the identity.
		g := ir.New("broadcast")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
		b := ir.Broadcast(x.Output(), 2, 3)
		tail := sink(b.Output())
		require.True(t, pass.Run(g))
		require.Same(t, x.Output(), tail.Input(0))
	}
	{ // A broadcast that expands is kept.
		g := ir.New("broadcast_keep")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 1, 3))
		b := ir.Broadcast(x.Output(), 2, 3)
		tail := sink(b.Output())
		require.False(t, pass.Run(g))
		require.Same(t, b.Output(), tail.Input(0))
	}
}

func TestEmptyReductionElision(t *testing.T) {
	pass := New()
	g := ir.New("reduce")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	empty := ir.ReduceSum(x.Output())
	tail := sink(empty.Output())
	kept := ir.ReduceSum(x.Output(), 0)
	keptTail := sink(kept.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
	require.Same(t, kept.Output(), keptTail.Input(0))

	// The empty-axis rule holds for dynamic inputs too.
	g2 := ir.New("reduce_dyn")
	dyn := ir.Parameter(g2, "dyn", shapes.MakeDynamicRank(dtypes.Float32))
	empty2 := ir.ReduceSum(dyn.Output())
	tail2 := ir.StopGradient(empty2.Output())
	p := New()
	p.Register(ir.OpStopGradient, nil) // Keep the observer in place.
	require.True(t, p.Run(g2))
	require.Same(t, dyn.Output(), tail2.Input(0))
}

func TestRedundantConversionElision(t *testing.T) {
	pass := New()
	g := ir.New("convert")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	same := ir.Convert(x.Output(), dtypes.Float32)
	tail := sink(same.Output())
	real := ir.Convert(x.Output(), dtypes.Float64)
	realTail := sink(real.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
	require.Same(t, real.Output(), realTail.Input(0))
}

func TestConversionChainIntoTypeAgnosticConsumer(t *testing.T) {
	// A -> convert(T1) -> convert(T2) feeding only NonZero collapses to A
	// wired directly into NonZero: NonZero's result is independent of the
	// element type.
	pass := New()
	g := ir.New("convert_chain")
	a := ir.Parameter(g, "a", shapes.Make(dtypes.Float32, 4))
	c1 := ir.Convert(a.Output(), dtypes.Float64)
	c2 := ir.Convert(c1.Output(), dtypes.Int32)
	nz := ir.NonZero(c2.Output())

	require.True(t, pass.Run(g))
	require.Same(t, a.Output(), nz.Input(0))
	require.Equal(t, dtypes.Int64, nz.DType())
}

func TestConversionWithSharedConsumersIsKept(t *testing.T) {
	// The type-agnostic elision requires a sole consumer: a conversion also
	// read by a type-sensitive consumer must stay.
	pass := New()
	g := ir.New("convert_shared")
	a := ir.Parameter(g, "a", shapes.Make(dtypes.Float64, 4))
	c := ir.Convert(a.Output(), dtypes.Float32)
	nz := ir.NonZero(c.Output())
	other := sink(c.Output())

	require.False(t, pass.Run(g))
	require.Same(t, c.Output(), nz.Input(0))
	require.Same(t, c.Output(), other.Input(0))
}

func TestSingleInputConcatElision(t *testing.T) {
	pass := New()
	g := ir.New("concat")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	single := ir.Concat([]*ir.Output{x.Output()}, 0)
	tail := sink(single.Output())
	double := ir.Concat([]*ir.Output{x.Output(), x.Output()}, 0)
	doubleTail := sink(double.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
	require.Same(t, double.Output(), doubleTail.Input(0))
}

func TestReshapeIdentityElision(t *testing.T) {
	pass := New()
	g := ir.New("reshape_id")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	r := ir.ReshapeDims(x.Output(), 2, 3)
	tail := sink(r.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
}

func TestReshapeOfReshapeFusion(t *testing.T) {
	// reshape(reshape(x)) collapses to exactly one reshape with the final
	// target shape, bound directly to x.
	pass := New()
	g := ir.New("reshape_fuse")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3, 4))
	r1 := ir.ReshapeDims(x.Output(), 6, 4)
	r2 := ir.ReshapeDims(r1.Output(), 24)
	tail := sink(r2.Output())

	require.True(t, pass.Run(g))
	fused := tail.Input(0).Node()
	require.Equal(t, ir.OpReshape, fused.OpType())
	require.Same(t, x.Output(), fused.Input(0))
	require.Equal(t, []int{24}, fused.Shape().Dimensions)
}

func TestReshapeOfSqueezeFusion(t *testing.T) {
	pass := New()
	g := ir.New("reshape_of_squeeze")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 1, 3))
	sq := ir.SqueezeAxes(x.Output(), 1)
	r := ir.ReshapeDims(sq.Output(), 3, 2)
	tail := sink(r.Output())

	require.True(t, pass.Run(g))
	fused := tail.Input(0).Node()
	require.Equal(t, ir.OpReshape, fused.OpType())
	require.Same(t, x.Output(), fused.Input(0))
	require.Equal(t, []int{3, 2}, fused.Shape().Dimensions)
}

func TestReshapeOfSqueezeUnfusable(t *testing.T) {
	// A squeeze over a non-1 static axis changes the element count, so the
	// fused reshape candidate is not constructible: the rule must quietly
	// report "no change", never fail out of the pass.
	pass := New()
	g := ir.New("reshape_of_squeeze_unfusable")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	sq := ir.SqueezeAxes(x.Output(), 0)
	r := ir.ReshapeDims(sq.Output(), 1, 3)
	tail := sink(r.Output())

	changed := false
	require.NotPanics(t, func() { changed = pass.Run(g) })
	require.False(t, changed)
	require.Same(t, r.Output(), tail.Input(0))
}

func TestSqueezeOfReshapeUnfoldable(t *testing.T) {
	// Mirror case on the squeeze side: folding squeeze(reshape(x)) into one
	// reshape fails the size check when the squeezed axis is not 1.
	pass := New()
	g := ir.New("squeeze_of_reshape_unfoldable")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	r := ir.ReshapeDims(x.Output(), 3, 2)
	sq := ir.SqueezeAxes(r.Output(), 0)
	tail := sink(sq.Output())

	changed := false
	require.NotPanics(t, func() { changed = pass.Run(g) })
	require.False(t, changed)
	require.Same(t, sq.Output(), tail.Input(0))
}

func TestSqueezeUnsqueezeCancellation(t *testing.T) {
	// Input [2,3,4,5] -> squeeze axes [1] -> unsqueeze axes [1]: one pass
	// wires the original producer directly into the final consumers, shape
	// restored to [2,3,4,5].
	pass := New()
	g := ir.New("cancel")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3, 4, 5))
	sq := ir.SqueezeAxes(x.Output(), 1)
	unsq := ir.UnsqueezeAxes(sq.Output(), 1)
	tail := sink(unsq.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
	require.Equal(t, []int{2, 3, 4, 5}, tail.Shape().Dimensions)
}

func TestUnsqueezeSqueezeCancellation(t *testing.T) {
	pass := New()
	g := ir.New("cancel_reverse")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	unsq := ir.UnsqueezeAxes(x.Output(), 0, 3)
	sq := ir.SqueezeAxes(unsq.Output(), 0, 3)
	tail := sink(sq.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
}

func TestSqueezeUnsqueezeResidualToSqueeze(t *testing.T) {
	// squeeze axes {1,2} then unsqueeze axes {1}: the pair reduces to a
	// single squeeze over the residual axis {2}.
	pass := New()
	g := ir.New("residual_squeeze")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 1, 1, 3))
	sq := ir.SqueezeAxes(x.Output(), 1, 2)
	unsq := ir.UnsqueezeAxes(sq.Output(), 1)
	tail := sink(unsq.Output())

	require.True(t, pass.Run(g))
	replacement := tail.Input(0).Node()
	require.Equal(t, ir.OpSqueeze, replacement.OpType())
	require.Same(t, x.Output(), replacement.Input(0))
	axes, ok := replacement.Input(1).Node().ConstDims()
	require.True(t, ok)
	require.Equal(t, []int{2}, axes)
	require.Equal(t, []int{2, 1, 3}, tail.Shape().Dimensions)
}

func TestUnsqueezeSqueezeResidualToUnsqueeze(t *testing.T) {
	// unsqueeze axes {0,2} then squeeze axes {0}: the pair reduces to a
	// single unsqueeze, with the surviving axis renumbered across the rank
	// change ({2} becomes {1}).
	pass := New()
	g := ir.New("residual_unsqueeze")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 3, 2))
	unsq := ir.UnsqueezeAxes(x.Output(), 0, 2)
	sq := ir.SqueezeAxes(unsq.Output(), 0)
	tail := sink(sq.Output())

	require.True(t, pass.Run(g))
	replacement := tail.Input(0).Node()
	require.Equal(t, ir.OpUnsqueeze, replacement.OpType())
	require.Same(t, x.Output(), replacement.Input(0))
	axes, ok := replacement.Input(1).Node().ConstDims()
	require.True(t, ok)
	require.Equal(t, []int{1}, axes)
	require.Equal(t, []int{3, 1, 2}, tail.Shape().Dimensions)
}

func TestSqueezeOfReshapeFolds(t *testing.T) {
	pass := New()
	g := ir.New("squeeze_of_reshape")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	r := ir.ReshapeDims(x.Output(), 1, 6)
	sq := ir.SqueezeAxes(r.Output(), 0)
	tail := sink(sq.Output())

	require.True(t, pass.Run(g))
	fused := tail.Input(0).Node()
	require.Equal(t, ir.OpReshape, fused.OpType())
	require.Same(t, x.Output(), fused.Input(0))
	require.Equal(t, []int{6}, fused.Shape().Dimensions)
}

func TestUnsqueezeOfReshapeFolds(t *testing.T) {
	pass := New()
	g := ir.New("unsqueeze_of_reshape")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	r := ir.ReshapeDims(x.Output(), 6)
	unsq := ir.UnsqueezeAxes(r.Output(), 0)
	tail := sink(unsq.Output())

	require.True(t, pass.Run(g))
	fused := tail.Input(0).Node()
	require.Equal(t, ir.OpReshape, fused.OpType())
	require.Same(t, x.Output(), fused.Input(0))
	require.Equal(t, []int{1, 6}, fused.Shape().Dimensions)
}

func TestNonConstantAxesAreSkipped(t *testing.T) {
	pass := New()
	g := ir.New("nonconst_axes")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 1, 3))
	axes := ir.Parameter(g, "axes", shapes.Make(dtypes.Int64, 1))
	sq := ir.Squeeze(x.Output(), axes.Output())
	unsq := ir.UnsqueezeAxes(sq.Output(), 1)
	tail := sink(unsq.Output())

	require.False(t, pass.Run(g))
	require.Same(t, unsq.Output(), tail.Input(0))
}

func TestDynamicShapesMakeNoChange(t *testing.T) {
	pass := New()

	{ // Identity-shape rules skip dynamic shapes entirely.
		g := ir.New("dyn_pad")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, shapes.DynamicDim, 3))
		pad := ir.Pad(x.Output(), []int{0, 0}, []int{0, 0})
		tail := sink(pad.Output())
		require.False(t, pass.Run(g))
		require.Same(t, pad.Output(), tail.Input(0))
	}
	{ // Reshape with a non-constant target is dynamic and untouched.
		g := ir.New("dyn_reshape")
		x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
		target := ir.Parameter(g, "target", shapes.Make(dtypes.Int64, 2))
		r := ir.Reshape(x.Output(), target.Output())
		tail := sink(r.Output())
		require.False(t, pass.Run(g))
		require.Same(t, r.Output(), tail.Input(0))
	}
	{ // Squeeze/unsqueeze over a dynamic-rank input stays.
		g := ir.New("dyn_rank")
		x := ir.Parameter(g, "x", shapes.MakeDynamicRank(dtypes.Float32))
		sq := ir.SqueezeAxes(x.Output(), 0)
		unsq := ir.UnsqueezeAxes(sq.Output(), 0)
		tail := ir.NonZero(unsq.Output())
		require.False(t, pass.Run(g))
		require.Same(t, unsq.Output(), tail.Input(0))
	}
}

func TestStopGradientElision(t *testing.T) {
	// The gradient barrier is always spliced out, even with no consumers:
	// the only rule that never reports "no change".
	pass := New()
	g := ir.New("stop_gradient")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2))
	sg := ir.StopGradient(x.Output())
	tail := sink(sg.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))

	g2 := ir.New("stop_gradient_orphan")
	y := ir.Parameter(g2, "y", shapes.Make(dtypes.Float32, 2))
	ir.StopGradient(y.Output())
	require.True(t, pass.Run(g2))
}

func TestRegisterCustomHandler(t *testing.T) {
	pass := New()

	// Splice out elementwise Mul unconditionally, just for this test.
	pass.Register(ir.OpMul, func(n *ir.Node) bool {
		return ir.ReplaceOutput(n.Output(), n.Input(0))
	})
	g := ir.New("custom")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2))
	m := ir.Mul(x.Output(), x.Output())
	tail := ir.StopGradient(m.Output())
	pass.Register(ir.OpStopGradient, nil) // Unregistering keeps the observer.
	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
}

func TestChainConvergesUnderRepetition(t *testing.T) {
	// squeeze -> unsqueeze -> stop-gradient -> identity pad: a single pass
	// invocation handles each node once in enumeration order, so the whole
	// chain collapses in one invocation here; a second invocation confirms
	// the fixed point.
	pass := New()
	g := ir.New("chain")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	sq := ir.SqueezeAxes(x.Output(), 0)
	unsq := ir.UnsqueezeAxes(sq.Output(), 0)
	sg := ir.StopGradient(unsq.Output())
	pad := ir.Pad(sg.Output(), []int{0, 0}, []int{0, 0})
	tail := sink(pad.Output())

	// Declaring the output makes the spliced-out chain unreachable, so the
	// second invocation doesn't revisit it.
	g.SetOutputs(tail.Output())

	require.True(t, pass.Run(g))
	require.Same(t, x.Output(), tail.Input(0))
	require.False(t, pass.Run(g))
}
