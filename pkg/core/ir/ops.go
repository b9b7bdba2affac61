// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/support/sets"
)

// This file holds the op constructors and their shape/type inference rules.
// Constructors panic (through exceptions) on contract violations: arity,
// element-type and shape conflicts all fail the construction call itself.

// adjustAxisToRank converts negative axes (counting from the end) and panics
// on out-of-range values.
func adjustAxisToRank(opName string, rank, axis int) int {
	adjusted := axis
	if adjusted < 0 {
		adjusted += rank
	}
	if adjusted < 0 || adjusted >= rank {
		exceptions.Panicf("%s: axis %d is out-of-range for rank %d", opName, axis, rank)
	}
	return adjusted
}

// Parameter -----------------------------------------------------------------

type attrsParameter struct {
	name  string
	shape shapes.Shape
}

func (a *attrsParameter) OpType() OpType { return OpParameter }
func (a *attrsParameter) String() string { return fmt.Sprintf("Parameter(%q)", a.name) }

func (a *attrsParameter) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 0 {
		exceptions.Panicf("Parameter takes no inputs, %d given", len(inputs))
	}
	if !a.shape.Ok() {
		exceptions.Panicf("Parameter(%q): invalid shape", a.name)
	}
	return []shapes.Shape{a.shape.Clone()}
}

// Parameter registers an input value of the computation: an externally fed
// tensor with the declared shape, which may be partially or fully dynamic.
func Parameter(g *Graph, name string, shape shapes.Shape) *Node {
	n := newNode(g, &attrsParameter{name: name, shape: shape}, nil)
	n.Output().SetName(name)
	return n
}

// Elementwise binary ops ----------------------------------------------------

type attrsBinary struct {
	op OpType
}

func (a *attrsBinary) OpType() OpType { return a.op }
func (a *attrsBinary) String() string { return a.op.Type.String() }

func (a *attrsBinary) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 2 {
		exceptions.Panicf("%s takes 2 inputs, %d given", a.op.Type, len(inputs))
	}
	return []shapes.Shape{inferElementwise(a.op.Type.String(), inputs)}
}

// inferElementwise implements the elementwise rule: element types must match
// across inputs or inference fails; if all inputs share one static shape, the
// output is that shape; if any input shape is dynamic, the output shape is
// dynamic with best-effort rank.
func inferElementwise(opName string, inputs []*Output) shapes.Shape {
	dtype := inputs[0].DType()
	for ii, input := range inputs[1:] {
		if input.DType() != dtype {
			exceptions.Panicf("%s: mismatched element types: input[0] is %s, input[%d] is %s",
				opName, dtype, ii+1, input.DType())
		}
	}

	allStatic := true
	for _, input := range inputs {
		if !input.Shape().IsStatic() {
			allStatic = false
			break
		}
	}
	if allStatic {
		shape := inputs[0].Shape()
		for ii, input := range inputs[1:] {
			if !shape.Equal(input.Shape()) {
				exceptions.Panicf("%s: mismatched shapes: input[0] is %s, input[%d] is %s",
					opName, shape, ii+1, input.Shape())
			}
		}
		return shape.Clone()
	}

	// Dynamic case: best-effort rank only. Conflicting known ranks are still
	// a contract violation.
	rank := -1
	for _, input := range inputs {
		s := input.Shape()
		if s.DynamicRank {
			return shapes.MakeDynamicRank(dtype)
		}
		if rank == -1 {
			rank = s.Rank()
		} else if s.Rank() != rank {
			exceptions.Panicf("%s: mismatched ranks %d and %d", opName, rank, s.Rank())
		}
	}
	dims := make([]int, rank)
	for ii := range dims {
		dims[ii] = shapes.DynamicDim
	}
	return shapes.Make(dtype, dims...)
}

func binaryOp(op OpType, x, y *Output) *Node {
	return newNode(x.node.graph, &attrsBinary{op: op}, []*Output{x, y})
}

// Add returns the elementwise sum of x and y. Shapes must match exactly, no
// broadcasting is performed.
func Add(x, y *Output) *Node { return binaryOp(OpAdd, x, y) }

// Sub returns the elementwise difference of x and y.
func Sub(x, y *Output) *Node { return binaryOp(OpSub, x, y) }

// Mul returns the elementwise product of x and y.
func Mul(x, y *Output) *Node { return binaryOp(OpMul, x, y) }

// Convert --------------------------------------------------------------------

type attrsConvert struct {
	dtype dtypes.DType
}

func (a *attrsConvert) OpType() OpType { return OpConvert }
func (a *attrsConvert) String() string { return fmt.Sprintf("Convert[to=%s]", a.dtype) }

func (a *attrsConvert) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("Convert takes 1 input, %d given", len(inputs))
	}
	if a.dtype == dtypes.InvalidDType {
		exceptions.Panicf("Convert: invalid target dtype")
	}
	shape := inputs[0].Shape().Clone()
	shape.DType = a.dtype
	return []shapes.Shape{shape}
}

// Convert casts x to the given element type, keeping the shape.
func Convert(x *Output, dtype dtypes.DType) *Node {
	return newNode(x.node.graph, &attrsConvert{dtype: dtype}, []*Output{x})
}

// ConvertDType returns the target element type of a Convert node. It panics
// if the node is not a Convert.
func (n *Node) ConvertDType() dtypes.DType {
	n.AssertValid()
	attrs, ok := n.attrs.(*attrsConvert)
	if !ok {
		exceptions.Panicf("node %s is not a Convert node", n.OpType())
	}
	return attrs.dtype
}

// Reshape --------------------------------------------------------------------

type attrsReshape struct{}

func (a *attrsReshape) OpType() OpType { return OpReshape }
func (a *attrsReshape) String() string { return "Reshape" }

func (a *attrsReshape) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 2 {
		exceptions.Panicf("Reshape takes 2 inputs (data, target shape), %d given", len(inputs))
	}
	x, pattern := inputs[0], inputs[1]
	patternShape := pattern.Shape()
	if patternShape.DType != dtypes.Int64 {
		exceptions.Panicf("Reshape: target shape must be Int64, got %s", patternShape.DType)
	}
	if !patternShape.DynamicRank && patternShape.Rank() != 1 {
		exceptions.Panicf("Reshape: target shape must be a rank-1 vector, got %s", patternShape)
	}

	dims, ok := pattern.node.ConstDims()
	if !ok {
		// Target is not a compile-time constant: rank may still be known from
		// the pattern's own dimension.
		if patternShape.DynamicRank || patternShape.IsDimDynamic(0) {
			return []shapes.Shape{shapes.MakeDynamicRank(x.DType())}
		}
		outDims := make([]int, patternShape.Dim(0))
		for ii := range outDims {
			outDims[ii] = shapes.DynamicDim
		}
		return []shapes.Shape{shapes.Make(x.DType(), outDims...)}
	}

	for _, dim := range dims {
		if dim <= 0 {
			exceptions.Panicf("Reshape: target dimensions must be positive, got %v", dims)
		}
	}
	out := shapes.Make(x.DType(), dims...)
	if x.Shape().IsStatic() && out.Size() != x.Shape().Size() {
		exceptions.Panicf("Reshape: total target size %d (dimensions=%v) doesn't match input size %d (shape=%s)",
			out.Size(), dims, x.Shape().Size(), x.Shape())
	}
	return []shapes.Shape{out}
}

// Reshape reinterprets x with the target shape given by targetShape, a rank-1
// Int64 value -- usually a Constant, in which case the output shape is static
// and the total size must match. The element order is unchanged.
func Reshape(x, targetShape *Output) *Node {
	return newNode(x.node.graph, &attrsReshape{}, []*Output{x, targetShape})
}

// ReshapeDims is a shortcut for Reshape with a fresh ConstDims target.
func ReshapeDims(x *Output, dimensions ...int) *Node {
	return Reshape(x, ConstDims(x.node.graph, dimensions...).Output())
}

// Squeeze / Unsqueeze --------------------------------------------------------

// constAxesInput reads a deduplicated axis set from an axes input, which must
// be a rank-1 Int64 Constant to be statically known. Returns ok=false if the
// axes are not a compile-time constant.
func constAxesInput(opName string, axes *Output) (sets.Set[int], bool) {
	axesShape := axes.Shape()
	if axesShape.DType != dtypes.Int64 {
		exceptions.Panicf("%s: axes must be Int64, got %s", opName, axesShape.DType)
	}
	if !axesShape.DynamicRank && axesShape.Rank() != 1 {
		exceptions.Panicf("%s: axes must be a rank-1 vector, got %s", opName, axesShape)
	}
	dims, ok := axes.node.ConstDims()
	if !ok {
		return nil, false
	}
	set := sets.Make[int](len(dims))
	for _, axis := range dims {
		if axis < 0 {
			exceptions.Panicf("%s: axes must be non-negative, got %v", opName, dims)
		}
		set.Insert(axis)
	}
	return set, true
}

type attrsSqueeze struct{}

func (a *attrsSqueeze) OpType() OpType { return OpSqueeze }
func (a *attrsSqueeze) String() string { return "Squeeze" }

func (a *attrsSqueeze) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 2 {
		exceptions.Panicf("Squeeze takes 2 inputs (data, axes), %d given", len(inputs))
	}
	x := inputs[0]
	axes, ok := constAxesInput("Squeeze", inputs[1])
	if !ok || x.Shape().DynamicRank {
		// Without a static axis set (or rank) the output rank is unknown.
		return []shapes.Shape{shapes.MakeDynamicRank(x.DType())}
	}

	xShape := x.Shape()
	rank := xShape.Rank()
	for _, axis := range sets.Sorted(axes) {
		if axis >= rank {
			exceptions.Panicf("Squeeze: axis %d is out-of-range for shape %s", axis, xShape)
		}
	}
	// A squeezed axis is asserted to be of dimension 1 at runtime; it is
	// dropped regardless of its static dimension.
	newDims := make([]int, 0, rank)
	for axis, dim := range xShape.Dimensions {
		if !axes.Has(axis) {
			newDims = append(newDims, dim)
		}
	}
	return []shapes.Shape{shapes.Make(x.DType(), newDims...)}
}

// Squeeze removes the axes listed in axes, a rank-1 Int64 value -- usually a
// Constant holding a deduplicated, order-independent axis set. Each listed
// axis is asserted to be of dimension 1 at runtime.
func Squeeze(x, axes *Output) *Node {
	return newNode(x.node.graph, &attrsSqueeze{}, []*Output{x, axes})
}

// SqueezeAxes is a shortcut for Squeeze with a fresh ConstDims axis set.
func SqueezeAxes(x *Output, axes ...int) *Node {
	return Squeeze(x, ConstDims(x.node.graph, axes...).Output())
}

type attrsUnsqueeze struct{}

func (a *attrsUnsqueeze) OpType() OpType { return OpUnsqueeze }
func (a *attrsUnsqueeze) String() string { return "Unsqueeze" }

func (a *attrsUnsqueeze) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 2 {
		exceptions.Panicf("Unsqueeze takes 2 inputs (data, axes), %d given", len(inputs))
	}
	x := inputs[0]
	axes, ok := constAxesInput("Unsqueeze", inputs[1])
	if !ok || x.Shape().DynamicRank {
		return []shapes.Shape{shapes.MakeDynamicRank(x.DType())}
	}

	xShape := x.Shape()
	newRank := xShape.Rank() + len(axes)
	newDims := make([]int, newRank)
	for _, axis := range sets.Sorted(axes) {
		if axis >= newRank {
			exceptions.Panicf("Unsqueeze: axis %d is out-of-range for output rank %d", axis, newRank)
		}
		newDims[axis] = 1
	}
	nextInput := 0
	for axis := range newDims {
		if newDims[axis] == 0 {
			newDims[axis] = xShape.Dimensions[nextInput]
			nextInput++
		}
	}
	return []shapes.Shape{shapes.Make(x.DType(), newDims...)}
}

// Unsqueeze inserts size-1 axes at the positions listed in axes -- positions
// in the resulting shape, as a rank-1 Int64 value, usually a Constant.
func Unsqueeze(x, axes *Output) *Node {
	return newNode(x.node.graph, &attrsUnsqueeze{}, []*Output{x, axes})
}

// UnsqueezeAxes is a shortcut for Unsqueeze with a fresh ConstDims axis set.
func UnsqueezeAxes(x *Output, axes ...int) *Node {
	return Unsqueeze(x, ConstDims(x.node.graph, axes...).Output())
}

// Concat ---------------------------------------------------------------------

type attrsConcat struct {
	axis int
}

func (a *attrsConcat) OpType() OpType { return OpConcat }
func (a *attrsConcat) String() string { return fmt.Sprintf("Concat[axis=%d]", a.axis) }

func (a *attrsConcat) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) < 1 {
		exceptions.Panicf("Concat takes at least 1 input, none given")
	}
	dtype := inputs[0].DType()
	for ii, input := range inputs[1:] {
		if input.DType() != dtype {
			exceptions.Panicf("Concat: mismatched element types: input[0] is %s, input[%d] is %s",
				dtype, ii+1, input.DType())
		}
	}
	for _, input := range inputs {
		if input.Shape().DynamicRank {
			return []shapes.Shape{shapes.MakeDynamicRank(dtype)}
		}
	}
	rank := inputs[0].Shape().Rank()
	for ii, input := range inputs[1:] {
		if input.Shape().Rank() != rank {
			exceptions.Panicf("Concat: mismatched ranks: input[0] is %s, input[%d] is %s",
				inputs[0].Shape(), ii+1, input.Shape())
		}
	}
	axis := adjustAxisToRank("Concat", rank, a.axis)

	dims := make([]int, rank)
	for jj := range dims {
		if jj == axis {
			sum := 0
			for _, input := range inputs {
				dim := input.Shape().Dimensions[jj]
				if dim == shapes.DynamicDim || sum == shapes.DynamicDim {
					sum = shapes.DynamicDim
					continue
				}
				sum += dim
			}
			dims[jj] = sum
			continue
		}
		merged := shapes.DynamicDim
		for ii, input := range inputs {
			dim := input.Shape().Dimensions[jj]
			if dim == shapes.DynamicDim {
				continue
			}
			if merged == shapes.DynamicDim {
				merged = dim
			} else if merged != dim {
				exceptions.Panicf("Concat: input[%d] shape %s conflicts on axis %d (dimension %d vs %d)",
					ii, input.Shape(), jj, dim, merged)
			}
		}
		dims[jj] = merged
	}
	// A dynamic axis anywhere leaves the merged axis dynamic, so the result is
	// only static when every input was.
	return []shapes.Shape{shapes.Make(dtype, dims...)}
}

// Concat concatenates the inputs along the given axis (negative counts from
// the end). A single input is legal and is the identity.
func Concat(operands []*Output, axis int) *Node {
	if len(operands) == 0 {
		exceptions.Panicf("Concat takes at least 1 input, none given")
	}
	return newNode(operands[0].node.graph, &attrsConcat{axis: axis}, operands)
}

// ConcatAxis returns the concatenation axis of a Concat node. It panics if
// the node is not a Concat.
func (n *Node) ConcatAxis() int {
	n.AssertValid()
	attrs, ok := n.attrs.(*attrsConcat)
	if !ok {
		exceptions.Panicf("node %s is not a Concat node", n.OpType())
	}
	return attrs.axis
}

// ReduceSum ------------------------------------------------------------------

type attrsReduceSum struct {
	axes []int // normalized: non-negative, deduplicated, sorted
}

func (a *attrsReduceSum) OpType() OpType { return OpReduceSum }
func (a *attrsReduceSum) String() string { return fmt.Sprintf("ReduceSum[axes=%v]", a.axes) }

func (a *attrsReduceSum) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("ReduceSum takes 1 input, %d given", len(inputs))
	}
	x := inputs[0]
	if len(a.axes) == 0 {
		// An empty reduction-axis set reduces nothing: the identity.
		return []shapes.Shape{x.Shape().Clone()}
	}
	if x.Shape().DynamicRank {
		return []shapes.Shape{shapes.MakeDynamicRank(x.DType())}
	}
	xShape := x.Shape()
	rank := xShape.Rank()
	reduced := sets.MakeWith(a.axes...)
	for _, axis := range a.axes {
		if axis >= rank {
			exceptions.Panicf("ReduceSum: axis %d is out-of-range for shape %s", axis, xShape)
		}
	}
	newDims := make([]int, 0, rank-len(reduced))
	for axis, dim := range xShape.Dimensions {
		if !reduced.Has(axis) {
			newDims = append(newDims, dim)
		}
	}
	return []shapes.Shape{shapes.Make(x.DType(), newDims...)}
}

// ReduceSum sums x over the given axes, dropping them from the shape.
// Negative axes count from the end. With no axes it reduces nothing and is
// the identity.
func ReduceSum(x *Output, axes ...int) *Node {
	normalized := sets.Make[int](len(axes))
	if len(axes) > 0 {
		if x.Shape().DynamicRank {
			for _, axis := range axes {
				if axis < 0 {
					exceptions.Panicf("ReduceSum: negative axis %d requires a known rank (input shape %s)",
						axis, x.Shape())
				}
				normalized.Insert(axis)
			}
		} else {
			rank := x.Shape().Rank()
			for _, axis := range axes {
				normalized.Insert(adjustAxisToRank("ReduceSum", rank, axis))
			}
		}
	}
	return newNode(x.node.graph, &attrsReduceSum{axes: sets.Sorted(normalized)}, []*Output{x})
}

// ReduceAxes returns a copy of the normalized reduction-axis set of a
// ReduceSum node. It panics if the node is not a ReduceSum.
func (n *Node) ReduceAxes() []int {
	n.AssertValid()
	attrs, ok := n.attrs.(*attrsReduceSum)
	if !ok {
		exceptions.Panicf("node %s is not a ReduceSum node", n.OpType())
	}
	out := make([]int, len(attrs.axes))
	copy(out, attrs.axes)
	return out
}

// Pad ------------------------------------------------------------------------

type attrsPad struct {
	low, high []int
}

func (a *attrsPad) OpType() OpType { return OpPad }
func (a *attrsPad) String() string { return fmt.Sprintf("Pad[low=%v, high=%v]", a.low, a.high) }

func (a *attrsPad) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("Pad takes 1 input, %d given", len(inputs))
	}
	x := inputs[0]
	if x.Shape().DynamicRank {
		return []shapes.Shape{shapes.MakeDynamicRank(x.DType())}
	}
	xShape := x.Shape()
	rank := xShape.Rank()
	if len(a.low) != rank || len(a.high) != rank {
		exceptions.Panicf("Pad: input shape %s needs %d padding pairs, got low=%v high=%v",
			xShape, rank, a.low, a.high)
	}
	dims := make([]int, rank)
	for axis, dim := range xShape.Dimensions {
		if a.low[axis] < 0 || a.high[axis] < 0 {
			exceptions.Panicf("Pad: negative padding not supported (low=%v, high=%v)", a.low, a.high)
		}
		if dim == shapes.DynamicDim {
			dims[axis] = shapes.DynamicDim
		} else {
			dims[axis] = dim + a.low[axis] + a.high[axis]
		}
	}
	return []shapes.Shape{shapes.Make(x.DType(), dims...)}
}

// Pad pads x with low elements before and high elements after, per axis.
// All-zero padding is the identity.
func Pad(x *Output, low, high []int) *Node {
	attrs := &attrsPad{low: append([]int(nil), low...), high: append([]int(nil), high...)}
	return newNode(x.node.graph, attrs, []*Output{x})
}

// Slice ----------------------------------------------------------------------

type attrsSlice struct {
	starts, ends []int
}

func (a *attrsSlice) OpType() OpType { return OpSlice }
func (a *attrsSlice) String() string { return fmt.Sprintf("Slice[starts=%v, ends=%v]", a.starts, a.ends) }

func (a *attrsSlice) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("Slice takes 1 input, %d given", len(inputs))
	}
	x := inputs[0]
	if x.Shape().DynamicRank {
		return []shapes.Shape{shapes.MakeDynamicRank(x.DType())}
	}
	xShape := x.Shape()
	rank := xShape.Rank()
	if len(a.starts) != rank || len(a.ends) != rank {
		exceptions.Panicf("Slice: input shape %s needs %d (start, end) pairs, got starts=%v ends=%v",
			xShape, rank, a.starts, a.ends)
	}
	dims := make([]int, rank)
	for axis, dim := range xShape.Dimensions {
		start, end := a.starts[axis], a.ends[axis]
		if start < 0 || end < start {
			exceptions.Panicf("Slice: invalid range [%d, %d) on axis %d", start, end, axis)
		}
		if dim != shapes.DynamicDim && end > dim {
			exceptions.Panicf("Slice: range [%d, %d) on axis %d is out-of-bounds for shape %s",
				start, end, axis, xShape)
		}
		dims[axis] = end - start
	}
	return []shapes.Shape{shapes.Make(x.DType(), dims...)}
}

// Slice extracts the half-open ranges [starts[i], ends[i]) per axis.
// A full-range slice is the identity.
func Slice(x *Output, starts, ends []int) *Node {
	attrs := &attrsSlice{starts: append([]int(nil), starts...), ends: append([]int(nil), ends...)}
	return newNode(x.node.graph, attrs, []*Output{x})
}

// Broadcast ------------------------------------------------------------------

type attrsBroadcast struct {
	dims []int
}

func (a *attrsBroadcast) OpType() OpType { return OpBroadcast }
func (a *attrsBroadcast) String() string { return fmt.Sprintf("Broadcast[dims=%v]", a.dims) }

func (a *attrsBroadcast) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("Broadcast takes 1 input, %d given", len(inputs))
	}
	x := inputs[0]
	for _, dim := range a.dims {
		if dim <= 0 {
			exceptions.Panicf("Broadcast: target dimensions must be positive, got %v", a.dims)
		}
	}
	xShape := x.Shape()
	if xShape.IsStatic() {
		// The input aligns with the trailing axes of the target: each axis
		// must match or be 1.
		if xShape.Rank() > len(a.dims) {
			exceptions.Panicf("Broadcast: input shape %s has higher rank than target dimensions %v",
				xShape, a.dims)
		}
		offset := len(a.dims) - xShape.Rank()
		for axis, dim := range xShape.Dimensions {
			target := a.dims[offset+axis]
			if dim != 1 && dim != target {
				exceptions.Panicf("Broadcast: input shape %s is not broadcastable to %v (axis %d)",
					xShape, a.dims, axis)
			}
		}
	}
	return []shapes.Shape{shapes.Make(x.DType(), a.dims...)}
}

// Broadcast expands x to the target dimensions, aligning the input with the
// trailing axes and duplicating size-1 axes. Broadcasting to the input's own
// shape is the identity.
func Broadcast(x *Output, dimensions ...int) *Node {
	attrs := &attrsBroadcast{dims: append([]int(nil), dimensions...)}
	return newNode(x.node.graph, attrs, []*Output{x})
}

// NonZero --------------------------------------------------------------------

type attrsNonZero struct{}

func (a *attrsNonZero) OpType() OpType { return OpNonZero }
func (a *attrsNonZero) String() string { return "NonZero" }

func (a *attrsNonZero) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("NonZero takes 1 input, %d given", len(inputs))
	}
	x := inputs[0]
	if x.Shape().DynamicRank {
		return []shapes.Shape{shapes.Make(dtypes.Int64, shapes.DynamicDim, shapes.DynamicDim)}
	}
	// [rank, number of non-zero elements]: the second axis is only known at
	// runtime, so the output shape is always dynamic.
	return []shapes.Shape{shapes.Make(dtypes.Int64, max(x.Shape().Rank(), 1), shapes.DynamicDim)}
}

// NonZero returns the Int64 indices of the non-zero elements of x, with shape
// [x rank, count]. The count is only known at runtime: the output shape is
// dynamic. The result is independent of x's element type -- NonZero is the
// canonical type-agnostic operator.
func NonZero(x *Output) *Node {
	return newNode(x.node.graph, &attrsNonZero{}, []*Output{x})
}

// StopGradient ---------------------------------------------------------------

type attrsStopGradient struct{}

func (a *attrsStopGradient) OpType() OpType { return OpStopGradient }
func (a *attrsStopGradient) String() string { return "StopGradient" }

func (a *attrsStopGradient) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 1 {
		exceptions.Panicf("StopGradient takes 1 input, %d given", len(inputs))
	}
	return []shapes.Shape{inputs[0].Shape().Clone()}
}

// StopGradient is a gradient-barrier marker: the identity on the value, used
// only to stop autodiff from crossing it. Code generation has no use for it,
// so the rewrite catalog always splices it out.
func StopGradient(x *Output) *Node {
	return newNode(x.node.graph, &attrsStopGradient{}, []*Output{x})
}
