// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/x448/float16"
)

// MaxConstSizeToPrint limits how many constant elements Node.String includes.
const MaxConstSizeToPrint = 5

// Constants are zero-input nodes holding an immutable flat value buffer.
// They double as ordinary data and as compile-time shape/axis parameters for
// other nodes (see ConstDims, Reshape, Squeeze, Unsqueeze).

type attrsConstant struct {
	shape shapes.Shape
	data  any // flat buffer: []bool, []int32, []int64, []float16.Float16, []float32 or []float64
}

func (a *attrsConstant) OpType() OpType { return OpConstant }

func (a *attrsConstant) String() string {
	if a.shape.Size() <= MaxConstSizeToPrint {
		return fmt.Sprintf("Constant(%v)", a.data)
	}
	return fmt.Sprintf("Constant(%s)", a.shape)
}

func (a *attrsConstant) infer(inputs []*Output) []shapes.Shape {
	if len(inputs) != 0 {
		exceptions.Panicf("Constant takes no inputs, %d given", len(inputs))
	}
	return []shapes.Shape{a.shape.Clone()}
}

// flatLen returns the length of the flat buffer for the dtype, or -1 if the
// buffer's Go type doesn't match the dtype.
func flatLen(dtype dtypes.DType, data any) int {
	switch dtype {
	case dtypes.Bool:
		if v, ok := data.([]bool); ok {
			return len(v)
		}
	case dtypes.Int32:
		if v, ok := data.([]int32); ok {
			return len(v)
		}
	case dtypes.Int64:
		if v, ok := data.([]int64); ok {
			return len(v)
		}
	case dtypes.Float16:
		if v, ok := data.([]float16.Float16); ok {
			return len(v)
		}
	case dtypes.Float32:
		if v, ok := data.([]float32); ok {
			return len(v)
		}
	case dtypes.Float64:
		if v, ok := data.([]float64); ok {
			return len(v)
		}
	default:
		exceptions.Panicf("Constant: unsupported dtype %s", dtype)
	}
	return -1
}

// ConstFlat creates a Constant node from a static shape and its flat data
// buffer, whose Go type must match the shape's dtype and whose length must
// match the shape's size. The buffer is not copied and must not be modified
// afterwards.
func ConstFlat(g *Graph, shape shapes.Shape, data any) *Node {
	if !shape.IsStatic() {
		exceptions.Panicf("Constant: shape must be static, got %s", shape)
	}
	n := flatLen(shape.DType, data)
	if n < 0 {
		exceptions.Panicf("Constant: flat data of type %T doesn't match dtype %s", data, shape.DType)
	}
	if n != shape.Size() {
		exceptions.Panicf("Constant: flat data has %d elements, shape %s needs %d", n, shape, shape.Size())
	}
	return newNode(g, &attrsConstant{shape: shape, data: data}, nil)
}

// Const creates a scalar Constant node from a Go value. The dtype follows the
// Go type; `int` becomes Int64.
func Const(g *Graph, value any) *Node {
	switch v := value.(type) {
	case bool:
		return ConstFlat(g, shapes.Scalar[bool](), []bool{v})
	case int:
		return ConstFlat(g, shapes.Scalar[int64](), []int64{int64(v)})
	case int32:
		return ConstFlat(g, shapes.Scalar[int32](), []int32{v})
	case int64:
		return ConstFlat(g, shapes.Scalar[int64](), []int64{v})
	case float16.Float16:
		return ConstFlat(g, shapes.Make(dtypes.Float16), []float16.Float16{v})
	case float32:
		return ConstFlat(g, shapes.Scalar[float32](), []float32{v})
	case float64:
		return ConstFlat(g, shapes.Scalar[float64](), []float64{v})
	}
	exceptions.Panicf("Const: unsupported value type %T", value)
	return nil
}

// ConstScalar creates a scalar Constant of the given dtype from a float64
// value, converting as needed (including Float16).
func ConstScalar(g *Graph, dtype dtypes.DType, value float64) *Node {
	switch dtype {
	case dtypes.Bool:
		return Const(g, value != 0)
	case dtypes.Int32:
		return Const(g, int32(value))
	case dtypes.Int64:
		return Const(g, int64(value))
	case dtypes.Float16:
		return Const(g, float16.Fromfloat32(float32(value)))
	case dtypes.Float32:
		return Const(g, float32(value))
	case dtypes.Float64:
		return Const(g, value)
	}
	exceptions.Panicf("ConstScalar: unsupported dtype %s", dtype)
	return nil
}

// ConstDims creates the rank-1 Int64 Constant used as a compile-time shape or
// axis-set parameter: the target-shape input of Reshape and the axes input of
// Squeeze and Unsqueeze.
func ConstDims(g *Graph, dims ...int) *Node {
	data := make([]int64, len(dims))
	for ii, dim := range dims {
		data[ii] = int64(dim)
	}
	return ConstFlat(g, shapes.Make(dtypes.Int64, len(dims)), data)
}

// ConstValue returns the flat value buffer of a Constant node, or nil for any
// other node kind. The buffer is shared and must not be modified.
// It's an "introspection" method for backend emitters.
func (n *Node) ConstValue() any {
	if n.Type() != NodeTypeConstant {
		return nil
	}
	return n.attrs.(*attrsConstant).data
}

// ConstDims returns the values of a rank-1 Int64 Constant as ints -- the form
// used as shape and axis-set parameters. ok is false if the node is not such
// a constant.
func (n *Node) ConstDims() ([]int, bool) {
	if n.Type() != NodeTypeConstant {
		return nil, false
	}
	attrs := n.attrs.(*attrsConstant)
	if attrs.shape.DType != dtypes.Int64 || attrs.shape.Rank() != 1 {
		return nil, false
	}
	data := attrs.data.([]int64)
	out := make([]int, len(data))
	for ii, v := range data {
		out[ii] = int(v)
	}
	return out, true
}
