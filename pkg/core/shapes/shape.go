// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and associated tools.
//
// Shape represents the element type (DType) plus the per-axis dimensions of the
// value produced by a node in a computation graph. Unlike a concrete tensor
// shape, a graph shape may be only partially known: individual axes may be
// dynamic (size unknown until runtime, marked with DynamicDim), or the rank
// itself may be unknown.
//
// The DType enumeration comes from github.com/gomlx/gopjrt/dtypes.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a value.
//   - Axis: the index of a dimension. Plural axes.
//   - Dimension: the size of one axis.
//   - Static shape: rank known and every axis dimension known.
//   - Dynamic shape: anything else.
//
// Two comparison notions matter for graph rewriting:
//
//   - Equal: exact static equality. Shapes with any dynamic axis are never
//     Equal -- rewrites that need provably identical shapes use this.
//   - SameScheme: compatible under uncertainty -- equal rank (or one side of
//     unknown rank) and each axis either equal or unknown on at least one side.
package shapes

import (
	"encoding/gob"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// DynamicDim marks an axis whose dimension is statically unknown.
const DynamicDim = -1

// Shape represents the shape of the value produced by one output of a
// computation node.
//
// Use Make to create a static or partially dynamic shape, and MakeDynamicRank
// for a shape whose rank is unknown.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int

	// DynamicRank marks a shape whose number of axes is unknown.
	// Dimensions must be empty if set.
	DynamicRank bool
}

// HasShape is an interface for anything that has an associated Shape.
type HasShape interface {
	Shape() Shape
}

// Make returns a Shape with the given dimensions. Use DynamicDim for axes
// whose dimension is not statically known. Zero-sized axes are legal -- e.g.
// an empty axis-set constant is a length-0 vector.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim < 0 && dim != DynamicDim {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension < 0", s)
		}
	}
	return s
}

// MakeDynamicRank returns a shape whose rank (and hence every dimension) is
// unknown.
func MakeDynamicRank(dtype dtypes.DType) Shape {
	return Shape{DType: dtype, DynamicRank: true}
}

// Scalar returns a scalar Shape for the given type.
func Scalar[T dtypes.Supported]() Shape {
	return Shape{DType: dtypes.FromGenericsType[T]()}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" Shape{} is invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of axes. It panics if the rank is
// unknown -- check DynamicRank first.
func (s Shape) Rank() int {
	if s.DynamicRank {
		exceptions.Panicf("Shape.Rank() called on dynamic-rank shape %s", s)
	}
	return len(s.Dimensions)
}

// IsScalar returns whether the shape represents a scalar: a known rank of 0.
func (s Shape) IsScalar() bool { return s.Ok() && !s.DynamicRank && len(s.Dimensions) == 0 }

// IsStatic returns whether the rank and every axis dimension are known.
func (s Shape) IsStatic() bool {
	if !s.Ok() || s.DynamicRank {
		return false
	}
	return !slices.Contains(s.Dimensions, DynamicDim)
}

// IsDynamic returns whether any part of the shape (rank or any axis) is
// statically unknown.
func (s Shape) IsDynamic() bool { return s.Ok() && !s.IsStatic() }

// Dim returns the dimension of the given axis, possibly DynamicDim. The axis
// can take negative numbers, in which case it counts from the end -- so
// axis=-1 refers to the last axis. It panics for an out-of-bound axis or an
// unknown rank.
func (s Shape) Dim(axis int) int {
	if s.DynamicRank {
		exceptions.Panicf("Shape.Dim(%d) called on dynamic-rank shape %s", axis, s)
	}
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// IsDimDynamic returns whether the dimension of the given axis is unknown.
// Negative axes count from the end.
func (s Shape) IsDimDynamic(axis int) bool {
	return s.Dim(axis) == DynamicDim
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements fmt.Stringer, pretty-prints the shape. Dynamic axes print
// as "?", and a dynamic-rank shape prints as "(dtype)[...]".
func (s Shape) String() string {
	if s.DynamicRank {
		return fmt.Sprintf("(%s)[...]", s.DType)
	}
	if len(s.Dimensions) == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	parts := make([]string, 0, len(s.Dimensions))
	for _, dim := range s.Dimensions {
		if dim == DynamicDim {
			parts = append(parts, "?")
		} else {
			parts = append(parts, strconv.Itoa(dim))
		}
	}
	return fmt.Sprintf("(%s)[%s]", s.DType, strings.Join(parts, " "))
}

// Size returns the number of elements of DType needed for this shape, the
// product of all dimensions. It panics if the shape is not static.
func (s Shape) Size() (size int) {
	if !s.IsStatic() {
		exceptions.Panicf("Shape.Size() called on dynamic shape %s", s)
	}
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the memory used to store an array of the given shape, the
// same as the size in bytes. Only defined for static shapes.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	s2.DynamicRank = s.DynamicRank
	return
}

// Equal compares two shapes for exact static equality: same dtype, both fully
// static, and the same dimensions. A shape with any dynamic axis (or dynamic
// rank) is never Equal to anything -- it cannot be proven identical.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	if !s.IsStatic() || !s2.IsStatic() {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// EqualDimensions compares two shapes for exact static equality of dimensions.
// DTypes can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if !s.IsStatic() || !s2.IsStatic() {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// SameScheme returns whether two shapes are compatible under shape
// uncertainty: same dtype; if either rank is unknown they trivially match;
// otherwise ranks must be equal and each axis must either be equal or be
// dynamic on at least one side.
func (s Shape) SameScheme(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	if s.DynamicRank || s2.DynamicRank {
		return true
	}
	if len(s.Dimensions) != len(s2.Dimensions) {
		return false
	}
	for axis, dim := range s.Dimensions {
		dim2 := s2.Dimensions[axis]
		if dim != dim2 && dim != DynamicDim && dim2 != DynamicDim {
			return false
		}
	}
	return true
}

// GobSerialize shape in binary format.
func (s Shape) GobSerialize(encoder *gob.Encoder) (err error) {
	enc := func(e any) {
		if err != nil {
			return
		}
		err = encoder.Encode(e)
		if err != nil {
			err = errors.Wrapf(err, "failed to serialize Shape %s", s)
		}
	}
	enc(s.DType)
	enc(s.Dimensions)
	enc(s.DynamicRank)
	return
}

// GobDeserialize a Shape. Returns new Shape or an error.
func GobDeserialize(decoder *gob.Decoder) (s Shape, err error) {
	dec := func(data any) {
		if err != nil {
			return
		}
		err = decoder.Decode(data)
		if err != nil {
			err = errors.Wrapf(err, "failed to deserialize Shape")
		}
	}
	dec(&s.DType)
	dec(&s.Dimensions)
	dec(&s.DynamicRank)
	return
}
