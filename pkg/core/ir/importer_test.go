// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	g := New("import")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	y := Parameter(g, "y", shapes.Make(dtypes.Float32, 2, 3))

	sum := must.M1(Build(g, &MapOpDesc{
		OpKind: "Add", OpName: "sum",
		In: []*Output{x.Output(), y.Output()},
	}))
	require.Equal(t, OpAdd, sum.OpType())
	require.Equal(t, "sum", sum.Output().Name())

	converted := must.M1(Build(g, &MapOpDesc{
		OpKind: "Convert", OpName: "to_f64",
		In:    []*Output{sum.Output()},
		Attrs: map[string]any{"to": dtypes.Float64},
	}))
	require.Equal(t, dtypes.Float64, converted.DType())

	reduced := must.M1(Build(g, &MapOpDesc{
		OpKind: "ReduceSum", OpName: "total",
		In:    []*Output{converted.Output()},
		Attrs: map[string]any{"axes": []int{0, 1}},
	}))
	require.True(t, reduced.IsScalar())

	target := ConstDims(g, 3, 2)
	reshaped := must.M1(Build(g, &MapOpDesc{
		OpKind: "Reshape", OpName: "transposed_shape",
		In: []*Output{x.Output(), target.Output()},
	}))
	require.Equal(t, []int{3, 2}, reshaped.Shape().Dimensions)

	concat := must.M1(Build(g, &MapOpDesc{
		OpKind: "Concat", OpName: "stacked",
		In:    []*Output{x.Output(), y.Output()},
		Attrs: map[string]any{"axis": 0},
	}))
	require.Equal(t, []int{4, 3}, concat.Shape().Dimensions)
}

func TestBuildErrors(t *testing.T) {
	g := New("import_errors")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	y := Parameter(g, "y", shapes.Make(dtypes.Float32, 7))

	// Unknown kind.
	_, err := Build(g, &MapOpDesc{OpKind: "Gemm", OpName: "mm"})
	require.ErrorContains(t, err, "unknown operator kind")
	require.ErrorContains(t, err, "mm")

	// Missing attribute: reported with the operator's name.
	_, err = Build(g, &MapOpDesc{
		OpKind: "Concat", OpName: "stacked",
		In: []*Output{x.Output()},
	})
	require.ErrorContains(t, err, `missing attribute "axis"`)
	require.ErrorContains(t, err, "stacked")

	// Mistyped attribute.
	_, err = Build(g, &MapOpDesc{
		OpKind: "Convert", OpName: "cast",
		In:    []*Output{x.Output()},
		Attrs: map[string]any{"to": "float64"},
	})
	require.ErrorContains(t, err, "expected dtypes.DType")

	// Arity violation, caught from the constructor's panic.
	_, err = Build(g, &MapOpDesc{
		OpKind: "Add", OpName: "sum",
		In: []*Output{x.Output()},
	})
	require.ErrorContains(t, err, "takes 2 inputs")

	// Contract violation inside inference, also converted to an error.
	_, err = Build(g, &MapOpDesc{
		OpKind: "Add", OpName: "sum",
		In: []*Output{x.Output(), y.Output()},
	})
	require.ErrorContains(t, err, "mismatched")
	require.ErrorContains(t, err, "sum")

	// A failed Build leaves the rest of the graph untouched and usable.
	numNodes := g.NumNodes()
	sum := must.M1(Build(g, &MapOpDesc{
		OpKind: "Add", OpName: "ok",
		In: []*Output{x.Output(), x.Output()},
	}))
	require.Equal(t, numNodes+1, g.NumNodes())
	require.Equal(t, OpAdd, sum.OpType())
}

func TestRegisterBuilder(t *testing.T) {
	g := New("custom")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4))

	RegisterBuilder("Double", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		return Add(in[0], in[0]), nil
	})
	defer delete(opBuilders, "Double")

	doubled := must.M1(Build(g, &MapOpDesc{
		OpKind: "Double", OpName: "x2",
		In: []*Output{x.Output()},
	}))
	require.Equal(t, OpAdd, doubled.OpType())
	require.Equal(t, "x2", doubled.Output().Name())
}
