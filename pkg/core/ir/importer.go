// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// This file is the surface an external model importer speaks to: per external
// operator it supplies a kind, typed attribute values retrievable by name and
// the ordered, already-constructed input values. The core requires only these
// accessors, never the external file format itself.

// OpDesc describes one external operator to be turned into a node.
type OpDesc interface {
	// Kind is the stable operator kind name, e.g. "Reshape".
	Kind() string

	// Name is the diagnostic name identifying the operator in the source
	// model. It is transferred to the built node's output and used in error
	// reports.
	Name() string

	// Inputs are the already-constructed input values, in order.
	Inputs() []*Output

	// Attribute accessors return an error for a missing or mistyped
	// attribute.

	AttrInt(name string) (int, error)
	AttrInts(name string) ([]int, error)
	AttrString(name string) (string, error)
	AttrDType(name string) (dtypes.DType, error)
}

// BuilderFn builds a node for one operator kind from its description.
type BuilderFn func(g *Graph, desc OpDesc) (*Node, error)

var opBuilders = map[string]BuilderFn{}

// RegisterBuilder registers the builder for an operator kind, replacing any
// previous one. The builders for the core operator set are pre-registered.
func RegisterBuilder(kind string, fn BuilderFn) {
	opBuilders[kind] = fn
}

// Build constructs the node described by desc, dispatching on its kind.
// Malformed descriptions (unknown kind, missing or mistyped attribute, inputs
// violating the operator's contract) are reported per-operator with the
// identifying name; the rest of the graph is unaffected.
func Build(g *Graph, desc OpDesc) (node *Node, err error) {
	builder, found := opBuilders[desc.Kind()]
	if !found {
		return nil, errors.Errorf("op %q: unknown operator kind %q", desc.Name(), desc.Kind())
	}
	var buildErr error
	panicErr := exceptions.TryCatch[error](func() {
		node, buildErr = builder(g, desc)
	})
	if panicErr != nil {
		buildErr = panicErr
	}
	if buildErr != nil {
		return nil, errors.WithMessagef(buildErr, "op %q (%s)", desc.Name(), desc.Kind())
	}
	if desc.Name() != "" && node.NumOutputs() == 1 && node.Output().Name() == "" {
		node.Output().SetName(desc.Name())
	}
	return node, nil
}

func wantInputs(desc OpDesc, count int) []*Output {
	inputs := desc.Inputs()
	if len(inputs) != count {
		exceptions.Panicf("takes %d inputs, %d given", count, len(inputs))
	}
	return inputs
}

func init() {
	RegisterBuilder("Add", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 2)
		return Add(in[0], in[1]), nil
	})
	RegisterBuilder("Sub", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 2)
		return Sub(in[0], in[1]), nil
	})
	RegisterBuilder("Mul", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 2)
		return Mul(in[0], in[1]), nil
	})
	RegisterBuilder("Convert", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		dtype, err := desc.AttrDType("to")
		if err != nil {
			return nil, err
		}
		return Convert(in[0], dtype), nil
	})
	RegisterBuilder("Reshape", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 2)
		return Reshape(in[0], in[1]), nil
	})
	RegisterBuilder("Squeeze", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 2)
		return Squeeze(in[0], in[1]), nil
	})
	RegisterBuilder("Unsqueeze", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 2)
		return Unsqueeze(in[0], in[1]), nil
	})
	RegisterBuilder("Concat", func(g *Graph, desc OpDesc) (*Node, error) {
		axis, err := desc.AttrInt("axis")
		if err != nil {
			return nil, err
		}
		return Concat(desc.Inputs(), axis), nil
	})
	RegisterBuilder("ReduceSum", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		axes, err := desc.AttrInts("axes")
		if err != nil {
			return nil, err
		}
		return ReduceSum(in[0], axes...), nil
	})
	RegisterBuilder("Pad", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		low, err := desc.AttrInts("pads_low")
		if err != nil {
			return nil, err
		}
		high, err := desc.AttrInts("pads_high")
		if err != nil {
			return nil, err
		}
		return Pad(in[0], low, high), nil
	})
	RegisterBuilder("Slice", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		starts, err := desc.AttrInts("starts")
		if err != nil {
			return nil, err
		}
		ends, err := desc.AttrInts("ends")
		if err != nil {
			return nil, err
		}
		return Slice(in[0], starts, ends), nil
	})
	RegisterBuilder("Broadcast", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		dims, err := desc.AttrInts("dims")
		if err != nil {
			return nil, err
		}
		return Broadcast(in[0], dims...), nil
	})
	RegisterBuilder("NonZero", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		return NonZero(in[0]), nil
	})
	RegisterBuilder("StopGradient", func(g *Graph, desc OpDesc) (*Node, error) {
		in := wantInputs(desc, 1)
		return StopGradient(in[0]), nil
	})
}

// MapOpDesc is a ready-made OpDesc backed by a map of attributes. Importers
// without their own description type can use it directly.
type MapOpDesc struct {
	OpKind string
	OpName string
	In     []*Output
	Attrs  map[string]any
}

// Kind implements OpDesc.
func (d *MapOpDesc) Kind() string { return d.OpKind }

// Name implements OpDesc.
func (d *MapOpDesc) Name() string { return d.OpName }

// Inputs implements OpDesc.
func (d *MapOpDesc) Inputs() []*Output { return d.In }

func (d *MapOpDesc) attr(name string) (any, error) {
	value, found := d.Attrs[name]
	if !found {
		return nil, errors.Errorf("missing attribute %q", name)
	}
	return value, nil
}

// AttrInt implements OpDesc.
func (d *MapOpDesc) AttrInt(name string) (int, error) {
	value, err := d.attr(name)
	if err != nil {
		return 0, err
	}
	v, ok := value.(int)
	if !ok {
		return 0, errors.Errorf("attribute %q: expected int, got %T", name, value)
	}
	return v, nil
}

// AttrInts implements OpDesc.
func (d *MapOpDesc) AttrInts(name string) ([]int, error) {
	value, err := d.attr(name)
	if err != nil {
		return nil, err
	}
	v, ok := value.([]int)
	if !ok {
		return nil, errors.Errorf("attribute %q: expected []int, got %T", name, value)
	}
	return v, nil
}

// AttrString implements OpDesc.
func (d *MapOpDesc) AttrString(name string) (string, error) {
	value, err := d.attr(name)
	if err != nil {
		return "", err
	}
	v, ok := value.(string)
	if !ok {
		return "", errors.Errorf("attribute %q: expected string, got %T", name, value)
	}
	return v, nil
}

// AttrDType implements OpDesc.
func (d *MapOpDesc) AttrDType(name string) (dtypes.DType, error) {
	value, err := d.attr(name)
	if err != nil {
		return dtypes.InvalidDType, err
	}
	v, ok := value.(dtypes.DType)
	if !ok {
		return dtypes.InvalidDType, errors.Errorf("attribute %q: expected dtypes.DType, got %T", name, value)
	}
	return v, nil
}
