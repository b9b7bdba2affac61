// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import "fmt"

// NodeType identifies the operation performed by a node.
type NodeType int

const (
	NodeTypeInvalid NodeType = iota
	NodeTypeParameter
	NodeTypeConstant
	NodeTypeAdd
	NodeTypeSub
	NodeTypeMul
	NodeTypeConvert
	NodeTypeReshape
	NodeTypeSqueeze
	NodeTypeUnsqueeze
	NodeTypeConcat
	NodeTypeReduceSum
	NodeTypePad
	NodeTypeSlice
	NodeTypeBroadcast
	NodeTypeNonZero
	NodeTypeStopGradient
)

var nodeTypeNames = [...]string{
	NodeTypeInvalid:      "Invalid",
	NodeTypeParameter:    "Parameter",
	NodeTypeConstant:     "Constant",
	NodeTypeAdd:          "Add",
	NodeTypeSub:          "Sub",
	NodeTypeMul:          "Mul",
	NodeTypeConvert:      "Convert",
	NodeTypeReshape:      "Reshape",
	NodeTypeSqueeze:      "Squeeze",
	NodeTypeUnsqueeze:    "Unsqueeze",
	NodeTypeConcat:       "Concat",
	NodeTypeReduceSum:    "ReduceSum",
	NodeTypePad:          "Pad",
	NodeTypeSlice:        "Slice",
	NodeTypeBroadcast:    "Broadcast",
	NodeTypeNonZero:      "NonZero",
	NodeTypeStopGradient: "StopGradient",
}

// String implements fmt.Stringer.
func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// OpType is the stable kind+version identifier of an operator. Two nodes with
// the same OpType have the same arity contract, attribute shape and inference
// rule. Rewrite handlers dispatch on the exact OpType.
type OpType struct {
	Type    NodeType
	Version int
}

// String implements fmt.Stringer, e.g. "Reshape.v1".
func (op OpType) String() string {
	return fmt.Sprintf("%s.v%d", op.Type, op.Version)
}

// Operator versions mirror the operator set the importer speaks. They are part
// of the dispatch key: a handler registered for Reshape.v1 never sees another
// version.
var (
	OpParameter    = OpType{NodeTypeParameter, 0}
	OpConstant     = OpType{NodeTypeConstant, 0}
	OpAdd          = OpType{NodeTypeAdd, 0}
	OpSub          = OpType{NodeTypeSub, 0}
	OpMul          = OpType{NodeTypeMul, 0}
	OpConvert      = OpType{NodeTypeConvert, 3}
	OpReshape      = OpType{NodeTypeReshape, 1}
	OpSqueeze      = OpType{NodeTypeSqueeze, 3}
	OpUnsqueeze    = OpType{NodeTypeUnsqueeze, 3}
	OpConcat       = OpType{NodeTypeConcat, 0}
	OpReduceSum    = OpType{NodeTypeReduceSum, 0}
	OpPad          = OpType{NodeTypePad, 0}
	OpSlice        = OpType{NodeTypeSlice, 0}
	OpBroadcast    = OpType{NodeTypeBroadcast, 0}
	OpNonZero      = OpType{NodeTypeNonZero, 3}
	OpStopGradient = OpType{NodeTypeStopGradient, 0}
)
