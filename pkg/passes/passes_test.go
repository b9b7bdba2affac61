// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package passes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/ir"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/stretchr/testify/require"
)

// countdownPass reports a change for its first `changes` invocations, then
// settles.
type countdownPass struct {
	name    string
	changes int
	runs    int
}

func (p *countdownPass) Name() string { return p.name }

func (p *countdownPass) Run(g *ir.Graph) bool {
	p.runs++
	if p.changes > 0 {
		p.changes--
		return true
	}
	return false
}

func TestManagerFixedPoint(t *testing.T) {
	g := ir.New("fixed_point")
	a := &countdownPass{name: "a", changes: 2}
	b := &countdownPass{name: "b", changes: 0}
	m := NewManager(a, b)

	changed, sweeps := m.Run(g)
	require.True(t, changed)
	// Sweeps 1 and 2 change through a, sweep 3 confirms the fixed point.
	require.Equal(t, 3, sweeps)
	require.Equal(t, 3, a.runs)
	require.Equal(t, 3, b.runs)
}

func TestManagerNoChange(t *testing.T) {
	g := ir.New("no_change")
	a := &countdownPass{name: "a"}
	changed, sweeps := NewManager(a).Run(g)
	require.False(t, changed)
	require.Equal(t, 1, sweeps)
}

func TestManagerBudgetExhaustion(t *testing.T) {
	g := ir.New("budget")
	restless := &countdownPass{name: "restless", changes: 1 << 30}
	m := NewManager(restless).WithMaxIterations(4)

	changed, sweeps := m.Run(g)
	require.True(t, changed)
	require.Equal(t, 4, sweeps)
	require.Equal(t, 4, restless.runs)
}

// identityElision is a minimal real pass: it splices out zero padding.
type identityElision struct{}

func (identityElision) Name() string { return "IdentityElision" }

func (identityElision) Run(g *ir.Graph) bool {
	changed := false
	for _, n := range g.Reachable() {
		if n.Type() != ir.NodeTypePad {
			continue
		}
		if !n.Shape().IsStatic() || !n.Shape().Equal(n.Input(0).Shape()) {
			continue
		}
		changed = ir.ReplaceOutput(n.Output(), n.Input(0)) || changed
	}
	return changed
}

func TestManagerDrivesRealPass(t *testing.T) {
	g := ir.New("real")
	x := ir.Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	pad1 := ir.Pad(x.Output(), []int{0, 0}, []int{0, 0})
	pad2 := ir.Pad(pad1.Output(), []int{0, 0}, []int{0, 0})
	tail := ir.Mul(pad2.Output(), pad2.Output())
	g.SetOutputs(tail.Output())

	changed, sweeps := NewManager(identityElision{}).Run(g)
	require.True(t, changed)
	require.LessOrEqual(t, sweeps, 3)
	require.Same(t, x.Output(), tail.Input(0))
	require.Len(t, g.Reachable(), 2)
}
