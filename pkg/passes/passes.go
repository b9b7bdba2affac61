// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

// Package passes defines the graph-rewrite pass interface and a Manager that
// drives a pipeline of passes to a fixed point.
//
// A pass invocation is a bounded, synchronous traversal: it visits each
// reachable node once and reports whether it changed the graph. Passes are
// not required to reach a fixed point in one invocation -- the Manager
// re-runs the pipeline until a full sweep reports no change or the iteration
// budget is exhausted. The only contract the Manager depends on is that each
// invocation's changed-flag is accurate.
//
// Graphs are unprotected shared mutable state: never run passes concurrently
// on the same graph. Independent graphs can be processed in parallel.
package passes

import (
	"github.com/gomlx/tensorir/pkg/core/ir"
	"k8s.io/klog/v2"
)

// Pass is one graph-rewrite pass. Run must return whether it mutated the
// graph.
type Pass interface {
	Name() string
	Run(g *ir.Graph) bool
}

// DefaultMaxIterations bounds Manager.Run sweeps when no explicit budget is
// set.
const DefaultMaxIterations = 10

// Manager drives a pipeline of passes until no pass reports a change.
type Manager struct {
	passes        []Pass
	maxIterations int
}

// NewManager creates a Manager running the given passes, in order, in every
// sweep.
func NewManager(passes ...Pass) *Manager {
	return &Manager{passes: passes, maxIterations: DefaultMaxIterations}
}

// WithMaxIterations sets the sweep budget and returns the Manager.
func (m *Manager) WithMaxIterations(n int) *Manager {
	m.maxIterations = n
	return m
}

// Run re-applies the pipeline until a full sweep reports no change, or the
// iteration budget is exhausted. It returns whether the graph changed at all
// and how many sweeps ran.
func (m *Manager) Run(g *ir.Graph) (changed bool, sweeps int) {
	for sweeps < m.maxIterations {
		sweeps++
		sweepChanged := false
		for _, pass := range m.passes {
			passChanged := pass.Run(g)
			klog.V(1).Infof("passes: sweep %d, pass %s: changed=%v", sweeps, pass.Name(), passChanged)
			sweepChanged = passChanged || sweepChanged
		}
		if !sweepChanged {
			return changed, sweeps
		}
		changed = true
	}
	klog.V(1).Infof("passes: iteration budget (%d sweeps) exhausted on graph %q before fixed point",
		m.maxIterations, g.Name())
	return changed, sweeps
}
