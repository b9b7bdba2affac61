// Copyright 2026 The TensorIR Authors. SPDX-License-Identifier: Apache-2.0

package nopelim

import "github.com/gomlx/tensorir/pkg/support/sets"

// Axis-set arithmetic for the squeeze/unsqueeze rules. Axis lists are treated
// as deduplicated, order-independent sets of non-negative indices.

// axesEqual reports whether a and b denote the same axis set: their symmetric
// difference is empty.
func axesEqual(a, b []int) bool {
	return sets.MakeWith(a...).Equal(sets.MakeWith(b...))
}

// axesRemaining computes `to - from`, the axes of `to` not explained by
// `from`. There is no solution (ok=false) if `from - to` is non-empty,
// meaning `from` has axes unexplainable by `to`.
//
// When rankReducing is false, each surviving axis index >= |from| is shifted
// down by |from|, renumbering the indices across the rank change.
func axesRemaining(from, to []int, rankReducing bool) (axes []int, ok bool) {
	fromSet := sets.MakeWith(from...)
	toSet := sets.MakeWith(to...)
	if len(fromSet.Sub(toSet)) != 0 {
		return nil, false
	}
	axes = sets.Sorted(toSet.Sub(fromSet))
	if !rankReducing {
		for ii, axis := range axes {
			if axis >= len(fromSet) {
				axes[ii] = axis - len(fromSet)
			}
		}
	}
	return axes, true
}
