// Package normalize maps raw values to normalized bar heights.
//
// A [Normalizer] is built once per update cycle from the value-axis range
// and the requested floor level. Its [Normalizer.HeightAt] returns the signed
// length of a bar measured from the floor, in units of the value-axis span:
// a value at the top of a [0,10] axis with the floor at 0 has height 1, a
// value of 7 has height 0.7.
//
// Heights are positive above the floor and negative below it. When the
// floor coincides with one of the axis extremes, bars can only grow in one
// direction and heights are clamped so that no bar points the wrong way.
// A reversed axis flips the sign of every height.
package normalize

import (
	"math"

	"github.com/matzehuels/barscene/pkg/core/axis"
)

// Normalizer holds the per-cycle constants derived from a value range and a
// floor level. The zero value is not useful; use [New].
type Normalizer struct {
	Range axis.Range

	// ActualFloor is the floor level clamped into the axis range.
	ActualFloor float64

	// HasNegativeValues is set when part of the axis lies below the floor.
	HasNegativeValues bool

	// NoZeroInRange is set when the floor sits at or beyond an axis extreme,
	// so bars never cross it.
	NoZeroInRange bool

	// HeightNormalizer is the divisor that maps values into unit positions.
	HeightNormalizer float64

	// ZeroPosition is the unit position of ActualFloor.
	ZeroPosition float64

	// BackgroundAdjustment shifts bar centres so the floor plane lines up with
	// zero height. It lies in [-1, 1].
	BackgroundAdjustment float64

	degenerate bool
}

// New derives a Normalizer for the value range r and the requested floor.
// A range with both bounds at zero is replaced by [axis.UnitRange]. Any other
// zero-width range is degenerate and maps every value to height 0.
func New(r axis.Range, floorLevel float64) Normalizer {
	if r.IsZero() {
		reversed := r.Reversed
		r = axis.UnitRange
		r.Reversed = reversed
	}

	n := Normalizer{Range: r}
	n.ActualFloor = r.Clamp(floorLevel)
	n.HasNegativeValues = r.Min < n.ActualFloor

	maxAbs := math.Abs(r.Max - n.ActualFloor)
	if r.Max < n.ActualFloor {
		n.HeightNormalizer = math.Abs(r.Min) - math.Abs(r.Max)
		maxAbs = math.Abs(r.Max) - math.Abs(r.Min)
	} else {
		n.HeightNormalizer = r.Max - r.Min
	}

	n.NoZeroInRange = r.Max <= n.ActualFloor || r.Min >= n.ActualFloor

	if n.HeightNormalizer == 0 || !isFinite(n.HeightNormalizer) {
		n.degenerate = true
		n.BackgroundAdjustment = -1
		if r.Reversed {
			n.BackgroundAdjustment = 1
		}
		return n
	}

	n.ZeroPosition = n.PositionAt(n.ActualFloor)

	ratio := math.Max(0, math.Min(1, maxAbs/n.HeightNormalizer))
	n.BackgroundAdjustment = (ratio - 0.5) * 2
	if r.Reversed {
		n.BackgroundAdjustment = -n.BackgroundAdjustment
	}
	return n
}

// Degenerate reports whether the range has zero width.
func (n Normalizer) Degenerate() bool { return n.degenerate }

// PositionAt returns the unit position of v along the axis, 0 at Min and 1
// at Max. Degenerate ranges map everything to 0.
func (n Normalizer) PositionAt(v float64) float64 {
	if n.degenerate {
		return 0
	}
	return (v - n.Range.Min) / n.HeightNormalizer
}

// HeightAt returns the signed, normalized height of a bar with value v.
func (n Normalizer) HeightAt(v float64) float64 {
	if n.degenerate {
		return 0
	}
	h := n.PositionAt(v)
	if n.NoZeroInRange {
		if n.HasNegativeValues {
			h = math.Min(h-1, 0)
		} else {
			h = math.Max(h, 0)
		}
	} else {
		h -= n.ZeroPosition
	}
	if n.Range.Reversed {
		h = -h
	}
	if h == 0 {
		// Collapse negative zero so serialized scenes stay stable.
		h = 0
	}
	return h
}

// HeightAt is a convenience wrapper for one-off lookups.
func HeightAt(v float64, r axis.Range, floorLevel float64) float64 {
	return New(r, floorLevel).HeightAt(v)
}

// IsZero reports whether h should be treated as a zero-height bar. An
// epsilon of 0 means exact comparison.
func IsZero(h, epsilon float64) bool {
	if epsilon <= 0 {
		return h == 0
	}
	return math.Abs(h) <= epsilon
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
