package normalize

import (
	"math"
	"testing"

	"github.com/matzehuels/barscene/pkg/core/axis"
)

const tolerance = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < tolerance }

func TestHeightAt(t *testing.T) {
	tests := []struct {
		name  string
		r     axis.Range
		floor float64
		value float64
		want  float64
	}{
		{"unit range at floor min", axis.Range{Min: 0, Max: 10}, 0, 7, 0.7},
		{"top of axis", axis.Range{Min: 0, Max: 10}, 0, 10, 1},
		{"below floor clamps to zero", axis.Range{Min: 0, Max: 10}, 0, -4, 0},
		{"mixed range negative", axis.Range{Min: -10, Max: 10}, 0, -3, -0.15},
		{"mixed range positive", axis.Range{Min: -10, Max: 10}, 0, 5, 0.25},
		{"floor at max", axis.Range{Min: -10, Max: 0}, 0, -5, -0.5},
		{"floor at max above zero clamps", axis.Range{Min: -10, Max: 0}, 0, 2, 0},
		{"floor outside range is clamped", axis.Range{Min: 2, Max: 12}, -50, 7, 0.5},
		{"raised floor", axis.Range{Min: 0, Max: 10}, 4, 6, 0.2},
		{"reversed", axis.Range{Min: 0, Max: 10, Reversed: true}, 0, 7, -0.7},
		{"only zeros falls back to unit", axis.Range{}, 0, 0.5, 0.5},
		{"degenerate non-zero range", axis.Range{Min: 3, Max: 3}, 3, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeightAt(tt.value, tt.r, tt.floor)
			if !approx(got, tt.want) {
				t.Errorf("HeightAt(%v) = %v, want %v", tt.value, got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("HeightAt(%v) is not finite", tt.value)
			}
		})
	}
}

func TestHeightMonotonic(t *testing.T) {
	ranges := []axis.Range{
		{Min: 0, Max: 10},
		{Min: -10, Max: 10},
		{Min: -8, Max: -1},
		{Min: -5, Max: 20},
	}
	floors := []float64{-20, -3, 0, 2, 30}

	for _, r := range ranges {
		for _, reversed := range []bool{false, true} {
			r.Reversed = reversed
			for _, floor := range floors {
				n := New(r, floor)
				prev := n.HeightAt(r.Min - 1)
				for v := r.Min - 1; v <= r.Max+1; v += 0.25 {
					h := n.HeightAt(v)
					if !reversed && h < prev-tolerance {
						t.Fatalf("range %+v floor %v: height decreased at %v (%v < %v)", r, floor, v, h, prev)
					}
					if reversed && h > prev+tolerance {
						t.Fatalf("reversed range %+v floor %v: height increased at %v (%v > %v)", r, floor, v, h, prev)
					}
					prev = h
				}
			}
		}
	}
}

func TestFloorHasZeroHeight(t *testing.T) {
	ranges := []axis.Range{
		{Min: 0, Max: 10},
		{Min: -10, Max: 10},
		{Min: -10, Max: 0},
		{Min: 3, Max: 9, Reversed: true},
	}
	for _, r := range ranges {
		for floor := r.Min; floor <= r.Max; floor += 0.5 {
			if h := HeightAt(floor, r, floor); h != 0 {
				t.Errorf("range %+v: HeightAt(floor=%v) = %v, want 0", r, floor, h)
			}
		}
	}
}

func TestBackgroundAdjustment(t *testing.T) {
	tests := []struct {
		name  string
		r     axis.Range
		floor float64
		want  float64
	}{
		{"floor at min", axis.Range{Min: 0, Max: 10}, 0, 1},
		{"floor centred", axis.Range{Min: -10, Max: 10}, 0, 0},
		{"floor at max", axis.Range{Min: -10, Max: 0}, 0, -1},
		{"reversed floor at min", axis.Range{Min: 0, Max: 10, Reversed: true}, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.r, tt.floor)
			if !approx(n.BackgroundAdjustment, tt.want) {
				t.Errorf("BackgroundAdjustment = %v, want %v", n.BackgroundAdjustment, tt.want)
			}
		})
	}
}

func TestNormalizerFlags(t *testing.T) {
	n := New(axis.Range{Min: -4, Max: 6}, 0)
	if !n.HasNegativeValues {
		t.Error("HasNegativeValues = false, want true")
	}
	if n.NoZeroInRange {
		t.Error("NoZeroInRange = true, want false")
	}
	if !approx(n.ZeroPosition, 0.4) {
		t.Errorf("ZeroPosition = %v, want 0.4", n.ZeroPosition)
	}

	d := New(axis.Range{Min: 2, Max: 2}, 0)
	if !d.Degenerate() {
		t.Error("zero-width range should be degenerate")
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		h, eps float64
		want   bool
	}{
		{0, 0, true},
		{1e-12, 0, false},
		{1e-12, 1e-9, true},
		{-1e-6, 1e-9, false},
	}
	for _, tt := range tests {
		if got := IsZero(tt.h, tt.eps); got != tt.want {
			t.Errorf("IsZero(%v, %v) = %v, want %v", tt.h, tt.eps, got, tt.want)
		}
	}
}
