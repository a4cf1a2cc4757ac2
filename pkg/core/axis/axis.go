// Package axis defines the three axes of a bar scene.
//
// Rows and columns are placed on [Category] axes, which carry discrete
// index windows and optional labels. Bar heights are measured against a
// single [Value] axis, which carries the numeric [Range].
//
// Both variants satisfy the sealed [Axis] interface. Callers that need to
// treat them uniformly switch on the concrete type:
//
//	switch a := ax.(type) {
//	case *axis.Category:
//	    fmt.Println(a.Count())
//	case *axis.Value:
//	    fmt.Println(a.Range.Span())
//	}
package axis

import (
	"fmt"
	"math"
)

// Kind identifies an axis variant.
type Kind int

const (
	KindCategory Kind = iota
	KindValue
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindValue:
		return "value"
	}
	return "unknown"
}

// Axis is implemented by *Category and *Value only.
type Axis interface {
	Kind() Kind
	// AutoAdjusting reports whether the axis range follows the data.
	AutoAdjusting() bool
	sealed()
}

// Range is a numeric interval on the value axis.
type Range struct {
	Min      float64 `json:"min" bson:"min" toml:"min"`
	Max      float64 `json:"max" bson:"max" toml:"max"`
	Reversed bool    `json:"reversed,omitempty" bson:"reversed,omitempty" toml:"reversed"`
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// IsZero reports whether both bounds are zero.
func (r Range) IsZero() bool { return r.Min == 0 && r.Max == 0 }

// UnitRange is the fallback used when the data holds only zero values.
var UnitRange = Range{Min: 0, Max: 1}

// =============================================================================
// Category
// =============================================================================

// Category is a discrete axis of row or column indices. Min and Max form the
// inclusive data window; bars outside it are not laid out.
type Category struct {
	Min    int
	Max    int
	Labels []string
	Auto   bool
}

// NewCategory returns an auto-adjusting category axis covering a single index.
func NewCategory() *Category {
	return &Category{Auto: true}
}

func (*Category) Kind() Kind            { return KindCategory }
func (c *Category) AutoAdjusting() bool { return c.Auto }
func (*Category) sealed()               {}

// Count returns the number of indices in the window. It is at least 1.
func (c *Category) Count() int {
	if c.Max < c.Min {
		return 1
	}
	return c.Max - c.Min + 1
}

// SetRange sets an explicit window and disables auto adjustment.
// A window with max < min collapses to [min, min].
func (c *Category) SetRange(min, max int) bool {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	changed := c.Min != min || c.Max != max || c.Auto
	c.Min, c.Max, c.Auto = min, max, false
	return changed
}

// Fit adjusts an auto axis so that it covers [0, count-1]. It returns true
// when the window moved. Fixed axes are left untouched.
func (c *Category) Fit(count int) bool {
	if !c.Auto {
		return false
	}
	max := count - 1
	if max < 0 {
		max = 0
	}
	if c.Min == 0 && c.Max == max {
		return false
	}
	c.Min, c.Max = 0, max
	return true
}

// Contains reports whether index i is inside the window.
func (c *Category) Contains(i int) bool { return i >= c.Min && i <= c.Max }

// VisibleLabels returns the labels that fall inside the window. Missing
// labels are returned as empty strings.
func (c *Category) VisibleLabels() []string {
	out := make([]string, 0, c.Count())
	for i := c.Min; i <= c.Max; i++ {
		if i < len(c.Labels) {
			out = append(out, c.Labels[i])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// =============================================================================
// Value
// =============================================================================

// Value is the continuous axis that bar heights are measured against.
type Value struct {
	Range Range
	Auto  bool
}

// NewValue returns an auto-adjusting value axis over the unit range.
func NewValue() *Value {
	return &Value{Range: UnitRange, Auto: true}
}

func (*Value) Kind() Kind            { return KindValue }
func (v *Value) AutoAdjusting() bool { return v.Auto }
func (*Value) sealed()               {}

// SetRange sets an explicit range and disables auto adjustment.
// Reversal is preserved. An inverted range is rejected.
func (v *Value) SetRange(min, max float64) bool {
	if max < min {
		return false
	}
	changed := v.Range.Min != min || v.Range.Max != max || v.Auto
	v.Range.Min, v.Range.Max, v.Auto = min, max, false
	return changed
}

// SetReversed flips the axis direction.
func (v *Value) SetReversed(reversed bool) bool {
	if v.Range.Reversed == reversed {
		return false
	}
	v.Range.Reversed = reversed
	return true
}

// Fit adjusts an auto axis to the data limits. The resulting range always
// includes zero, and data that is entirely zero yields [UnitRange].
func (v *Value) Fit(dataMin, dataMax float64) bool {
	if !v.Auto {
		return false
	}
	r := FitRange(dataMin, dataMax)
	r.Reversed = v.Range.Reversed
	if r == v.Range {
		return false
	}
	v.Range = r
	return true
}

// FitRange widens [min, max] to include zero and falls back to [UnitRange]
// when both bounds are zero.
func FitRange(min, max float64) Range {
	if max < 0 {
		max = 0
	}
	if min > 0 {
		min = 0
	}
	if min == 0 && max == 0 {
		return UnitRange
	}
	return Range{Min: min, Max: max}
}

// Describe returns a short human-readable description of an axis.
func Describe(a Axis) string {
	switch ax := a.(type) {
	case *Category:
		return fmt.Sprintf("category[%d..%d]", ax.Min, ax.Max)
	case *Value:
		return fmt.Sprintf("value[%g..%g]", ax.Range.Min, ax.Range.Max)
	}
	return "unknown"
}
