package selection

import (
	"strings"

	"github.com/matzehuels/barscene/pkg/errors"
)

// Mode is a set of selection flags.
type Mode uint8

const (
	// None disables selection.
	None Mode = 0
	// Item highlights the selected bar.
	Item Mode = 1 << iota
	// Row highlights every bar in the selected row.
	Row
	// Column highlights every bar in the selected column.
	Column
	// Slice shows the selected row or column in a separate cross-section.
	// It requires exactly one of Row or Column.
	Slice
	// MultiSeries extends Row and Column highlights to every series.
	MultiSeries
)

// Common presets.
const (
	ItemAndRow       = Item | Row
	ItemAndColumn    = Item | Column
	ItemRowSlice     = Item | Row | Slice
	ItemColumnSlice  = Item | Column | Slice
	ItemRowAndColumn = Item | Row | Column
	DefaultMode      = Item
)

// Has reports whether every flag in f is set.
func (m Mode) Has(f Mode) bool { return f != 0 && m&f == f }

// Validate rejects Slice without exactly one of Row or Column.
func (m Mode) Validate() error {
	if m.Has(Slice) && m.Has(Row) == m.Has(Column) {
		return errors.New(errors.ErrCodeInvalidSelectionMode,
			"slice selection needs exactly one of row or column, got %s", m)
	}
	return nil
}

var modeNames = []struct {
	m    Mode
	name string
}{
	{Item, "item"},
	{Row, "row"},
	{Column, "column"},
	{Slice, "slice"},
	{MultiSeries, "multi"},
}

// String formats the mode as a "|"-separated list, e.g. "item|row".
func (m Mode) String() string {
	if m == None {
		return "none"
	}
	var parts []string
	for _, n := range modeNames {
		if m&n.m != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseMode parses the String form. Separators may be "|", "," or "+".
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return None, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == '+' })
	var m Mode
	for _, f := range fields {
		f = strings.TrimSpace(f)
		found := false
		for _, n := range modeNames {
			if f == n.name || (n.m == MultiSeries && f == "multiseries") {
				m |= n.m
				found = true
				break
			}
		}
		if !found {
			return None, errors.New(errors.ErrCodeInvalidSelectionMode, "unknown selection flag %q", f)
		}
	}
	return m, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler using ParseMode.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Kind classifies how a bar relates to the current selection.
type Kind uint8

const (
	KindNone Kind = iota
	KindItem
	KindRow
	KindColumn
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindRow:
		return "row"
	case KindColumn:
		return "column"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "item":
		*k = KindItem
	case "row":
		*k = KindRow
	case "column":
		*k = KindColumn
	case "", "none":
		*k = KindNone
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown selection kind %q", string(b))
	}
	return nil
}
