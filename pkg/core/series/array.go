package series

import "math"

// Item is one bar value with an optional rotation about the vertical axis,
// in degrees.
type Item struct {
	Value    float64 `json:"value" bson:"value" toml:"value"`
	Rotation float64 `json:"rotation,omitempty" bson:"rotation,omitempty" toml:"rotation"`
}

// Row is one row of items. Rows may differ in length.
type Row []Item

// Values builds a row from plain values.
func Values(vs ...float64) Row {
	r := make(Row, len(vs))
	for i, v := range vs {
		r[i] = Item{Value: v}
	}
	return r
}

// Listener receives change notifications from an Array. Indices refer to
// the array state after the change.
type Listener interface {
	ArrayReset()
	RowsAdded(start, count int)
	RowsChanged(start, count int)
	RowsRemoved(start, count int)
	RowsInserted(start, count int)
	ItemChanged(row, col int)
}

// Array is an in-memory, ragged row x column store of items. Every mutation
// notifies the subscribed listeners synchronously, in subscription order.
//
// Array is not safe for concurrent use.
type Array struct {
	rows         []Row
	rowLabels    []string
	columnLabels []string

	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewArray returns an array holding rows. The rows are not copied.
func NewArray(rows ...Row) *Array {
	return &Array{rows: rows}
}

// Subscribe registers l and returns a function that removes it again.
func (a *Array) Subscribe(l Listener) (unsubscribe func()) {
	if a.listeners == nil {
		a.listeners = make(map[int]Listener)
	}
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	a.order = append(a.order, id)
	return func() {
		delete(a.listeners, id)
		for i, o := range a.order {
			if o == id {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
	}
}

func (a *Array) notify(fn func(Listener)) {
	for _, id := range append([]int(nil), a.order...) {
		if l, ok := a.listeners[id]; ok {
			fn(l)
		}
	}
}

// RowCount returns the number of rows.
func (a *Array) RowCount() int { return len(a.rows) }

// RowAt returns row i, or nil when i is out of range.
func (a *Array) RowAt(i int) Row {
	if i < 0 || i >= len(a.rows) {
		return nil
	}
	return a.rows[i]
}

// ColumnCount returns the length of row i, or 0 when i is out of range.
func (a *Array) ColumnCount(i int) int { return len(a.RowAt(i)) }

// MaxColumnCount returns the length of the longest row.
func (a *Array) MaxColumnCount() int {
	n := 0
	for _, r := range a.rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// ItemAt returns the item at (row, col).
func (a *Array) ItemAt(row, col int) (Item, bool) {
	r := a.RowAt(row)
	if col < 0 || col >= len(r) {
		return Item{}, false
	}
	return r[col], true
}

// Contains reports whether (row, col) addresses an existing item.
func (a *Array) Contains(row, col int) bool {
	_, ok := a.ItemAt(row, col)
	return ok
}

// Rows returns a deep copy of all rows.
func (a *Array) Rows() []Row {
	out := make([]Row, len(a.rows))
	for i, r := range a.rows {
		out[i] = append(Row(nil), r...)
	}
	return out
}

// RowLabels returns the row labels.
func (a *Array) RowLabels() []string { return a.rowLabels }

// ColumnLabels returns the column labels.
func (a *Array) ColumnLabels() []string { return a.columnLabels }

// SetLabels replaces the row and column labels.
func (a *Array) SetLabels(rowLabels, columnLabels []string) {
	a.rowLabels = rowLabels
	a.columnLabels = columnLabels
	a.notify(func(l Listener) { l.ArrayReset() })
}

// Reset replaces the whole content.
func (a *Array) Reset(rows []Row) {
	a.rows = rows
	a.notify(func(l Listener) { l.ArrayReset() })
}

// AddRows appends rows and returns the index of the first new row.
func (a *Array) AddRows(rows ...Row) int {
	start := len(a.rows)
	if len(rows) == 0 {
		return start
	}
	a.rows = append(a.rows, rows...)
	a.notify(func(l Listener) { l.RowsAdded(start, len(rows)) })
	return start
}

// SetRows replaces rows starting at index start. Rows beyond the current end
// are ignored.
func (a *Array) SetRows(start int, rows ...Row) {
	if start < 0 || start >= len(a.rows) {
		return
	}
	n := 0
	for i, r := range rows {
		if start+i >= len(a.rows) {
			break
		}
		a.rows[start+i] = r
		n++
	}
	if n > 0 {
		a.notify(func(l Listener) { l.RowsChanged(start, n) })
	}
}

// InsertRows inserts rows before index start. An index equal to RowCount
// appends.
func (a *Array) InsertRows(start int, rows ...Row) {
	if start < 0 || start > len(a.rows) || len(rows) == 0 {
		return
	}
	if start == len(a.rows) {
		a.AddRows(rows...)
		return
	}
	tail := append([]Row(nil), a.rows[start:]...)
	a.rows = append(append(a.rows[:start], rows...), tail...)
	a.notify(func(l Listener) { l.RowsInserted(start, len(rows)) })
}

// RemoveRows removes count rows starting at start. The range is clipped to
// the existing rows.
func (a *Array) RemoveRows(start, count int) {
	if start < 0 || start >= len(a.rows) || count <= 0 {
		return
	}
	if start+count > len(a.rows) {
		count = len(a.rows) - start
	}
	a.rows = append(a.rows[:start], a.rows[start+count:]...)
	a.notify(func(l Listener) { l.RowsRemoved(start, count) })
}

// SetItem replaces the item at (row, col). Out-of-range addresses are
// ignored.
func (a *Array) SetItem(row, col int, item Item) {
	if !a.Contains(row, col) {
		return
	}
	a.rows[row][col] = item
	a.notify(func(l Listener) { l.ItemChanged(row, col) })
}

// Limits returns the minimum and maximum value inside the inclusive window
// rows [startRow, endRow] x columns [startCol, endCol], clipped to the
// actual data. Both limits start at zero, so the result always includes it.
func (a *Array) Limits(startRow, endRow, startCol, endCol int) (min, max float64) {
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}
	endRow = minInt(endRow, len(a.rows)-1)
	for i := startRow; i <= endRow; i++ {
		r := a.rows[i]
		last := minInt(endCol, len(r)-1)
		for j := startCol; j <= last; j++ {
			v := r[j].Value
			if math.IsNaN(v) {
				continue
			}
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
		}
	}
	return min, max
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
