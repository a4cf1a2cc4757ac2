package layout

import (
	"sort"
	"sync/atomic"

	"github.com/matzehuels/barscene/pkg/core/series"
)

// buffer is a per-series double buffer. front is what readers see; back is
// scratch space for the next cycle and is never handed out.
type buffer struct {
	front atomic.Pointer[[]BarInstance]
	back  []BarInstance
}

func (b *buffer) load() []BarInstance {
	if p := b.front.Load(); p != nil {
		return *p
	}
	return nil
}

// swap publishes next and recycles the previous front as the back buffer.
func (b *buffer) swap(next []BarInstance) {
	prev := b.front.Swap(&next)
	if prev != nil {
		b.back = (*prev)[:0]
	} else {
		b.back = nil
	}
}

// Cache holds the current instance list of every series. Lists are built
// completely off to the side and published with an atomic swap, so a
// reader never observes a partially built list.
//
// Writers must be serialized by the caller. Slices returned by Front stay
// valid until the second following write for the same series; use
// Snapshot to keep a list beyond that.
type Cache struct {
	buffers map[string]*buffer
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{buffers: make(map[string]*buffer)}
}

func (c *Cache) buf(name string) *buffer {
	b, ok := c.buffers[name]
	if !ok {
		b = &buffer{}
		c.buffers[name] = b
	}
	return b
}

// Rebuild fully regenerates the instances of in.Series.
func (c *Cache) Rebuild(in Input) []BarInstance {
	b := c.buf(in.Series.Name)
	next := BuildInto(b.back, in)
	b.swap(next)
	return next
}

// Refresh recomputes geometry of the existing instances of in.Series
// without regenerating them. When the set of bars changed, it falls back
// to Rebuild. The returned bool reports whether a rebuild happened.
func (c *Cache) Refresh(in Input) ([]BarInstance, bool) {
	b := c.buf(in.Series.Name)
	cur := b.load()
	if cur == nil || len(cur) != Count(in) {
		return c.Rebuild(in), true
	}

	next := append(b.back[:0], cur...)
	for i := range next {
		if !Place(in, &next[i]) {
			b.back = next[:0]
			return c.Rebuild(in), true
		}
	}
	b.swap(next)
	return next, false
}

// Update writes fn's modifications to a copy of the current list and
// publishes it. It is used for visual-only changes such as highlights.
func (c *Cache) Update(name string, fn func([]BarInstance)) []BarInstance {
	b, ok := c.buffers[name]
	if !ok {
		return nil
	}
	next := append(b.back[:0], b.load()...)
	fn(next)
	b.swap(next)
	return next
}

// Front returns the published list of the named series.
func (c *Cache) Front(name string) []BarInstance {
	if b, ok := c.buffers[name]; ok {
		return b.load()
	}
	return nil
}

// Snapshot returns a copy of the published list.
func (c *Cache) Snapshot(name string) []BarInstance {
	return append([]BarInstance(nil), c.Front(name)...)
}

// Remove drops the named series.
func (c *Cache) Remove(name string) { delete(c.buffers, name) }

// Names returns the cached series names in sorted order.
func (c *Cache) Names() []string {
	names := make([]string, 0, len(c.buffers))
	for n := range c.buffers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a picked instance back to its data coordinate. Hits on
// unknown series, out-of-range indices or non-pickable bars fail.
func (c *Cache) Resolve(name string, index int) (series.Position, bool) {
	list := c.Front(name)
	if index < 0 || index >= len(list) {
		return series.InvalidPosition, false
	}
	b := list[index]
	if !b.Pickable {
		return series.InvalidPosition, false
	}
	return b.Coord, true
}

// IndexOf returns the instance index of p in the named series, or -1.
func (c *Cache) IndexOf(name string, p series.Position) int {
	return IndexOf(c.Front(name), p)
}

// IndexOf returns the index of the instance at p in a row-major list, or -1.
func IndexOf(list []BarInstance, p series.Position) int {
	i := sort.Search(len(list), func(i int) bool {
		c := list[i].Coord
		return c.Row > p.Row || (c.Row == p.Row && c.Col >= p.Col)
	})
	if i < len(list) && list[i].Coord == p {
		return i
	}
	return -1
}
