package player

import (
	"sync/atomic"

	"github.com/samber/mo"
)

// Cell is a single-writer, many-reader latest-value slot.
// Readers never block the writer and only ever see whole values.
// Values stored in a Cell must be treated as immutable once published.
type Cell[T any] struct {
	v atomic.Pointer[T]
}

// Set publishes v, replacing whatever was there.
func (c *Cell[T]) Set(v T) {
	c.v.Store(&v)
}

// Clear marks the value as unknown.
func (c *Cell[T]) Clear() {
	c.v.Store(nil)
}

// Get returns the latest value, or None if it is unknown.
func (c *Cell[T]) Get() mo.Option[T] {
	p := c.v.Load()
	if p == nil {
		return mo.None[T]()
	}
	return mo.Some(*p)
}
