// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Package handle implements a dense, generation-counted handle table.
//
// A Handle is an opaque 64-bit value. The low indexBits select a slot
// in a fixed-capacity table; the high bits are a generation counter
// bumped every time the slot is freed, so a handle captured before a
// free is detectably stale rather than silently aliasing whatever the
// slot holds next.
package handle

import (
	"sync/atomic"

	"github.com/gviegas/render/internal/bitm"
)

// indexBits is the width of the index portion of a Handle.
// The remaining 16 high bits carry the generation, which gives
// roughly 65k reuses of a given slot before the counter wraps -
// far beyond anything a single process lifetime will hit.
const indexBits = 48

const indexMask = 1<<indexBits - 1

// Handle is an opaque reference into a Map.
// The zero Handle is reserved for "none".
type Handle uint64

// None is the sentinel handle that never refers to a live slot.
const None Handle = 0

func makeHandle(index int, gen uint16) Handle {
	return Handle(uint64(gen)<<indexBits | uint64(index+1)&indexMask)
}

func (h Handle) index() int { return int(h&indexMask) - 1 }

func (h Handle) gen() uint16 { return uint16(h >> indexBits) }

// entry is one slot of the table.
type entry[T any] struct {
	ptr T
	gen uint16
	ref atomic.Int32
}

// Map is a fixed-capacity table of handle-addressable values, with
// atomic reference counting per slot.
//
// Map is safe for concurrent use by multiple goroutines, except that
// Reserve/Set/Free are not safe to race against one another for the
// same Handle (the spec treats reservation as the producer side and
// lookup/acquire/release as the consumer side; serializing the
// former is the caller's responsibility, same as the original).
type Map[T any] struct {
	entries []entry[T]
	free    bitm.Bitm[uint32]
}

// New creates a Map with the given fixed capacity.
func New[T any](capacity int) *Map[T] {
	m := &Map[T]{entries: make([]entry[T], capacity)}
	m.free.Grow((capacity + 31) / 32)
	// Bits beyond capacity are left set (in use) so Search never
	// hands out an out-of-range index.
	for i := capacity; i < m.free.Len(); i++ {
		m.free.Set(i)
	}
	return m
}

// Cap returns the table's fixed capacity.
func (m *Map[T]) Cap() int { return len(m.entries) }

// Reserve allocates a free slot and returns its Handle.
// It returns None if the table is exhausted.
func (m *Map[T]) Reserve() Handle {
	i, ok := m.free.Search()
	if !ok || i >= len(m.entries) {
		return None
	}
	m.free.Set(i)
	e := &m.entries[i]
	e.ref.Store(1)
	return makeHandle(i, e.gen)
}

// Set stores ptr at h's slot.
// It panics if h does not refer to a reserved slot (a caller bug, as
// with the original's assertion-guarded API).
func (m *Map[T]) Set(h Handle, ptr T) {
	e := m.entry(h)
	if e == nil {
		panic("handle: Set on invalid handle")
	}
	e.ptr = ptr
}

// Lookup returns the value stored at h, or the zero value and false
// if h is stale or out of range.
func (m *Map[T]) Lookup(h Handle) (ptr T, ok bool) {
	e := m.entry(h)
	if e == nil || e.ref.Load() == 0 {
		return ptr, false
	}
	return e.ptr, true
}

// Acquire behaves like Lookup but also increments the slot's
// reference count, atomically with the lookup. It fails (ok=false)
// if the slot's refcount has already reached zero, i.e. the handle
// is stale.
func (m *Map[T]) Acquire(h Handle) (ptr T, ok bool) {
	e := m.entry(h)
	if e == nil {
		return ptr, false
	}
	for {
		n := e.ref.Load()
		if n == 0 {
			return ptr, false
		}
		if e.ref.CompareAndSwap(n, n+1) {
			return e.ptr, true
		}
	}
}

// Release decrements h's reference count. When the count reaches
// zero, deleter (if non-nil) is invoked with the slot's value and the
// slot's generation is bumped and returned to the free list.
func (m *Map[T]) Release(h Handle, deleter func(T)) {
	e := m.entry(h)
	if e == nil {
		return
	}
	if e.ref.Add(-1) != 0 {
		return
	}
	ptr := e.ptr
	i := h.index()
	e.gen++
	var zero T
	e.ptr = zero
	m.free.Unset(i)
	if deleter != nil {
		deleter(ptr)
	}
}

// Free unconditionally reclaims h's slot, ignoring the reference
// count. It is meant for final teardown only.
func (m *Map[T]) Free(h Handle) {
	e := m.entry(h)
	if e == nil {
		return
	}
	i := h.index()
	e.gen++
	e.ref.Store(0)
	var zero T
	e.ptr = zero
	m.free.Unset(i)
}

// entry resolves h to its backing slot, validating the index bounds
// and the generation.
func (m *Map[T]) entry(h Handle) *entry[T] {
	if h == None {
		return nil
	}
	i := h.index()
	if i < 0 || i >= len(m.entries) {
		return nil
	}
	e := &m.entries[i]
	if e.gen != h.gen() {
		return nil
	}
	return e
}
