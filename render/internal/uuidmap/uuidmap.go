// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Package uuidmap implements a fixed-size, open-addressed map keyed
// by a resource UUID.
//
// It exists because the Resource Registry needs to go from a
// resource's identity to whatever the registry currently has bound
// for it (a handle, bit-cast to a pointer-sized value) without the
// unbounded growth of a Go map - the bucket count is fixed at
// construction time, matching the fixed resource tables the rest of
// the core uses (shader_max, program_max, buffer_max).
package uuidmap

import "github.com/google/uuid"

type bucket struct {
	key  uuid.UUID
	val  uintptr
	used bool
}

// Map is an open-addressed uuid.UUID -> uintptr table with linear
// probing and a fixed bucket count chosen at construction.
//
// Map is not safe for concurrent use; callers serialize access
// (the Resource Registry guards it with its own mutex).
type Map struct {
	buckets []bucket
	count   int
}

// New creates a Map with room for approximately capacity entries
// before load factor degrades probing; the bucket array is sized to
// roughly double the requested capacity to keep chains short.
func New(capacity int) *Map {
	n := capacity*2 + 1
	if n < 1 {
		n = 1
	}
	return &Map{buckets: make([]bucket, n)}
}

func (m *Map) slot(key uuid.UUID) int {
	h := fnv1a(key[:])
	return int(h % uint64(len(m.buckets)))
}

// Insert adds or replaces the value stored for key.
// It reports false if the table has no free bucket to chain into.
func (m *Map) Insert(key uuid.UUID, val uintptr) bool {
	if len(m.buckets) == 0 {
		return false
	}
	i := m.slot(key)
	for n := 0; n < len(m.buckets); n++ {
		j := (i + n) % len(m.buckets)
		b := &m.buckets[j]
		if !b.used {
			*b = bucket{key: key, val: val, used: true}
			m.count++
			return true
		}
		if b.key == key {
			b.val = val
			return true
		}
	}
	return false
}

// Lookup returns the value stored for key, if any.
func (m *Map) Lookup(key uuid.UUID) (val uintptr, ok bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	i := m.slot(key)
	for n := 0; n < len(m.buckets); n++ {
		j := (i + n) % len(m.buckets)
		b := &m.buckets[j]
		if !b.used {
			return 0, false
		}
		if b.key == key {
			return b.val, true
		}
	}
	return 0, false
}

// Erase removes key from the map, if present, and repairs the probe
// chain of any entry displaced by the removal.
func (m *Map) Erase(key uuid.UUID) {
	if len(m.buckets) == 0 {
		return
	}
	i := m.slot(key)
	hole := -1
	for n := 0; n < len(m.buckets); n++ {
		j := (i + n) % len(m.buckets)
		b := &m.buckets[j]
		if !b.used {
			return
		}
		if b.key == key {
			hole = j
			break
		}
	}
	if hole < 0 {
		return
	}
	m.buckets[hole] = bucket{}
	m.count--
	// Re-insert every entry in the same probe run that followed
	// the hole, so Lookup chains are not broken.
	j := (hole + 1) % len(m.buckets)
	for m.buckets[j].used {
		b := m.buckets[j]
		m.buckets[j] = bucket{}
		m.count--
		m.Insert(b.key, b.val)
		j = (j + 1) % len(m.buckets)
	}
}

// Len returns the number of entries currently stored.
func (m *Map) Len() int { return m.count }

// fnv1a hashes b using the 64-bit FNV-1a algorithm, matching the
// string-hashing approach original_source/render/hashstrings.h uses
// for name lookups elsewhere in the core.
func fnv1a(b []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}
