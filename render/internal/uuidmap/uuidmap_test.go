// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package uuidmap

import (
	"testing"

	"github.com/google/uuid"
)

func TestInsertLookupErase(t *testing.T) {
	m := New(8)
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
		if !m.Insert(ids[i], uintptr(i+1)) {
			t.Fatalf("Map.Insert[%d]: unexpected failure", i)
		}
	}
	if n := m.Len(); n != len(ids) {
		t.Fatalf("Map.Len:\nhave %d\nwant %d", n, len(ids))
	}
	for i, id := range ids {
		v, ok := m.Lookup(id)
		if !ok || v != uintptr(i+1) {
			t.Fatalf("Map.Lookup[%d]:\nhave (%d, %t)\nwant (%d, true)", i, v, ok, i+1)
		}
	}

	m.Erase(ids[3])
	if _, ok := m.Lookup(ids[3]); ok {
		t.Fatal("Map.Lookup: erased key still resolves")
	}
	// Erase must not break the probe chain of entries that followed
	// the removed one into the same run.
	for i, id := range ids {
		if i == 3 {
			continue
		}
		if _, ok := m.Lookup(id); !ok {
			t.Fatalf("Map.Lookup[%d]: lost after unrelated Erase", i)
		}
	}
	if n := m.Len(); n != len(ids)-1 {
		t.Fatalf("Map.Len after Erase:\nhave %d\nwant %d", n, len(ids)-1)
	}
}

func TestInsertReplaces(t *testing.T) {
	m := New(4)
	id := uuid.New()
	m.Insert(id, 1)
	m.Insert(id, 2)
	if n := m.Len(); n != 1 {
		t.Fatalf("Map.Len:\nhave %d\nwant 1", n)
	}
	v, ok := m.Lookup(id)
	if !ok || v != 2 {
		t.Fatalf("Map.Lookup:\nhave (%d, %t)\nwant (2, true)", v, ok)
	}
}

func TestLookupMissing(t *testing.T) {
	m := New(4)
	m.Insert(uuid.New(), 1)
	if _, ok := m.Lookup(uuid.New()); ok {
		t.Fatal("Map.Lookup: unexpected success for absent key")
	}
}
