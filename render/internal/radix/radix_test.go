// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package radix

import (
	"math/rand"
	"sort"
	"testing"
)

func TestSortAscending(t *testing.T) {
	keys := []uint64{5, 3, 0, 9, 1, 1, 2}
	var w Workspace
	order := w.Sort(keys, len(keys))
	if len(order) != len(keys) {
		t.Fatalf("Workspace.Sort: len(order)\nhave %d\nwant %d", len(order), len(keys))
	}
	for i := 1; i < len(order); i++ {
		if keys[order[i-1]] > keys[order[i]] {
			t.Fatalf("Workspace.Sort: out of order at %d: %d > %d", i, keys[order[i-1]], keys[order[i]])
		}
	}
}

func TestSortStable(t *testing.T) {
	// Two entries share a key; their relative index order must survive.
	keys := []uint64{1, 0, 1, 0}
	var w Workspace
	order := w.Sort(keys, len(keys))
	var zeros, ones []int
	for _, idx := range order {
		if keys[idx] == 0 {
			zeros = append(zeros, idx)
		} else {
			ones = append(ones, idx)
		}
	}
	if len(zeros) != 2 || zeros[0] != 1 || zeros[1] != 3 {
		t.Fatalf("Workspace.Sort: zeros order\nhave %v\nwant [1 3]", zeros)
	}
	if len(ones) != 2 || ones[0] != 0 || ones[1] != 2 {
		t.Fatalf("Workspace.Sort: ones order\nhave %v\nwant [0 2]", ones)
	}
}

func TestSortPartialN(t *testing.T) {
	keys := []uint64{9, 8, 7, 6}
	var w Workspace
	order := w.Sort(keys, 2)
	if len(order) != 2 {
		t.Fatalf("Workspace.Sort: len(order)\nhave %d\nwant 2", len(order))
	}
	if keys[order[0]] > keys[order[1]] {
		t.Fatal("Workspace.Sort: partial sort out of order")
	}
}

func TestSortAgainstStdlib(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	keys := make([]uint64, 1000)
	for i := range keys {
		keys[i] = uint64(r.Int63())
	}
	var w Workspace
	order := w.Sort(keys, len(keys))

	want := make([]int, len(keys))
	for i := range want {
		want[i] = i
	}
	sort.SliceStable(want, func(i, j int) bool { return keys[want[i]] < keys[want[j]] })

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Workspace.Sort: order[%d]\nhave %d\nwant %d", i, order[i], want[i])
		}
	}
}

func TestSortReusesWorkspace(t *testing.T) {
	var w Workspace
	first := append([]int(nil), w.Sort([]uint64{3, 1, 2}, 3)...)
	second := w.Sort([]uint64{30, 10, 20}, 3)
	if first[0] != 1 || first[1] != 2 || first[2] != 0 {
		t.Fatalf("Workspace.Sort: first call\nhave %v\nwant [1 2 0]", first)
	}
	if second[0] != 1 || second[1] != 2 || second[2] != 0 {
		t.Fatalf("Workspace.Sort: second call\nhave %v\nwant [1 2 0]", second)
	}
}
