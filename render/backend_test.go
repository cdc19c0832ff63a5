// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import "testing"

func TestHashNameDeterministic(t *testing.T) {
	a := HashName("mvp")
	b := HashName("mvp")
	if a != b {
		t.Fatalf("HashName: got different hashes for the same name: %d, %d", a, b)
	}
}

func TestHashNameDistinctNames(t *testing.T) {
	names := []string{"position", "normal", "texcoord0", "mvp", "tint"}
	seen := make(map[uint64]string, len(names))
	for _, n := range names {
		h := HashName(n)
		if other, ok := seen[h]; ok {
			t.Fatalf("HashName: %q and %q collided on %d", n, other, h)
		}
		seen[h] = n
	}
}
