// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import (
	"sync"
	"testing"
)

func TestReserveQueueSort(t *testing.T) {
	c := NewContext(8, Handle(1), 0)
	keys := []uint64{5, 1, 3, 2, 4}
	for _, k := range keys {
		c.Queue(Command{Type: CmdClear}, k)
	}
	if n := c.Reserved(); n != len(keys) {
		t.Fatalf("Context.Reserved:\nhave %d\nwant %d", n, len(keys))
	}
	order := c.sortMerge()
	for i := 1; i < len(order); i++ {
		if c.keys[order[i-1]] > c.keys[order[i]] {
			t.Fatalf("Context.sortMerge: out of order at %d", i)
		}
	}
}

func TestReserveOverflowPanics(t *testing.T) {
	c := NewContext(1, Handle(1), 0)
	c.Queue(Command{}, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("Context.Reserve: expected panic on overflow")
		}
	}()
	c.Queue(Command{}, 1)
}

func TestConcurrentReserve(t *testing.T) {
	const n = 200
	c := NewContext(n, Handle(1), 0)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Queue(Command{Count: i}, c.SequentialKey())
		}(i)
	}
	wg.Wait()
	if c.Reserved() != n {
		t.Fatalf("Context.Reserved:\nhave %d\nwant %d", c.Reserved(), n)
	}
	seen := make(map[int]bool, n)
	for _, cmd := range c.commands {
		if seen[cmd.Count] {
			t.Fatalf("Context.Reserve: slot %d written more than once", cmd.Count)
		}
		seen[cmd.Count] = true
	}
}

func TestResetAllowsReuse(t *testing.T) {
	c := NewContext(2, Handle(1), 0)
	c.Queue(Command{}, c.SequentialKey())
	c.reset()
	if n := c.Reserved(); n != 0 {
		t.Fatalf("Context.Reserved after reset:\nhave %d\nwant 0", n)
	}
	c.Queue(Command{}, c.SequentialKey())
	c.Queue(Command{}, c.SequentialKey())
	if n := c.Reserved(); n != 2 {
		t.Fatalf("Context.Reserved:\nhave %d\nwant 2", n)
	}
}

func TestRenderKeyOrdersByTargetGroup(t *testing.T) {
	c := NewContext(2, Handle(1), 0)
	low := c.RenderKey(0, 0, 0, 0, 0)
	high := c.RenderKey(1, 0, 0, 0, 0)
	if low >= high {
		t.Fatalf("Context.RenderKey: target group bits did not dominate:\nlow %x\nhigh %x", low, high)
	}
}

func TestSortMergeMultipleContexts(t *testing.T) {
	c1 := NewContext(2, Handle(1), 0)
	c2 := NewContext(2, Handle(2), 1)
	c1.Queue(Command{}, 2)
	c1.Queue(Command{}, 1)
	c2.Queue(Command{}, 9)
	orders := SortMerge([]*Context{c1, c2})
	if len(orders) != 2 {
		t.Fatalf("SortMerge: len(orders)\nhave %d\nwant 2", len(orders))
	}
	if c1.keys[orders[0][0]] != 1 {
		t.Fatal("SortMerge: first context not sorted independently")
	}
}
