// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import (
	"sync/atomic"

	"github.com/gviegas/render/internal/radix"
)

// Context is a bounded arena of commands with per-command sort keys,
// filled concurrently by producer goroutines and drained by Dispatch.
//
// Context.Reserve/Queue may be called concurrently from any number of
// goroutines. Sort and Dispatch require that producers have gone
// quiescent first (spec.md section 5): nothing here prevents a
// concurrent Reserve racing a Sort, the caller must serialize that
// externally, same as the original's "producer/submitter" split.
type Context struct {
	target   Handle
	group    byte
	capacity int

	commands []Command
	keys     []uint64
	reserved atomic.Int64
	keyCtr   atomic.Uint64

	ws radix.Workspace
}

// NewContext creates a Context with room for capacity commands,
// targeting the given render target and command group.
func NewContext(capacity int, target Handle, group byte) *Context {
	return &Context{
		target:   target,
		group:    group,
		capacity: capacity,
		commands: make([]Command, capacity),
		keys:     make([]uint64, capacity),
	}
}

// Reserved returns the number of commands currently reserved.
func (c *Context) Reserved() int { return int(c.reserved.Load()) }

// Capacity returns the context's fixed command capacity.
func (c *Context) Capacity() int { return c.capacity }

// Reserve atomically claims the next command slot, records key for
// it, and returns a pointer the caller fills in. It panics if the
// context is at capacity - overflowing a context is a caller bug, per
// spec.md section 3's invariant, not a recoverable condition.
func (c *Context) Reserve(key uint64) *Command {
	i := c.reserved.Add(1) - 1
	if int(i) >= c.capacity {
		panic("render: Context.Reserve exceeds capacity")
	}
	c.keys[i] = key
	return &c.commands[i]
}

// Queue copies cmd into the next command slot under key. It is
// equivalent to filling the pointer Reserve returns, offered for
// callers that already built a Command value.
func (c *Context) Queue(cmd Command, key uint64) {
	*c.Reserve(key) = cmd
}

// SequentialKey returns the next value of this context's monotonic
// key counter, for callers that only need reservation-order sorting.
func (c *Context) SequentialKey() uint64 { return c.keyCtr.Add(1) }

// RenderKey composes a sort key from target/blend/program/vertex-
// buffer state plus a sequence tiebreaker, per spec.md section 6's
// suggested field layout (high to low: target group, blend class,
// program, vertex buffer, depth, sequence). This supersedes the
// original's placeholder, which returned SequentialKey unconditionally
// (see SPEC_FULL.md's note on render_sort_render_key).
func (c *Context) RenderKey(targetGroup, blendClass byte, program, vertexBuffer Handle, depth float32) uint64 {
	seq := c.keyCtr.Add(1) & 0xFF
	depthBits := uint64(uint8(depth * 255))
	progBits := uint64(uint16(program))
	vbBits := uint64(uint16(vertexBuffer))
	return uint64(targetGroup)<<56 |
		uint64(blendClass)<<48 |
		progBits<<32 |
		vbBits<<16 |
		depthBits<<8 |
		seq
}

// sortMerge radix-sorts the reserved commands by key and returns the
// resulting permutation: order[i] indexes into c.commands such that
// keys[order[i]] <= keys[order[i+1]], ties broken by reservation
// order (the sort is stable).
func (c *Context) sortMerge() []int {
	n := c.Reserved()
	return c.ws.Sort(c.keys, n)
}

// reset zeroes the reserved counter with release ordering, so the
// context is safe to reuse for the next frame once Dispatch has
// consumed it. It does not reset the key counter: sequence numbers
// keep increasing across frames, consistent with original_source's
// render_sort_reset being a distinct, separately-called operation.
func (c *Context) reset() {
	c.reserved.Store(0)
}

// SortMerge runs sortMerge across several contexts independently, one
// permutation per context, matching spec.md section 4.10's
// sort_merge(contexts) entry point.
func SortMerge(contexts []*Context) [][]int {
	out := make([][]int, len(contexts))
	for i, c := range contexts {
		out[i] = c.sortMerge()
	}
	return out
}
