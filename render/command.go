// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

// CommandType is the tag of a Command's variant, packed with the
// primitive topology for draw commands.
type CommandType byte

// Command kinds. Draw-kind values also encode a Topology in their
// low bits so dispatch can size the index count without a second
// field lookup; see CommandType.IsRender and IndexCount.
const (
	CmdClear      CommandType = 0
	CmdViewport   CommandType = 1
	cmdRenderBase CommandType = 0x10
)

// RenderCommandType builds the CommandType for a Render command with
// the given primitive topology.
func RenderCommandType(t Topology) CommandType {
	return cmdRenderBase + CommandType(t)
}

// IsRender reports whether t identifies a Render command, and if so
// the primitive topology it carries.
func (t CommandType) IsRender() (Topology, bool) {
	if t < cmdRenderBase {
		return 0, false
	}
	return Topology(t - cmdRenderBase), true
}

// Topology enumerates primitive topologies.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// primitiveMultiplier and primitiveAdd give the index-count formula
// spec.md section 4.10 describes: indexCount = multiplier*count + add.
var primitiveMultiplier = map[Topology]int{
	TopologyTriangleList:  3,
	TopologyTriangleStrip: 1,
	TopologyLineList:      2,
	TopologyLineStrip:     1,
	TopologyPointList:     1,
}

var primitiveAdd = map[Topology]int{
	TopologyTriangleStrip: 2,
	TopologyLineStrip:     1,
}

// IndexCount returns the number of indices a Render command with the
// given topology and primitive count issues.
func IndexCount(t Topology, count int) int {
	return primitiveMultiplier[t]*count + primitiveAdd[t]
}

// ClearData is the payload of a Clear command.
type ClearData struct {
	BufferMask ClearMask
	Color      [4]float32
	ColorMask  ColorMask
	Depth      float32
	Stencil    uint32
}

// ViewportData is the payload of a Viewport command.
type ViewportData struct {
	X, Y, Width, Height int
	MinZ, MaxZ          float32
	// Strict marks the region as an exact scissor, enabling
	// use_clear_scissor for subsequent Clear commands in the
	// same context (spec.md section 4.10).
	Strict bool
}

// RenderData is the payload of a Render (draw) command.
type RenderData struct {
	VertexBuffer    Handle
	IndexBuffer     Handle
	ParameterBuffer Handle
	StateBuffer     Handle
	Program         Handle
}

// Handle is the resource-reference type a Command's payload carries.
// It mirrors render/internal/handle.Handle's representation so that
// commands remain plain data with no package-internal types leaking
// into the public Command struct; resource packages convert their own
// strongly-typed handles to/from this one at the command boundary.
type Handle uint64

// Command is a tagged-variant draw-thread instruction. The zero
// Command is a Clear command that clears nothing.
type Command struct {
	Type  CommandType
	Count int
	Clear ClearData
	View  ViewportData
	Draw  RenderData
}
