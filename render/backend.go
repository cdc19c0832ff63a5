// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

// HashName computes the FNV-1a hash of a parameter or attribute name,
// the same scheme original_source/render/hashstrings.h precomputes a
// table of for well-known names (position, color0, texcoord0, ...).
// Callers use it to fill ParamDesc.NameHash before linking a Program;
// the backend matches against its own introspected uniform names
// using the identical hash so neither side needs to carry the string.
func HashName(name string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= prime64
	}
	return h
}

// Usage describes the intended use of a resource's storage, and
// therefore how a backend should place it.
type Usage int

// Buffer/texture usages.
const (
	UsageStatic Usage = iota
	UsageDynamic
	UsageTarget
	UsageGPUOnly
)

// UploadPolicy controls when a dirty buffer's contents are pushed to
// GPU-visible storage.
type UploadPolicy int

const (
	// UploadOnDispatch defers the upload until the buffer is
	// bound by a Render command during dispatch.
	UploadOnDispatch UploadPolicy = iota
	// UploadOnUnlock uploads as soon as the last write lock is
	// released.
	UploadOnUnlock
)

// AdapterInfo describes one GPU adapter as enumerated by a backend.
// Creating the underlying device/adapter object is a windowing-layer
// concern; this core only needs the identity and index to drive
// selection.
type AdapterInfo struct {
	Index int
	Name  string
}

// DisplayMode describes one mode an adapter can drive a display in.
type DisplayMode struct {
	Width, Height int
	RefreshRate   int
}

// Drawable describes an OS-level render surface.
// Concrete creation is external to this core (see spec.md section 1);
// this struct is the contract a backend consumes.
type Drawable struct {
	Type        DrawableType
	Adapter     int
	Width       int
	Height      int
	RefreshRate int
	// Handle carries whatever OS-specific opaque data the
	// windowing layer associated with the surface (an *os
	// window handle, a wl_surface pointer, ...). The core never
	// inspects it.
	Handle any
}

// DrawableType enumerates the kinds of render surface a Drawable can
// describe.
type DrawableType int

const (
	DrawableWindow DrawableType = iota
	DrawableOffscreen
	DrawableFullscreen
)

// PixelFormat describes the format of a drawable/target's color data.
type PixelFormat int

// Supported pixel formats.
const (
	FormatR8G8B8X8 PixelFormat = iota
	FormatR8G8B8A8
	FormatB8G8R8A8
)

// ColorSpace describes the color space a drawable/target renders
// into.
type ColorSpace int

const (
	ColorSpaceLinear ColorSpace = iota
	ColorSpaceSRGB
)

// ClearMask is a bitmask of buffers a Clear command targets.
type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil
)

// ColorMask is a bitmask of color channels a Clear/draw writes.
type ColorMask int

const (
	ColorMaskRed ColorMask = 1 << iota
	ColorMaskGreen
	ColorMaskBlue
	ColorMaskAlpha
	ColorMaskAll = ColorMaskRed | ColorMaskGreen | ColorMaskBlue | ColorMaskAlpha
)

// BackendHandle is an opaque, backend-owned value (an API object
// name, a pointer bit-cast to uintptr, ...). The core never
// interprets it; it only carries up to four per resource so a
// backend can stash whatever it needs (e.g. a GL-family target
// carries color texture, depth buffer, framebuffer object and
// vertex array in its four slots).
type BackendHandle uintptr

// Backend is the trait every concrete rendering API implementation
// satisfies. It is the sole ABI between this core and a concrete
// backend (spec.md section 6, "Backend operation table"): none of
// its methods assume any state beyond what is passed to them and the
// receiver itself.
//
// Implementations that also support textures or explicit pipeline
// state additionally implement TextureBackend and/or StateBackend;
// callers probe for those with a type assertion, the same way the
// teacher's driver package treats Presenter as an optional
// capability of a GPU.
type Backend interface {
	// Construct initializes the backend for the given adapter.
	// It returns false if the backend's API is unavailable on
	// this host (missing library, no matching device, ...); the
	// caller must then Destruct and try the next fallback API.
	Construct(adapter int) bool

	// Destruct releases everything the backend owns. It must be
	// safe to call on a backend whose Construct returned false.
	Destruct()

	// EnumerateAdapters lists the GPU adapters visible to this
	// backend.
	EnumerateAdapters() []AdapterInfo

	// EnumerateModes lists the display modes a given adapter
	// supports.
	EnumerateModes(adapter int) []DisplayMode

	// SetDrawable attaches d as the backend's current render
	// surface, deallocating any previously attached drawable and
	// resizing the framebuffer target to match d's dimensions.
	// It implicitly binds the calling goroutine's thread-local
	// current-backend slot (spec.md section 4.11).
	SetDrawable(d *Drawable) error

	// EnableThread binds this backend to the calling thread, for
	// backends (GL-family) whose API state is bound per OS
	// thread rather than process-wide.
	EnableThread() error

	// DisableThread releases the calling thread's binding.
	DisableThread()

	// Dispatch translates the sorted commands of each context in
	// order into backend-specific calls.
	Dispatch(batches []DispatchBatch)

	// Flip presents the backend's current framebuffer and
	// advances its frame counter.
	Flip()

	// AllocateBuffer reserves backend-side storage for a buffer
	// of the given byte size.
	AllocateBuffer(size int, usage Usage) (h [4]BackendHandle, err error)

	// DeallocateBuffer releases backend-side storage previously
	// returned by AllocateBuffer.
	DeallocateBuffer(h [4]BackendHandle)

	// UploadBuffer transfers data into a buffer's backend-side
	// storage, starting at byte offset off.
	UploadBuffer(h [4]BackendHandle, data []byte, off int) error

	// LinkBuffer associates API-level metadata (e.g. a vertex
	// declaration) with a buffer's backend-side storage. Only
	// vertex buffers use this; other kinds pass a nil decl.
	LinkBuffer(h [4]BackendHandle, decl *VertexDecl) error

	// AllocateShader compiles or otherwise prepares source bytes
	// for use as a shader of the given type.
	AllocateShader(kind ShaderKind, src []byte) (h [4]BackendHandle, err error)

	// DeallocateShader releases a shader's backend-side state.
	DeallocateShader(h [4]BackendHandle)

	// UploadShader re-submits source for an already-allocated
	// shader, used on reload.
	UploadShader(h [4]BackendHandle, src []byte) error

	// AllocateProgram reserves backend-side state for a program
	// with room for the given number of parameters.
	AllocateProgram(paramCount int) (h [4]BackendHandle, err error)

	// DeallocateProgram releases a program's backend-side state.
	DeallocateProgram(h [4]BackendHandle)

	// UploadProgram attaches vert and frag, links them, and
	// populates layout with the resulting attribute/parameter
	// introspection per spec.md section 4.7's contract.
	UploadProgram(h [4]BackendHandle, vert, frag [4]BackendHandle, layout *ProgramLayout) error

	// AllocateTarget creates the API objects backing a render
	// target (framebuffer object, color/depth attachments, ...).
	AllocateTarget(width, height int, format PixelFormat, offscreen bool) (h [4]BackendHandle, err error)

	// DeallocateTarget releases a target's backend-side state.
	DeallocateTarget(h [4]BackendHandle)

	// ActivateTarget makes h the active render target for
	// subsequent draw/clear commands.
	ActivateTarget(h [4]BackendHandle)
}

// TextureBackend is the optional capability a Backend implements to
// support sampled textures distinct from render targets.
type TextureBackend interface {
	AllocateTexture(width, height, layers, levels int, format PixelFormat) (h [4]BackendHandle, err error)
	DeallocateTexture(h [4]BackendHandle)
	UploadTexture(h [4]BackendHandle, level int, data []byte) error
}

// StateBackend is the optional capability a Backend implements to
// support explicit pipeline state objects bound by a Render command.
type StateBackend interface {
	AllocateState(desc *StateDesc) (h [4]BackendHandle, err error)
	DeallocateState(h [4]BackendHandle)
	UploadState(h [4]BackendHandle, desc *StateDesc) error
}

// ReadbackBackend is the optional capability a Backend implements to
// support synchronous readback of a render target's contents.
type ReadbackBackend interface {
	ReadTarget(h [4]BackendHandle, width, height int) ([]byte, error)
	ResizeTarget(h [4]BackendHandle, width, height int) error
}

// ShaderKind distinguishes the programmable stage a Shader occupies.
type ShaderKind int

const (
	ShaderVertex ShaderKind = iota
	ShaderPixel
)

// VertexAttr describes one attribute of a vertex declaration.
type VertexAttr struct {
	Name    string
	Format  VertexFormat
	Binding int
	Offset  int
}

// VertexFormat describes the storage format of a vertex attribute.
type VertexFormat int

const (
	VertexFloat1 VertexFormat = iota
	VertexFloat2
	VertexFloat3
	VertexFloat4
	VertexUByte4N
)

// Size returns the byte size of one element in format f.
func (f VertexFormat) Size() int {
	switch f {
	case VertexFloat1:
		return 4
	case VertexFloat2:
		return 8
	case VertexFloat3:
		return 12
	case VertexFloat4:
		return 16
	case VertexUByte4N:
		return 4
	default:
		return 0
	}
}

// MaxVertexAttrs bounds the number of attributes a VertexDecl may
// describe.
const MaxVertexAttrs = 16

// VertexDecl describes the layout of one vertex buffer's elements.
// Built with NewVertexDecl, replacing the original's variadic
// (format, attribute)... constructor (spec.md section 9).
type VertexDecl struct {
	Attrs  []VertexAttr
	Stride int
}

// NewVertexDecl builds a VertexDecl from a slice of attribute
// records, computing each attribute's offset and the overall stride
// in declaration order.
func NewVertexDecl(attrs []VertexAttr) *VertexDecl {
	if len(attrs) > MaxVertexAttrs {
		panic("render: too many vertex attributes")
	}
	d := &VertexDecl{Attrs: make([]VertexAttr, len(attrs))}
	off := 0
	for i, a := range attrs {
		a.Offset = off
		d.Attrs[i] = a
		off += a.Format.Size()
	}
	d.Stride = off
	return d
}

// ParamType is the type of a program parameter.
type ParamType int

const (
	ParamFloat4 ParamType = iota
	ParamInt4
	ParamMatrix
	ParamTexture
)

// Size returns the byte footprint a parameter of type t claims in a
// parameter buffer, per spec.md section 4.7.
func (t ParamType) Size() int {
	switch t {
	case ParamFloat4, ParamInt4:
		return 16
	case ParamMatrix:
		return 64
	case ParamTexture:
		return 4
	default:
		panic("render: undefined parameter type")
	}
}

// ParamDesc describes one parameter of a Program.
type ParamDesc struct {
	NameHash uint64
	Type     ParamType
	Dim      int
	Offset   int
	Stages   ShaderStageMask
	// Location is resolved by the backend during UploadProgram.
	Location int
}

// ShaderStageMask is a bitmask of programmable stages a parameter is
// visible to.
type ShaderStageMask int

const (
	StageVertex ShaderStageMask = 1 << iota
	StagePixel
)

// ProgramLayout is populated by Backend.UploadProgram with the
// result of attribute/uniform introspection.
type ProgramLayout struct {
	Attrs      []VertexAttr
	Params     []ParamDesc
	ParamSize  int
	Stride     int
}

// StateDesc describes explicit pipeline state (blend, depth,
// stencil, raster), promoted to a first-class type per
// SPEC_FULL.md's supplement from original_source/render/pipeline.c.
type StateDesc struct {
	BlendEnable  bool
	SrcFactor    BlendFactor
	DstFactor    BlendFactor
	DepthTest    bool
	DepthWrite   bool
	StencilTest  bool
	StencilRef   uint32
	CullBackFace bool
}

// BlendFactor is the type of a blend equation operand.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendInvSrcAlpha
)

// DispatchBatch is one context's sorted command indices plus the
// data Dispatch needs to translate them, handed to Backend.Dispatch
// in submission order.
type DispatchBatch struct {
	Commands []Command
	Order    []int
	Target   [4]BackendHandle
	Group    byte
}
