// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Package null implements a render.Backend that performs no actual
// GPU work: every allocation succeeds and returns host memory or a
// synthetic handle, every dispatch is a no-op. It is the terminal
// entry of the fallback table (spec.md section 4.11: API=Null never
// fails to Construct) and the backend tests in this module drive
// against, grounded on original_source/render/null/backend.c.
package null

import (
	"bytes"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/gviegas/render"
)

// attrCandidates is the fixed set of attribute names the null backend
// looks for in a vertex shader's source when "introspecting" it, in
// the same order resource.attrSlot assigns well-known binding slots.
// A real backend would get this from actual shader reflection; the
// null backend has no compiler to reflect, so it pattern-matches the
// source text instead, grounded on the same name set.
var attrCandidates = []struct {
	name   string
	format render.VertexFormat
}{
	{"position", render.VertexFloat3},
	{"normal", render.VertexFloat3},
	{"tangent", render.VertexFloat3},
	{"texcoord", render.VertexFloat2},
	{"color", render.VertexFloat4},
	{"joints", render.VertexFloat4},
	{"weights", render.VertexFloat4},
}

// Backend is a render.Backend, render.TextureBackend, render.StateBackend
// and render.ReadbackBackend implementation that touches no GPU API.
type Backend struct {
	Log *log.Logger

	nextHandle atomic.Uintptr
	drawable   *render.Drawable
	frame      uint64

	store map[render.BackendHandle][]byte
}

// New creates a null Backend. log may be nil, in which case
// diagnostics are discarded.
func New(logger *log.Logger) *Backend {
	return &Backend{Log: logger, store: make(map[render.BackendHandle][]byte)}
}

func (b *Backend) logf(msg string, kv ...any) {
	if b.Log != nil {
		b.Log.Debug(msg, kv...)
	}
}

func (b *Backend) alloc(size int) render.BackendHandle {
	h := render.BackendHandle(b.nextHandle.Add(1))
	if size > 0 {
		b.store[h] = make([]byte, size)
	}
	return h
}

// Construct always succeeds: there is no device to fail to find.
func (b *Backend) Construct(adapter int) bool {
	b.logf("constructed null backend", "channel", "backend", "adapter", adapter)
	return true
}

// Destruct releases the backend's host-memory bookkeeping.
func (b *Backend) Destruct() {
	b.logf("destructed null backend", "channel", "backend")
	b.store = nil
}

// EnumerateAdapters reports a single synthetic default adapter.
func (b *Backend) EnumerateAdapters() []render.AdapterInfo {
	return []render.AdapterInfo{{Index: 0, Name: "null"}}
}

// EnumerateModes reports a single synthetic display mode.
func (b *Backend) EnumerateModes(adapter int) []render.DisplayMode {
	return []render.DisplayMode{{Width: 800, Height: 600, RefreshRate: 60}}
}

// SetDrawable records d without touching any OS surface.
func (b *Backend) SetDrawable(d *render.Drawable) error {
	b.drawable = d
	return nil
}

// EnableThread is a no-op: the null backend holds no thread-bound API
// state.
func (b *Backend) EnableThread() error { return nil }

// DisableThread is a no-op.
func (b *Backend) DisableThread() {}

// Dispatch discards every batch; the null backend never renders
// anything.
func (b *Backend) Dispatch(batches []render.DispatchBatch) {}

// Flip advances the frame counter and nothing else.
func (b *Backend) Flip() { b.frame++ }

// AllocateBuffer backs the buffer with a plain host byte slice.
func (b *Backend) AllocateBuffer(size int, usage render.Usage) ([4]render.BackendHandle, error) {
	return [4]render.BackendHandle{b.alloc(size)}, nil
}

// DeallocateBuffer releases the host slice backing h.
func (b *Backend) DeallocateBuffer(h [4]render.BackendHandle) {
	delete(b.store, h[0])
}

// UploadBuffer copies data into the buffer's host slice at off.
func (b *Backend) UploadBuffer(h [4]render.BackendHandle, data []byte, off int) error {
	dst := b.store[h[0]]
	copy(dst[off:], data)
	return nil
}

// LinkBuffer is a no-op: the null backend does not interpret vertex
// layouts.
func (b *Backend) LinkBuffer(h [4]render.BackendHandle, decl *render.VertexDecl) error { return nil }

// AllocateShader stores src as the shader's sole backing state.
func (b *Backend) AllocateShader(kind render.ShaderKind, src []byte) ([4]render.BackendHandle, error) {
	h := b.alloc(len(src))
	copy(b.store[h], src)
	return [4]render.BackendHandle{h}, nil
}

// DeallocateShader releases the shader's host slice.
func (b *Backend) DeallocateShader(h [4]render.BackendHandle) { delete(b.store, h[0]) }

// UploadShader replaces the shader's stored source.
func (b *Backend) UploadShader(h [4]render.BackendHandle, src []byte) error {
	b.store[h[0]] = append([]byte(nil), src...)
	return nil
}

// AllocateProgram reserves a handle with no backing storage; the null
// backend has nothing to link.
func (b *Backend) AllocateProgram(paramCount int) ([4]render.BackendHandle, error) {
	return [4]render.BackendHandle{b.alloc(0)}, nil
}

// DeallocateProgram releases the program's handle.
func (b *Backend) DeallocateProgram(h [4]render.BackendHandle) { delete(b.store, h[0]) }

// UploadProgram "introspects" the vertex shader by matching its
// source against the well-known attribute names in attrCandidates,
// reporting one VertexAttr per match, and assigns each parameter a
// sequential Location. It is the null backend's stand-in for a real
// compiler's attribute/uniform reflection.
func (b *Backend) UploadProgram(h [4]render.BackendHandle, vert, frag [4]render.BackendHandle, layout *render.ProgramLayout) error {
	src := b.store[vert[0]]
	var attrs []render.VertexAttr
	for i, c := range attrCandidates {
		if bytes.Contains(src, []byte(c.name)) {
			attrs = append(attrs, render.VertexAttr{Name: c.name, Format: c.format, Binding: i})
		}
	}
	layout.Attrs = attrs
	for i := range layout.Params {
		layout.Params[i].Location = i
	}
	return nil
}

// AllocateTarget reserves a handle sized for width*height*4 bytes, a
// plausible RGBA8 framebuffer, so ReadTarget has something to return.
func (b *Backend) AllocateTarget(width, height int, format render.PixelFormat, offscreen bool) ([4]render.BackendHandle, error) {
	return [4]render.BackendHandle{b.alloc(width * height * 4)}, nil
}

// DeallocateTarget releases the target's handle.
func (b *Backend) DeallocateTarget(h [4]render.BackendHandle) { delete(b.store, h[0]) }

// ActivateTarget is a no-op.
func (b *Backend) ActivateTarget(h [4]render.BackendHandle) {}

// AllocateTexture reserves host storage for a single-level texture.
func (b *Backend) AllocateTexture(width, height, layers, levels int, format render.PixelFormat) ([4]render.BackendHandle, error) {
	return [4]render.BackendHandle{b.alloc(width * height * layers * 4)}, nil
}

// DeallocateTexture releases the texture's handle.
func (b *Backend) DeallocateTexture(h [4]render.BackendHandle) { delete(b.store, h[0]) }

// UploadTexture copies data into the texture's host storage,
// ignoring level (the null backend keeps a single flat buffer).
func (b *Backend) UploadTexture(h [4]render.BackendHandle, level int, data []byte) error {
	dst := b.store[h[0]]
	copy(dst, data)
	return nil
}

// AllocateState reserves a handle; desc itself is not stored.
func (b *Backend) AllocateState(desc *render.StateDesc) ([4]render.BackendHandle, error) {
	return [4]render.BackendHandle{b.alloc(0)}, nil
}

// DeallocateState releases the state object's handle.
func (b *Backend) DeallocateState(h [4]render.BackendHandle) { delete(b.store, h[0]) }

// UploadState is a no-op: the null backend never reads state back.
func (b *Backend) UploadState(h [4]render.BackendHandle, desc *render.StateDesc) error { return nil }

// ReadTarget returns the target's host-side storage, zero-filled
// since Dispatch never wrote to it.
func (b *Backend) ReadTarget(h [4]render.BackendHandle, width, height int) ([]byte, error) {
	return append([]byte(nil), b.store[h[0]]...), nil
}

// ResizeTarget reallocates the target's host storage for the new
// dimensions, discarding its previous contents.
func (b *Backend) ResizeTarget(h [4]render.BackendHandle, width, height int) error {
	b.store[h[0]] = make([]byte, width*height*4)
	return nil
}
