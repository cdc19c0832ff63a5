// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gviegas/render"
	"github.com/gviegas/render/internal/handle"
)

// attrSlot is the fixed name -> vertex attribute slot table spec.md
// section 4.7 requires for attribute binding: a program never invents
// a new attribute slot at link time, it only reports which of these
// well-known slots its vertex shader consumes.
var attrSlot = map[string]int{
	"position": 0,
	"normal":   1,
	"tangent":  2,
	"texcoord": 3,
	"color":    4,
	"joints":   5,
	"weights":  6,
}

// Program links a vertex and a pixel Shader, holding a reference to
// each for its own lifetime, plus the parameter layout the backend
// reports after linking.
type Program struct {
	ID      UUID
	backend *Backend
	handle  render.Handle

	ref atomic.Int32
	mu  sync.Mutex

	vert, pixel *Shader
	handles     [4]render.BackendHandle
	layout      render.ProgramLayout
}

// Handle returns p's render.Handle.
func (p *Program) Handle() render.Handle { return p.handle }

// Attrs returns the vertex attributes the linked program consumes,
// sorted ascending by binding slot as ResolveAttrSlots left them.
func (p *Program) Attrs() []render.VertexAttr { return p.layout.Attrs }

// Params returns the parameter descriptors the linked program
// consumes, each carrying the byte offset into a parameter buffer
// instance that EncodeMatrix/EncodeConstant/EncodeBuffer must target.
func (p *Program) Params() []render.ParamDesc { return p.layout.Params }

// ParamSize returns the per-instance byte size a parameter buffer
// bound to p must reserve.
func (p *Program) ParamSize() int { return p.layout.ParamSize }

// AllocateProgram links vert and pixel into a new Program, taking a
// reference on each shader for the program's lifetime. Grounded on
// original_source/render/program.c's program_new, which likewise
// holds its shaders live rather than copying their bytecode.
func (b *Backend) AllocateProgram(id UUID, vert, pixel *Shader, params []render.ParamDesc) (*Program, error) {
	if vert.Kind != render.ShaderVertex || pixel.Kind != render.ShaderPixel {
		return nil, render.NewError("AllocateProgram", render.InvalidCommand, nil)
	}
	if vert.Ref() == render.Handle(handle.None) {
		return nil, render.NewError("AllocateProgram", render.StaleHandle, nil)
	}
	if pixel.Ref() == render.Handle(handle.None) {
		vert.Destroy()
		return nil, render.NewError("AllocateProgram", render.StaleHandle, nil)
	}

	h := b.programs.Reserve()
	if h == handle.None {
		vert.Destroy()
		pixel.Destroy()
		return nil, render.NewError("AllocateProgram", render.ResourceExhausted, nil)
	}

	handles, err := b.Host.Backend.AllocateProgram(len(params))
	if err != nil {
		b.programs.Free(h)
		vert.Destroy()
		pixel.Destroy()
		return nil, render.NewError("AllocateProgram", render.BackendCompileFailure, err)
	}

	layout := render.ProgramLayout{Params: append([]render.ParamDesc(nil), params...)}
	off := 0
	for i := range layout.Params {
		layout.Params[i].Offset = off
		off += layout.Params[i].Type.Size()
	}
	layout.ParamSize = off

	if err := b.Host.Backend.UploadProgram(handles, vert.handles, pixel.handles, &layout); err != nil {
		b.Host.Backend.DeallocateProgram(handles)
		b.programs.Free(h)
		vert.Destroy()
		pixel.Destroy()
		return nil, render.NewError("AllocateProgram", render.BackendCompileFailure, err)
	}
	ResolveAttrSlots(&layout)

	p := &Program{
		ID:      id,
		backend: b,
		handle:  toRender(h),
		vert:    vert,
		pixel:   pixel,
		handles: handles,
		layout:  layout,
	}
	p.ref.Store(1)
	b.programs.Set(h, p)
	b.progID.Insert(id, uintptr(p.handle))
	return p, nil
}

// LookupProgramByID resolves id to its Program, if a program with
// that identity is currently bound.
func (b *Backend) LookupProgramByID(id UUID) (*Program, bool) {
	v, ok := b.progID.Lookup(id)
	if !ok {
		return nil, false
	}
	return b.LookupProgram(render.Handle(v))
}

// ResolveAttrSlots fills in each attribute's fixed binding slot from
// the well-known name table, leaving unrecognized names bound at
// whatever slot the backend already assigned, then sorts the
// attributes ascending by binding and recomputes each attribute's
// offset and the overall vertex stride from the sorted order, per
// spec.md section 4.7. It is exported so resource/compile can apply
// the same link-time invariant to a program it compiles offline,
// without a live Program to attach it to.
func ResolveAttrSlots(layout *render.ProgramLayout) {
	attrs := layout.Attrs
	for i, a := range attrs {
		if slot, ok := attrSlot[a.Name]; ok {
			attrs[i].Binding = slot
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Binding < attrs[j].Binding })
	off := 0
	for i := range attrs {
		attrs[i].Offset = off
		off += attrs[i].Format.Size()
	}
	layout.Stride = off
}

// LookupProgram resolves h to its Program, if h is live.
func (b *Backend) LookupProgram(h render.Handle) (*Program, bool) {
	return b.programs.Lookup(fromRender(h))
}

// Ref increments p's reference count and returns p's handle, or
// render's None handle if p had already reached a refcount of zero.
func (p *Program) Ref() render.Handle {
	for {
		n := p.ref.Load()
		if n == 0 {
			return render.Handle(handle.None)
		}
		if p.ref.CompareAndSwap(n, n+1) {
			return p.handle
		}
	}
}

// Destroy releases the caller's reference. When the last reference
// drops, the program's backend-side state is deallocated and its own
// references on its vertex and pixel shaders are released in turn.
func (p *Program) Destroy() {
	if p.ref.Add(-1) != 0 {
		return
	}
	p.backend.programs.Release(fromRender(p.handle), func(*Program) {
		p.backend.progID.Erase(p.ID)
		p.backend.Host.Backend.DeallocateProgram(p.handles)
		p.vert.Destroy()
		p.pixel.Destroy()
	})
}

// Relink re-runs UploadProgram against p's current shaders, for use
// after either shader has been reloaded with source that changes the
// attribute or parameter layout. Most reloads (a shader whose layout
// is unchanged) do not need this: Shader.Reload already rebinds the
// compiled stage in place.
func (p *Program) Relink() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	layout := render.ProgramLayout{Params: p.layout.Params}
	if err := p.backend.Host.Backend.UploadProgram(p.handles, p.vert.handles, p.pixel.handles, &layout); err != nil {
		return render.NewError("Relink", render.BackendCompileFailure, err)
	}
	ResolveAttrSlots(&layout)
	p.layout = layout
	return nil
}
