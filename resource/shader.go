// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"sync"
	"sync/atomic"

	"github.com/gviegas/render"
	"github.com/gviegas/render/internal/handle"
)

// Shader is a single vertex or pixel shader, bound to exactly one
// backend at a time and addressed by both a render.Handle (fast path,
// used inside a Program) and a UUID (used by Reload and by anything
// that persists a reference across process restarts).
type Shader struct {
	Kind    render.ShaderKind
	ID      UUID
	backend *Backend
	handle  render.Handle

	ref atomic.Int32
	mu  sync.Mutex

	src     []byte
	handles [4]render.BackendHandle
}

// Handle returns s's render.Handle.
func (s *Shader) Handle() render.Handle { return s.handle }

// AllocateShader reads id's bytes through b.Loader, compiles them for
// kind, and returns a Shader with refcount 1 registered under both its
// handle and its UUID. Grounded on original_source/render/shader.c's
// shader_new: a fresh shader always starts at one reference, owned by
// the caller that created it.
func (b *Backend) AllocateShader(kind render.ShaderKind, id UUID) (*Shader, error) {
	if b.Loader == nil {
		return nil, render.NewError("AllocateShader", render.ResourceExhausted, nil)
	}
	src, err := b.Loader.Load(id)
	if err != nil {
		return nil, render.NewError("AllocateShader", render.BackendCompileFailure, err)
	}

	h := b.shaders.Reserve()
	if h == handle.None {
		return nil, render.NewError("AllocateShader", render.ResourceExhausted, nil)
	}

	handles, err := b.Host.Backend.AllocateShader(kind, src)
	if err != nil {
		b.shaders.Free(h)
		return nil, render.NewError("AllocateShader", render.BackendCompileFailure, err)
	}

	s := &Shader{
		Kind:    kind,
		ID:      id,
		backend: b,
		handle:  toRender(h),
		src:     src,
		handles: handles,
	}
	s.ref.Store(1)
	b.shaders.Set(h, s)
	b.shaderID.Insert(id, uintptr(s.handle))
	return s, nil
}

// LookupShader resolves h to its Shader, if h is live.
func (b *Backend) LookupShader(h render.Handle) (*Shader, bool) {
	return b.shaders.Lookup(fromRender(h))
}

// LookupShaderByID resolves id to its Shader, if a shader with that
// identity is currently bound.
func (b *Backend) LookupShaderByID(id UUID) (*Shader, bool) {
	v, ok := b.shaderID.Lookup(id)
	if !ok {
		return nil, false
	}
	return b.LookupShader(render.Handle(v))
}

// Ref increments s's reference count and returns s's handle. It
// returns render's None handle if s had already reached a refcount of
// zero (the handle is stale; the caller raced a Destroy).
func (s *Shader) Ref() render.Handle {
	for {
		n := s.ref.Load()
		if n == 0 {
			return render.Handle(handle.None)
		}
		if s.ref.CompareAndSwap(n, n+1) {
			return s.handle
		}
	}
}

// Destroy releases the caller's reference. When the last reference
// drops, the shader's backend-side state is deallocated and its slot
// is returned to the handle table and the UUID table, same as
// original_source/render/shader.c's shader_free.
func (s *Shader) Destroy() {
	if s.ref.Add(-1) != 0 {
		return
	}
	s.backend.shaders.Release(fromRender(s.handle), func(*Shader) {
		s.backend.shaderID.Erase(s.ID)
		s.backend.Host.Backend.DeallocateShader(s.handles)
	})
}

// Reload re-reads s's bytes from the backend's Loader and re-uploads
// them, preserving s's handle and UUID so existing Program references
// keep working. Grounded on original_source/render/event.c's handling
// of a MODIFY event for a shader resource.
func (s *Shader) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.backend.Loader.Load(s.ID)
	if err != nil {
		return render.NewError("Reload", render.BackendCompileFailure, err)
	}
	if err := s.backend.Host.Backend.UploadShader(s.handles, src); err != nil {
		return render.NewError("Reload", render.BackendCompileFailure, err)
	}
	s.src = src
	return nil
}

// Rebind moves s's backend-side state from its current backend to
// dst: the old state is deallocated from the current backend and
// fresh state is allocated and uploaded on dst. This is the "a shader
// previously belonged to a different backend" path spec.md section
// 4.6 describes for cross-backend resource migration (e.g. a device
// reset forcing a fallback to a different API).
func (s *Shader) Rebind(dst *Backend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles, err := dst.Host.Backend.AllocateShader(s.Kind, s.src)
	if err != nil {
		return render.NewError("Rebind", render.BackendCompileFailure, err)
	}
	s.backend.Host.Backend.DeallocateShader(s.handles)
	s.backend = dst
	s.handles = handles
	return nil
}
