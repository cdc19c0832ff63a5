// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"sync/atomic"

	"github.com/gviegas/render"
	"github.com/gviegas/render/internal/handle"
)

// Target is a render target: either an offscreen texture a program
// can later sample, or a window-sized framebuffer a Drawable presents.
// Its backend-side state is opaque to this package, same as every
// other resource kind.
type Target struct {
	backend   *Backend
	handle    render.Handle
	Width     int
	Height    int
	Format    render.PixelFormat
	Offscreen bool

	ref     atomic.Int32
	handles [4]render.BackendHandle
}

// Handle returns t's render.Handle.
func (t *Target) Handle() render.Handle { return t.handle }

// AllocateTarget creates a new render target of the given dimensions
// and format. offscreen selects a texture-backed target (readable by
// a later draw) over a presentable framebuffer.
func (b *Backend) AllocateTarget(width, height int, format render.PixelFormat, offscreen bool) (*Target, error) {
	h := b.targets.Reserve()
	if h == handle.None {
		return nil, render.NewError("AllocateTarget", render.ResourceExhausted, nil)
	}
	handles, err := b.Host.Backend.AllocateTarget(width, height, format, offscreen)
	if err != nil {
		b.targets.Free(h)
		return nil, render.NewError("AllocateTarget", render.BackendCompileFailure, err)
	}
	t := &Target{
		backend:   b,
		handle:    toRender(h),
		Width:     width,
		Height:    height,
		Format:    format,
		Offscreen: offscreen,
		handles:   handles,
	}
	t.ref.Store(1)
	b.targets.Set(h, t)
	return t, nil
}

// LookupTarget resolves h to its Target, if h is live.
func (b *Backend) LookupTarget(h render.Handle) (*Target, bool) {
	return b.targets.Lookup(fromRender(h))
}

// Ref increments t's reference count and returns t's handle, or
// render's None handle if t had already reached a refcount of zero.
func (t *Target) Ref() render.Handle {
	for {
		n := t.ref.Load()
		if n == 0 {
			return render.Handle(handle.None)
		}
		if t.ref.CompareAndSwap(n, n+1) {
			return t.handle
		}
	}
}

// Destroy releases the caller's reference, deallocating the target's
// backend-side state once the last reference drops.
func (t *Target) Destroy() {
	if t.ref.Add(-1) != 0 {
		return
	}
	t.backend.targets.Release(fromRender(t.handle), func(*Target) {
		t.backend.Host.Backend.DeallocateTarget(t.handles)
	})
}

// Resize changes t's dimensions in place, using the ReadbackBackend
// capability if the backend provides it, or falling back to a
// deallocate/allocate cycle otherwise. Grounded on spec.md section
// 4.11's drawable resize path, generalized to offscreen targets.
func (t *Target) Resize(width, height int) error {
	if rb, ok := t.backend.Host.Backend.(render.ReadbackBackend); ok {
		if err := rb.ResizeTarget(t.handles, width, height); err != nil {
			return render.NewError("Resize", render.BackendCompileFailure, err)
		}
		t.Width, t.Height = width, height
		return nil
	}
	handles, err := t.backend.Host.Backend.AllocateTarget(width, height, t.Format, t.Offscreen)
	if err != nil {
		return render.NewError("Resize", render.BackendCompileFailure, err)
	}
	t.backend.Host.Backend.DeallocateTarget(t.handles)
	t.handles = handles
	t.Width, t.Height = width, height
	return nil
}

// Read copies back t's pixel contents, if the backend implements
// ReadbackBackend. It returns UnsupportedAPI otherwise.
func (t *Target) Read() ([]byte, error) {
	rb, ok := t.backend.Host.Backend.(render.ReadbackBackend)
	if !ok {
		return nil, render.NewError("Read", render.UnsupportedAPI, nil)
	}
	data, err := rb.ReadTarget(t.handles, t.Width, t.Height)
	if err != nil {
		return nil, render.NewError("Read", render.BackendCompileFailure, err)
	}
	return data, nil
}
