// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gviegas/render"
	"github.com/gviegas/render/internal/handle"
)

// BufferKind distinguishes the four buffer variants spec.md section 3
// describes.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferParameter
	BufferState
)

// LockMode is a bitmask of the access modes a Lock call requests.
type LockMode int

const (
	LockRead LockMode = 1 << iota
	LockWrite
	LockNoUpload
	LockForceUpload
)

// Buffer is a tagged-variant GPU buffer: vertex, index, parameter or
// state data, with locking, upload-policy and dirty-tracking state
// per spec.md section 4.5.
type Buffer struct {
	Kind    BufferKind
	Usage   render.Usage
	Policy  render.UploadPolicy
	backend *Backend
	handle  render.Handle

	elemSize  int
	allocated int
	used      int

	ref       atomic.Int32
	lockCount atomic.Int32

	mu      sync.Mutex
	dirty   bool
	lockAcc LockMode // accumulated mode bits across nested locks
	store   []byte
	access  []byte
	handles [4]render.BackendHandle

	// Decl is the vertex declaration; only meaningful for
	// Kind == BufferVertex.
	Decl *render.VertexDecl

	// layout describes a declared parameter buffer's per-instance
	// slot sizes, set via Declare and consulted by offsetOf.
	layout []ParamEncoding
}

// Handle returns b's handle in its owning Backend's buffer table.
func (b *Buffer) Handle() render.Handle { return b.handle }

// Used returns the number of elements currently considered populated.
func (b *Buffer) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Allocated returns the buffer's element capacity.
func (b *Buffer) Allocated() int { return b.allocated }

// Dirty reports whether the buffer has unuploaded writes pending.
func (b *Buffer) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// elemSizeFor computes a buffer's per-element byte size per spec.md
// section 4.5: index = 2 or 4 bytes, vertex = declared attribute
// sizes, parameter = packed parameter data size, state = the size of
// one StateDesc record.
func elemSizeFor(kind BufferKind, decl *render.VertexDecl, indexBytes, paramSize int) int {
	switch kind {
	case BufferIndex:
		return indexBytes
	case BufferVertex:
		return decl.Stride
	case BufferParameter:
		return paramSize
	case BufferState:
		return stateDescSize
	default:
		panic("resource: undefined buffer kind")
	}
}

// stateDescSize is the packed byte size of one render.StateDesc
// record when stored in a State buffer.
const stateDescSize = 32

// AllocateBuffer creates a buffer of the given kind and usage with
// room for count elements, optionally seeded with initial data (which
// marks the buffer dirty). elemSize must already reflect the kind-
// specific sizing rule (see elemSizeFor); callers building a vertex
// buffer pass decl so Buffer.Decl is recorded.
func (b *Backend) AllocateBuffer(kind BufferKind, usage render.Usage, count, elemSize int, decl *render.VertexDecl, initial []byte) (*Buffer, error) {
	h := b.buffers.Reserve()
	if h == handle.None {
		return nil, render.NewError("AllocateBuffer", render.ResourceExhausted, nil)
	}
	buf := &Buffer{
		Kind:      kind,
		Usage:     usage,
		Policy:    render.UploadOnDispatch,
		backend:   b,
		handle:    toRender(h),
		elemSize:  elemSize,
		allocated: count,
		Decl:      decl,
	}
	if count > 0 {
		hs, err := b.Host.Backend.AllocateBuffer(count*elemSize, usage)
		if err != nil {
			b.buffers.Free(h)
			return nil, err
		}
		buf.handles = hs
		buf.store = make([]byte, count*elemSize)
		if decl != nil {
			if err := b.Host.Backend.LinkBuffer(hs, decl); err != nil {
				b.Host.Backend.DeallocateBuffer(hs)
				b.buffers.Free(h)
				return nil, err
			}
		}
	}
	if len(initial) > 0 {
		n := copy(buf.store, initial)
		buf.used = n / elemSize
		buf.dirty = true
	}
	buf.ref.Store(1)
	b.buffers.Set(h, buf)
	return buf, nil
}

// LookupBuffer resolves a handle to its Buffer without taking a
// reference.
func (b *Backend) LookupBuffer(h render.Handle) (*Buffer, bool) {
	return b.buffers.Lookup(fromRender(h))
}

// Ref increments buf's reference count if it is still live, following
// the CAS-retry-until-zero protocol in spec.md section 4.5. It
// returns the resolved handle, or render.Handle(0) if the buffer is
// already being torn down.
func (buf *Buffer) Ref() render.Handle {
	for {
		n := buf.ref.Load()
		if n == 0 {
			return 0
		}
		if buf.ref.CompareAndSwap(n, n+1) {
			return buf.handle
		}
	}
}

// Destroy decrements buf's reference count; on the 0-> transition it
// removes the handle from the owning backend's table, instructs the
// backend to release GPU-side storage, and frees the descriptor. It
// is the single canonical refcount entry point the original's
// duplicated render_indexbuffer_destroy implementations should have
// been (spec.md section 9 Open Questions).
func (buf *Buffer) Destroy() {
	if buf.ref.Add(-1) != 0 {
		return
	}
	buf.backend.buffers.Release(fromRender(buf.handle), func(*Buffer) {
		if buf.handles != ([4]render.BackendHandle{}) {
			buf.backend.Host.Backend.DeallocateBuffer(buf.handles)
		}
	})
}

// Lock transitions the buffer into (or deeper into) the Locked state,
// taking an extra reference for the duration and exposing Access.
// Nested locks accumulate mode bits; the last caller's accumulated
// mode determines the upload decision made on the final Unlock.
func (buf *Buffer) Lock(mode LockMode) ([]byte, error) {
	if buf.Ref() == 0 {
		return nil, render.NewError("Lock", render.StaleHandle, nil)
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	buf.lockCount.Add(1)
	buf.lockAcc |= mode
	buf.access = buf.store
	return buf.access, nil
}

// Unlock releases one lock level. When the lock count reaches zero,
// if the accumulated mode included Write and not NoUpload, the buffer
// is marked dirty; if the upload policy is OnUnlock or ForceUpload was
// requested, Backend.UploadBuffer is invoked immediately and the dirty
// bit cleared.
func (buf *Buffer) Unlock() error {
	buf.mu.Lock()
	n := buf.lockCount.Add(-1)
	var err error
	if n == 0 {
		mode := buf.lockAcc
		buf.lockAcc = 0
		buf.access = nil
		if mode&LockWrite != 0 && mode&LockNoUpload == 0 {
			buf.dirty = true
			if buf.Policy == render.UploadOnUnlock || mode&LockForceUpload != 0 {
				err = buf.upload()
			}
		}
	}
	buf.mu.Unlock()
	buf.Destroy() // release the reference taken by Lock
	return err
}

// upload pushes the buffer's store to the backend and clears dirty.
// Callers must hold buf.mu.
func (buf *Buffer) upload() error {
	if !buf.dirty {
		return nil
	}
	if err := buf.backend.Host.Backend.UploadBuffer(buf.handles, buf.store[:buf.used*buf.elemSize], 0); err != nil {
		return err
	}
	buf.dirty = false
	return nil
}

// UploadIfDirty uploads the buffer's contents if its dirty bit is
// set, clearing the bit on success. Dispatch calls this for each
// buffer a Render command references, implementing the OnDispatch
// policy's lazy upload (spec.md section 4.5).
func (buf *Buffer) UploadIfDirty() error {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	return buf.upload()
}

// ParamEncoding is one entry of a declared parameter buffer's layout:
// a (kind, count) pair describing what Encode* calls at that index
// will deposit.
type ParamEncoding struct {
	Kind  ParamEncodingKind
	Count int
}

// ParamEncodingKind enumerates the kinds of data a parameter buffer
// slot can hold.
type ParamEncodingKind int

const (
	ParamEncodingBufferRef ParamEncodingKind = iota
	ParamEncodingMatrix
	ParamEncodingConstant
)

// Declare records the per-instance layout of a parameter buffer.
// Subsequent Encode* calls use this to compute per-instance offsets.
func (buf *Buffer) Declare(layout []ParamEncoding) {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	buf.layout = layout
}

func (buf *Buffer) offsetOf(index int) int {
	off := 0
	for i := 0; i < index; i++ {
		off += encodingSize(buf.layout[i])
	}
	return off
}

func encodingSize(e ParamEncoding) int {
	switch e.Kind {
	case ParamEncodingMatrix:
		return 64 * e.Count
	case ParamEncodingBufferRef:
		return 16 * e.Count
	default:
		return e.Count
	}
}

// EncodeMatrix deposits a 64-byte matrix at parameter index for the
// given instance.
func (buf *Buffer) EncodeMatrix(instance, index int, m [16]float32) error {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	off := instance*buf.elemSize + buf.offsetOf(index)
	if off+64 > len(buf.store) {
		return render.NewError("EncodeMatrix", render.InvalidCommand, nil)
	}
	b := buf.store[off : off+64]
	for i, f := range m {
		bits := math.Float32bits(f)
		b[i*4] = byte(bits)
		b[i*4+1] = byte(bits >> 8)
		b[i*4+2] = byte(bits >> 16)
		b[i*4+3] = byte(bits >> 24)
	}
	buf.dirty = true
	return nil
}

// EncodeConstant copies size bytes from data into the parameter slot
// at index for the given instance.
func (buf *Buffer) EncodeConstant(instance, index int, data []byte) error {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	off := instance*buf.elemSize + buf.offsetOf(index)
	if off+len(data) > len(buf.store) {
		return render.NewError("EncodeConstant", render.InvalidCommand, nil)
	}
	copy(buf.store[off:], data)
	buf.dirty = true
	return nil
}

// EncodeBuffer deposits a reference to source (its handle plus a byte
// offset) at the parameter slot at index for the given instance: the
// 8-byte handle followed by the 8-byte offset, matching spec.md line
// 125's encode_buffer(instance, index, source_buffer, offset) contract.
func (buf *Buffer) EncodeBuffer(instance, index int, source render.Handle, offset int64) error {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	off := instance*buf.elemSize + buf.offsetOf(index)
	if off+16 > len(buf.store) {
		return render.NewError("EncodeBuffer", render.InvalidCommand, nil)
	}
	b := buf.store[off : off+16]
	v := uint64(source)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	o := uint64(offset)
	for i := 0; i < 8; i++ {
		b[8+i] = byte(o >> (8 * i))
	}
	buf.dirty = true
	return nil
}

// NewVertexBuffer allocates a vertex buffer for decl's layout.
func (b *Backend) NewVertexBuffer(usage render.Usage, count int, decl *render.VertexDecl, initial []byte) (*Buffer, error) {
	return b.AllocateBuffer(BufferVertex, usage, count, elemSizeFor(BufferVertex, decl, 0, 0), decl, initial)
}

// NewIndexBuffer allocates an index buffer using 16-bit or 32-bit
// indices according to wide.
func (b *Backend) NewIndexBuffer(usage render.Usage, count int, wide bool, initial []byte) (*Buffer, error) {
	sz := 2
	if wide {
		sz = 4
	}
	return b.AllocateBuffer(BufferIndex, usage, count, elemSizeFor(BufferIndex, nil, sz, 0), nil, initial)
}

// NewParameterBuffer allocates a parameter buffer with room for
// instanceCount instances, each paramSize bytes.
func (b *Backend) NewParameterBuffer(usage render.Usage, instanceCount, paramSize int, initial []byte) (*Buffer, error) {
	return b.AllocateBuffer(BufferParameter, usage, instanceCount, elemSizeFor(BufferParameter, nil, 0, paramSize), nil, initial)
}

// NewStateBuffer allocates a state buffer with room for count
// render.StateDesc records.
func (b *Backend) NewStateBuffer(usage render.Usage, count int) (*Buffer, error) {
	return b.AllocateBuffer(BufferState, usage, count, elemSizeFor(BufferState, nil, 0, 0), nil, nil)
}
