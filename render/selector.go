// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// BackendHost owns one Backend instance plus the state described for
// Backend in spec.md section 3: the current drawable, the immutable
// format/colorspace pair, the framebuffer target, and the frame
// counter. The resource-table bookkeeping (shader/program/buffer/
// target registries) lives alongside it in the resource package
// rather than embedded here, so that this package never needs to
// import resource types.
type BackendHost struct {
	rt      *Runtime
	Backend Backend
	API     API
	Group   APIGroup
	Host    HostPlatform

	mu         sync.Mutex
	drawable   *Drawable
	format     PixelFormat
	colorSpace ColorSpace
	formatSet  bool
	target     [4]BackendHandle

	frame atomic.Uint64
}

// Platform returns the resource-platform identifier this backend was
// allocated for (api + api group + host platform).
func (b *BackendHost) Platform() PlatformID {
	return NewPlatformID(b.API, b.Group, b.Host, unspecified, unspecified)
}

// Log returns the diagnostic sink this backend's Runtime logs through,
// so collaborating packages (resource, compile) can log under the
// same sink without needing their own Runtime reference.
func (b *BackendHost) Log() *log.Logger { return b.rt.Log }

// Frame returns the current frame count.
func (b *BackendHost) Frame() uint64 { return b.frame.Load() }

// Target returns the framebuffer target's backend-opaque handles.
func (b *BackendHost) Target() [4]BackendHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

// SetFormat sets the pixelformat/colorspace pair.
// It is a no-op, per spec.md section 4 invariant and section 8
// boundary behavior, if a drawable is already attached.
func (b *BackendHost) SetFormat(format PixelFormat, cs ColorSpace) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawable != nil {
		b.rt.Log.Warn("set_format after set_drawable is a no-op", "channel", "backend")
		return newError("SetFormat", DrawableConfigConflict, nil)
	}
	b.format, b.colorSpace, b.formatSet = format, cs, true
	return nil
}

// SetDrawable attaches d as the current render surface. It implicitly
// binds the calling goroutine as the owning render thread, per
// spec.md section 4.11.
func (b *BackendHost) SetDrawable(d *Drawable) error {
	if err := b.Backend.SetDrawable(d); err != nil {
		return newError("SetDrawable", BackendCompileFailure, err)
	}
	b.mu.Lock()
	b.drawable = d
	target, err := b.Backend.AllocateTarget(d.Width, d.Height, b.format, false)
	if err == nil {
		b.target = target
	}
	b.mu.Unlock()
	runtime.LockOSThread()
	return err
}

// ThreadBinding is a scoped acquisition of a backend's thread-local
// binding. Releasing it (always via Release, typically deferred)
// guarantees the binding is torn down on every exit path, replacing
// the original's bare enable_thread/disable_thread pair per spec.md
// section 9's redesign note.
type ThreadBinding struct {
	host *BackendHost
}

// BindThread binds the backend to the calling goroutine's OS thread
// for the duration of the returned ThreadBinding, pinning the
// goroutine to that thread so GL-family context bindings stay valid.
func (b *BackendHost) BindThread() (*ThreadBinding, error) {
	runtime.LockOSThread()
	if err := b.Backend.EnableThread(); err != nil {
		runtime.UnlockOSThread()
		return nil, newError("BindThread", UnsupportedAPI, err)
	}
	return &ThreadBinding{host: b}, nil
}

// Release tears down the thread binding. It is idempotent.
func (t *ThreadBinding) Release() {
	if t == nil || t.host == nil {
		return
	}
	t.host.Backend.DisableThread()
	runtime.UnlockOSThread()
	t.host = nil
}

// Dispatch sorts and submits the given contexts' commands, then
// advances nothing itself - Flip is a separate call, per spec.md
// section 5's "flip strictly follows the dispatch that preceded it".
func (b *BackendHost) Dispatch(contexts []*Context) {
	batches := make([]DispatchBatch, 0, len(contexts))
	for _, c := range contexts {
		order := c.sortMerge()
		batches = append(batches, DispatchBatch{
			Commands: c.commands[:c.Reserved()],
			Order:    order,
			Target:   b.Target(),
			Group:    c.group,
		})
	}
	b.Backend.Dispatch(batches)
	for _, c := range contexts {
		c.reset()
	}
}

// Flip presents the current framebuffer and advances the frame
// counter.
func (b *BackendHost) Flip() {
	b.Backend.Flip()
	b.frame.Add(1)
}

// Close tears down the backend and removes it from the runtime's
// live-backend registry.
func (b *BackendHost) Close() {
	b.Backend.Destruct()
	b.rt.unregister(b)
}

// fallback returns the next API to try after api, per the
// deterministic preference table in spec.md section 4.11.
func fallback(api API, host HostPlatform) API {
	switch api {
	case Default:
		switch host {
		case HostWindows:
			return DirectX
		case HostIOS, HostAndroid, HostRaspberryPi:
			return GLES
		default:
			return OpenGL
		}
	case OpenGL:
		return OpenGL4
	case OpenGL4:
		if host == HostWindows {
			return DirectX10
		}
		return OpenGL3
	case OpenGL3:
		return OpenGL2
	case OpenGL2:
		return NullAPI
	case DirectX:
		return DirectX11
	case DirectX11:
		return DirectX10
	case DirectX10:
		return OpenGL3
	case DirectX12:
		return DirectX11
	case GLES:
		return GLES3
	case GLES3:
		return GLES2
	case GLES2:
		return NullAPI
	case NullAPI:
		return Unknown
	default:
		if api >= consoleReserved0 {
			return NullAPI
		}
		return Unknown
	}
}

// Factory constructs a fresh, unconfigured Backend for the given API.
// The caller supplies one Factory per API it knows how to build; the
// selector never hardcodes a concrete backend type, keeping the
// dependency direction described in spec.md section 9's "virtual
// dispatch" redesign (backends are supplied, not imported, by core).
type Factory func() Backend

// Allocate runs the API-selection/fallback state machine described in
// spec.md section 4.11: starting from requested, it walks the
// fallback table past any disabled API, attempts Construct, and on
// failure either retries the next fallback (if allowFallback) or
// gives up.
func Allocate(rt *Runtime, factories map[API]Factory, requested API, adapter int, host HostPlatform, allowFallback bool) (*BackendHost, error) {
	api := requested
	for rt.IsDisabled(api) && api != Unknown {
		api = fallback(api, host)
	}
	for {
		if api == Unknown {
			rt.Log.Error("no supported API", "channel", "selector")
			return nil, newError("Allocate", UnsupportedAPI, nil)
		}
		factory, ok := factories[api]
		if !ok || rt.IsDisabled(api) {
			if !allowFallback {
				return nil, newError("Allocate", UnsupportedAPI, fmt.Errorf("api %s unavailable", api))
			}
			api = fallback(api, host)
			continue
		}
		backend := factory()
		if !backend.Construct(adapter) {
			backend.Destruct()
			if !allowFallback {
				return nil, newError("Allocate", UnsupportedAPI, fmt.Errorf("api %s construct failed", api))
			}
			api = fallback(api, host)
			continue
		}
		bh := &BackendHost{rt: rt, Backend: backend, API: api, Group: api.group(), Host: host}
		rt.register(bh)
		return bh, nil
	}
}
