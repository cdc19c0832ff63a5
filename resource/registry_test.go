// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/gviegas/render"
)

func TestHandleEventModifyReloadsShader(t *testing.T) {
	id := newUUID(t)
	loader := memLoader{id: []byte("v1")}
	b := newTestBackend(t, loader)
	if _, err := b.AllocateShader(render.ShaderVertex, id); err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	loader[id] = []byte("v2")
	if err := b.HandleEvent(EventModify, id); err != nil {
		t.Fatalf("HandleEvent: unexpected error: %v", err)
	}
}

func TestHandleEventModifyRelinksProgram(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	p, _, _ := newTestProgram(t, b)
	if err := b.HandleEvent(EventModify, p.ID); err != nil {
		t.Fatalf("HandleEvent: unexpected error: %v", err)
	}
}

func TestHandleEventUnknownIDIsIgnored(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	if err := b.HandleEvent(EventModify, newUUID(t)); err != nil {
		t.Fatalf("HandleEvent: unexpected error for an id nothing holds: %v", err)
	}
}

func TestHandleEventCreateAndDeleteAreNoErrors(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	id := newUUID(t)
	if err := b.HandleEvent(EventCreate, id); err != nil {
		t.Fatalf("HandleEvent(Create): unexpected error: %v", err)
	}
	if err := b.HandleEvent(EventDelete, id); err != nil {
		t.Fatalf("HandleEvent(Delete): unexpected error: %v", err)
	}
}

func TestLoadShaderReusesHandleForUnchangedSource(t *testing.T) {
	id := newUUID(t)
	loader := memLoader{id: []byte("v1")}
	b := newTestBackend(t, loader)

	first, err := b.LoadShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("LoadShader: unexpected error: %v", err)
	}
	second, err := b.LoadShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("LoadShader: unexpected error on second call: %v", err)
	}
	if first.Handle() != second.Handle() {
		t.Fatalf("LoadShader: handle changed across calls for unchanged source:\nfirst  %v\nsecond %v", first.Handle(), second.Handle())
	}
}

func TestLoadShaderReplacesHandleForChangedSource(t *testing.T) {
	id := newUUID(t)
	loader := memLoader{id: []byte("v1")}
	b := newTestBackend(t, loader)

	first, err := b.LoadShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("LoadShader: unexpected error: %v", err)
	}
	// A live shader is returned as is, so the only reference is
	// released before the backing source changes.
	first.Destroy()
	loader[id] = []byte("v2")
	second, err := b.LoadShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("LoadShader: unexpected error on second call: %v", err)
	}
	if first.Handle() == second.Handle() {
		t.Fatal("LoadShader: expected a fresh handle once the backing source changed")
	}
	if _, ok := b.LookupShaderByID(id); !ok {
		t.Fatal("LookupShaderByID: expected the replaced shader to still resolve by id")
	}
}

func TestLoadShaderMissingSource(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	if _, err := b.LoadShader(render.ShaderPixel, newUUID(t)); err == nil {
		t.Fatal("LoadShader: expected error for an unknown id")
	}
}

func TestResourceEventKindString(t *testing.T) {
	for _, k := range []ResourceEventKind{EventModify, EventCreate, EventDelete} {
		if k.String() == "" {
			t.Fatalf("ResourceEventKind(%d).String: unexpected empty string", k)
		}
	}
}

func TestFileLoaderResolve(t *testing.T) {
	id := newUUID(t)
	l := FileLoader{Dir: t.TempDir()}
	got, ok := l.Resolve(id.String() + ".vert")
	if !ok {
		t.Fatal("FileLoader.Resolve: unexpected failure")
	}
	if got != id {
		t.Fatalf("FileLoader.Resolve:\nhave %s\nwant %s", got, id)
	}
	if _, ok := l.Resolve("not-a-uuid.vert"); ok {
		t.Fatal("FileLoader.Resolve: unexpected success for a non-UUID name")
	}
}

func TestWatcherDispatchMapsEventKinds(t *testing.T) {
	id := newUUID(t)
	b := newTestBackend(t, memLoader{id: []byte("src")})
	if _, err := b.AllocateShader(render.ShaderVertex, id); err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	w := &Watcher{backend: b, resolver: ResolverFunc(func(string) (UUID, bool) { return id, true })}

	for _, x := range [...]struct {
		op   fsnotify.Op
		want ResourceEventKind
	}{
		{fsnotify.Write, EventModify},
		{fsnotify.Create, EventCreate},
		{fsnotify.Remove, EventDelete},
		{fsnotify.Rename, EventDelete},
	} {
		// dispatch itself returns nothing to assert on directly; this
		// exercises the op -> ResourceEventKind mapping without
		// panicking, which is what a bad case mapping would do.
		w.dispatch(fsnotify.Event{Name: id.String() + ".vert", Op: x.op})
	}
}
