// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"testing"

	"github.com/gviegas/render"
)

func TestAllocateShaderLookupByHandleAndID(t *testing.T) {
	id := newUUID(t)
	loader := memLoader{id: []byte("vertex source")}
	b := newTestBackend(t, loader)

	s, err := b.AllocateShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	if got, ok := b.LookupShader(s.Handle()); !ok || got != s {
		t.Fatal("LookupShader: did not resolve the freshly allocated shader")
	}
	if got, ok := b.LookupShaderByID(id); !ok || got != s {
		t.Fatal("LookupShaderByID: did not resolve the freshly allocated shader")
	}
}

func TestAllocateShaderMissingSource(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	if _, err := b.AllocateShader(render.ShaderPixel, newUUID(t)); err == nil {
		t.Fatal("AllocateShader: expected error for an unknown id")
	}
}

func TestShaderRefDestroyRemovesFromBothTables(t *testing.T) {
	id := newUUID(t)
	b := newTestBackend(t, memLoader{id: []byte("pixel source")})
	s, err := b.AllocateShader(render.ShaderPixel, id)
	if err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}

	if s.Ref() == 0 {
		t.Fatal("Shader.Ref: unexpected zero handle on a live shader")
	}
	s.Destroy() // release the Ref above
	if _, ok := b.LookupShaderByID(id); !ok {
		t.Fatal("LookupShaderByID: shader destroyed while a reference was still outstanding")
	}

	s.Destroy() // release the original AllocateShader reference
	if _, ok := b.LookupShaderByID(id); ok {
		t.Fatal("LookupShaderByID: shader still resolvable after its last reference was released")
	}
	if _, ok := b.LookupShader(s.Handle()); ok {
		t.Fatal("LookupShader: handle still resolves after Destroy")
	}
}

func TestShaderReload(t *testing.T) {
	id := newUUID(t)
	loader := memLoader{id: []byte("v1")}
	b := newTestBackend(t, loader)
	s, err := b.AllocateShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	loader[id] = []byte("v2")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: unexpected error: %v", err)
	}
}

func TestShaderRebind(t *testing.T) {
	id := newUUID(t)
	loader := memLoader{id: []byte("src")}
	b1 := newTestBackend(t, loader)
	b2 := newTestBackend(t, loader)
	s, err := b1.AllocateShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	if err := s.Rebind(b2); err != nil {
		t.Fatalf("Rebind: unexpected error: %v", err)
	}
}
