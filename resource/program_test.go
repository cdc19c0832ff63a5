// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"testing"

	"github.com/gviegas/render"
)

func newTestProgram(t *testing.T, b *Backend) (*Program, *Shader, *Shader) {
	t.Helper()
	vertID, pixelID := newUUID(t), newUUID(t)
	loader := b.Loader.(memLoader)
	loader[vertID] = []byte("in vec3 normal; in vec3 position;")
	loader[pixelID] = []byte("pixel source")

	vert, err := b.AllocateShader(render.ShaderVertex, vertID)
	if err != nil {
		t.Fatalf("AllocateShader(vertex): unexpected error: %v", err)
	}
	pixel, err := b.AllocateShader(render.ShaderPixel, pixelID)
	if err != nil {
		t.Fatalf("AllocateShader(pixel): unexpected error: %v", err)
	}
	params := []render.ParamDesc{
		{NameHash: render.HashName("mvp"), Type: render.ParamMatrix, Stages: render.StageVertex},
		{NameHash: render.HashName("tint"), Type: render.ParamFloat4, Stages: render.StagePixel},
	}
	p, err := b.AllocateProgram(newUUID(t), vert, pixel, params)
	if err != nil {
		t.Fatalf("AllocateProgram: unexpected error: %v", err)
	}
	return p, vert, pixel
}

func TestAllocateProgramComputesParamOffsets(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	p, _, _ := newTestProgram(t, b)
	params := p.Params()
	if len(params) != 2 {
		t.Fatalf("Program.Params: len\nhave %d\nwant 2", len(params))
	}
	if params[0].Offset != 0 {
		t.Fatalf("Program.Params[0].Offset:\nhave %d\nwant 0", params[0].Offset)
	}
	if params[1].Offset != 64 {
		t.Fatalf("Program.Params[1].Offset:\nhave %d\nwant 64", params[1].Offset)
	}
	if p.ParamSize() != 80 {
		t.Fatalf("Program.ParamSize:\nhave %d\nwant 80", p.ParamSize())
	}
}

func TestAllocateProgramSortsAttrsAndComputesOffsets(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	p, _, _ := newTestProgram(t, b)
	attrs := p.Attrs()
	if len(attrs) != 2 {
		t.Fatalf("Program.Attrs: len\nhave %d\nwant 2", len(attrs))
	}
	// position is slot 0, normal is slot 1 in the fixed name table,
	// regardless of the order the backend reported them in.
	if attrs[0].Name != "position" || attrs[1].Name != "normal" {
		t.Fatalf("Program.Attrs: not sorted by binding: %v", attrs)
	}
	if attrs[0].Offset != 0 {
		t.Fatalf("Program.Attrs[0].Offset:\nhave %d\nwant 0", attrs[0].Offset)
	}
	if attrs[1].Offset != attrs[0].Format.Size() {
		t.Fatalf("Program.Attrs[1].Offset:\nhave %d\nwant %d", attrs[1].Offset, attrs[0].Format.Size())
	}
}

func TestAllocateProgramRejectsWrongShaderKinds(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	id := newUUID(t)
	loader := b.Loader.(memLoader)
	loader[id] = []byte("src")
	vert, err := b.AllocateShader(render.ShaderVertex, id)
	if err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	if _, err := b.AllocateProgram(newUUID(t), vert, vert, nil); err == nil {
		t.Fatal("AllocateProgram: expected error linking two vertex shaders")
	}
}

func TestProgramDestroyReleasesShaderReferences(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	p, vert, pixel := newTestProgram(t, b)
	vertHandle, pixelHandle := vert.Handle(), pixel.Handle()

	// AllocateProgram took its own reference on each shader; release
	// the caller's original references first so only the program's
	// references keep them alive.
	vert.Destroy()
	pixel.Destroy()
	if _, ok := b.LookupShader(vertHandle); !ok {
		t.Fatal("LookupShader: vertex shader destroyed while the program still referenced it")
	}

	p.Destroy()
	if _, ok := b.LookupShader(vertHandle); ok {
		t.Fatal("LookupShader: vertex shader still live after its owning program was destroyed")
	}
	if _, ok := b.LookupShader(pixelHandle); ok {
		t.Fatal("LookupShader: pixel shader still live after its owning program was destroyed")
	}
}

func TestLookupProgramByID(t *testing.T) {
	b := newTestBackend(t, memLoader{})
	p, _, _ := newTestProgram(t, b)
	if got, ok := b.LookupProgramByID(p.ID); !ok || got != p {
		t.Fatal("LookupProgramByID: did not resolve the freshly allocated program")
	}
}
