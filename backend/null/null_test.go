// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package null

import (
	"bytes"
	"testing"

	"github.com/gviegas/render"
)

func TestConstructDestruct(t *testing.T) {
	b := New(nil)
	if !b.Construct(0) {
		t.Fatal("Backend.Construct: unexpected false")
	}
	b.Destruct()
}

func TestBufferRoundTrip(t *testing.T) {
	b := New(nil)
	b.Construct(0)
	h, err := b.AllocateBuffer(16, render.UsageDynamic)
	if err != nil {
		t.Fatalf("AllocateBuffer: unexpected error: %v", err)
	}
	data := bytes.Repeat([]byte{0x7F}, 16)
	if err := b.UploadBuffer(h, data, 0); err != nil {
		t.Fatalf("UploadBuffer: unexpected error: %v", err)
	}
	b.DeallocateBuffer(h)
}

func TestShaderRoundTrip(t *testing.T) {
	b := New(nil)
	b.Construct(0)
	h, err := b.AllocateShader(render.ShaderVertex, []byte("source"))
	if err != nil {
		t.Fatalf("AllocateShader: unexpected error: %v", err)
	}
	if err := b.UploadShader(h, []byte("new source")); err != nil {
		t.Fatalf("UploadShader: unexpected error: %v", err)
	}
	b.DeallocateShader(h)
}

func TestTargetReadAfterResize(t *testing.T) {
	b := New(nil)
	b.Construct(0)
	h, err := b.AllocateTarget(4, 4, render.FormatR8G8B8A8, true)
	if err != nil {
		t.Fatalf("AllocateTarget: unexpected error: %v", err)
	}
	if err := b.ResizeTarget(h, 8, 8); err != nil {
		t.Fatalf("ResizeTarget: unexpected error: %v", err)
	}
	data, err := b.ReadTarget(h, 8, 8)
	if err != nil {
		t.Fatalf("ReadTarget: unexpected error: %v", err)
	}
	if len(data) != 8*8*4 {
		t.Fatalf("ReadTarget: len\nhave %d\nwant %d", len(data), 8*8*4)
	}
}

func TestUploadProgramReportsMatchedAttrs(t *testing.T) {
	b := New(nil)
	b.Construct(0)
	vert, err := b.AllocateShader(render.ShaderVertex, []byte("in vec3 position; in vec3 normal;"))
	if err != nil {
		t.Fatalf("AllocateShader(vertex): unexpected error: %v", err)
	}
	frag, err := b.AllocateShader(render.ShaderPixel, []byte("out vec4 color;"))
	if err != nil {
		t.Fatalf("AllocateShader(pixel): unexpected error: %v", err)
	}
	prog, err := b.AllocateProgram(1)
	if err != nil {
		t.Fatalf("AllocateProgram: unexpected error: %v", err)
	}
	layout := render.ProgramLayout{Params: []render.ParamDesc{{}}}
	if err := b.UploadProgram(prog, vert, frag, &layout); err != nil {
		t.Fatalf("UploadProgram: unexpected error: %v", err)
	}
	if len(layout.Attrs) != 2 {
		t.Fatalf("UploadProgram: len(Attrs)\nhave %d\nwant 2", len(layout.Attrs))
	}
	if layout.Params[0].Location != 0 {
		t.Fatalf("UploadProgram: Params[0].Location\nhave %d\nwant 0", layout.Params[0].Location)
	}
}

func TestCapabilityInterfaces(t *testing.T) {
	var backend render.Backend = New(nil)
	if _, ok := backend.(render.TextureBackend); !ok {
		t.Fatal("Backend does not implement render.TextureBackend")
	}
	if _, ok := backend.(render.StateBackend); !ok {
		t.Fatal("Backend does not implement render.StateBackend")
	}
	if _, ok := backend.(render.ReadbackBackend); !ok {
		t.Fatal("Backend does not implement render.ReadbackBackend")
	}
}
