// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"testing"

	"github.com/gviegas/render"
)

func TestAllocateTargetAndRead(t *testing.T) {
	b := newTestBackend(t, nil)
	tg, err := b.AllocateTarget(64, 64, render.FormatR8G8B8A8, true)
	if err != nil {
		t.Fatalf("AllocateTarget: unexpected error: %v", err)
	}
	data, err := tg.Read()
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	if len(data) != 64*64*4 {
		t.Fatalf("Read: len\nhave %d\nwant %d", len(data), 64*64*4)
	}
}

func TestTargetResize(t *testing.T) {
	b := newTestBackend(t, nil)
	tg, err := b.AllocateTarget(32, 32, render.FormatR8G8B8A8, true)
	if err != nil {
		t.Fatalf("AllocateTarget: unexpected error: %v", err)
	}
	if err := tg.Resize(128, 128); err != nil {
		t.Fatalf("Resize: unexpected error: %v", err)
	}
	if tg.Width != 128 || tg.Height != 128 {
		t.Fatalf("Target dimensions after Resize:\nhave (%d, %d)\nwant (128, 128)", tg.Width, tg.Height)
	}
	data, err := tg.Read()
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	if len(data) != 128*128*4 {
		t.Fatalf("Read after Resize: len\nhave %d\nwant %d", len(data), 128*128*4)
	}
}

func TestTargetDestroy(t *testing.T) {
	b := newTestBackend(t, nil)
	tg, err := b.AllocateTarget(16, 16, render.FormatR8G8B8A8, false)
	if err != nil {
		t.Fatalf("AllocateTarget: unexpected error: %v", err)
	}
	h := tg.Handle()
	tg.Destroy()
	if _, ok := b.LookupTarget(h); ok {
		t.Fatal("LookupTarget: handle still resolves after Destroy")
	}
}
