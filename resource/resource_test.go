// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gviegas/render"
	"github.com/gviegas/render/backend/null"
)

// memLoader is a Loader backed by an in-memory map, standing in for a
// real resource store the way the teacher's tests stand in for a real
// GPU with a stub.
type memLoader map[UUID][]byte

func (l memLoader) Load(id UUID) ([]byte, error) {
	src, ok := l[id]
	if !ok {
		return nil, render.NewError("Load", render.ResourceExhausted, nil)
	}
	return src, nil
}

// newTestBackend allocates a null-backed render.BackendHost and wraps
// it in a resource.Backend whose Loader serves the given sources.
func newTestBackend(t *testing.T, loader Loader) *Backend {
	t.Helper()
	rt := render.NewRuntime(render.DefaultConfig())
	factories := map[render.API]render.Factory{
		render.NullAPI: func() render.Backend { return null.New(nil) },
	}
	host, err := render.Allocate(rt, factories, render.NullAPI, 0, render.HostLinux, false)
	if err != nil {
		t.Fatalf("render.Allocate: unexpected error: %v", err)
	}
	return NewBackend(host, rt.Config, loader)
}

func newUUID(t *testing.T) UUID {
	t.Helper()
	id, err := uuid.NewRandom()
	if err != nil {
		t.Fatalf("uuid.NewRandom: unexpected error: %v", err)
	}
	return id
}
