// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Package resource implements the GPU-backed resource model described
// for the render core: buffers, shaders, programs and render targets,
// each reference-counted and bound to exactly one backend at a time.
//
// Resources are addressed through render.Handle values obtained from
// fixed-capacity tables sized by render.Config at backend-attachment
// time (shader_max, program_max, buffer_max, target_max).
package resource

import (
	"github.com/google/uuid"

	"github.com/gviegas/render"
	"github.com/gviegas/render/internal/handle"
	"github.com/gviegas/render/internal/uuidmap"
)

// UUID identifies a persistent resource (shader source, compiled
// shader, program, texture). It is a plain alias for uuid.UUID so
// callers never need to import the uuid package themselves.
type UUID = uuid.UUID

// Backend attaches a render.BackendHost to the fixed-capacity
// resource tables it owns: one handle table each for buffers, shaders,
// programs and targets, and one UUID table each for shaders and
// programs (spec.md section 4.4's "per-backend tables"). It is the
// concrete "resource registry" the Backend data model describes.
type Backend struct {
	Host *render.BackendHost

	buffers  *handle.Map[*Buffer]
	shaders  *handle.Map[*Shader]
	shaderID *uuidmap.Map
	programs *handle.Map[*Program]
	progID   *uuidmap.Map
	targets  *handle.Map[*Target]

	Loader Loader
}

// Loader is the external collaborator that reads a resource's raw
// bytes given its UUID. It is the "resource I/O framing" spec.md
// section 1 places out of scope: stream format, blob storage and
// remote fetch are all the embedding application's concern. Loader
// is the narrow contract this package consumes instead.
type Loader interface {
	// Load returns the raw resource bytes for id, or nil if the
	// resource does not exist.
	Load(id UUID) ([]byte, error)
}

// NewBackend creates the resource tables for host, sized by cfg.
func NewBackend(host *render.BackendHost, cfg render.Config, loader Loader) *Backend {
	return &Backend{
		Host:     host,
		buffers:  handle.New[*Buffer](cfg.BufferMax),
		shaders:  handle.New[*Shader](cfg.ShaderMax),
		shaderID: uuidmap.New(cfg.ShaderMax),
		programs: handle.New[*Program](cfg.ProgramMax),
		progID:   uuidmap.New(cfg.ProgramMax),
		targets:  handle.New[*Target](cfg.TargetMax),
		Loader:   loader,
	}
}

func toRender(h handle.Handle) render.Handle   { return render.Handle(h) }
func fromRender(h render.Handle) handle.Handle { return handle.Handle(h) }
