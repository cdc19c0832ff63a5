// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Package compile implements cross-platform shader and program
// resource compilation: resolving which of a resource's source
// specializations apply to a requested platform, then driving a
// backend's compiler over each resolved subplatform.
package compile

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gviegas/render"
	"github.com/gviegas/render/resource"
)

// Resource version constants, per spec.md section 6: a persisted
// artifact whose Header.Version does not match triggers one recompile
// attempt before the caller gives up.
const (
	VersionShader  uint32 = 2
	VersionProgram uint32 = 3
	VersionTexture uint32 = 1
)

// Resource type hashes, identifying the descriptor a Header
// introduces. Computed with the same FNV-1a name hash the rest of
// this module uses, rather than a second unrelated hash algorithm.
var (
	TypeHashShader  = fnv1a("render.shader")
	TypeHashProgram = fnv1a("render.program")
	TypeHashTexture = fnv1a("render.texture")
)

func fnv1a(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// Header is the fixed prefix of every compiled resource's static
// stream, per spec.md section 6's resource file layout.
type Header struct {
	TypeHash   uint32
	Version    uint32
	SourceHash [32]byte
	Flags      uint32
}

// StaticResource is a compiled resource's static stream: the header
// plus a type-specific descriptor (shader descriptor, program
// descriptor with its trailing parameter array, or texture
// descriptor).
type StaticResource struct {
	Header     Header
	Descriptor []byte
}

// DynamicResource is a compiled resource's dynamic stream: the
// compiled bytes a backend produced, versioned separately from the
// static descriptor so a backend-only recompile need not touch it.
type DynamicResource struct {
	Version uint32
	Size    uint64
	Bytes   []byte
}

// Artifact is one platform's compiled output for a resource.
type Artifact struct {
	Platform render.PlatformID
	Static   StaticResource
	Dynamic  DynamicResource
}

// PlatformSource is one specialization of a resource's source data:
// the platform it applies to, and the raw bytes for that platform.
type PlatformSource struct {
	Platform render.PlatformID
	Bytes    []byte
}

// ShaderSource is a shader resource's full set of platform
// specializations, keyed by UUID the same way a live resource.Shader
// is.
type ShaderSource struct {
	ID      resource.UUID
	Kind    render.ShaderKind
	Entries []PlatformSource
}

// ProgramSource is a program resource's linkage: it names its vertex
// and pixel shader by UUID rather than carrying its own source bytes,
// per spec.md section 4.12 ("Programs are composed of shaders").
//
// When RefShader is non-zero, this is instead a shader-reference
// program (spec.md section 4.12's final case): VertShader/PixelShader/
// Params are ignored, and compilation copies RefShader's own compiled
// blob rather than linking anything, mirroring
// original_source/render/compile.c's render_shader_ref_compile.
type ProgramSource struct {
	ID          resource.UUID
	VertShader  resource.UUID
	PixelShader resource.UUID
	Params      []render.ParamDesc
	RefShader   resource.UUID
}

// SourceStore resolves a resource UUID to its platform source
// entries, the compile-time counterpart of resource.Loader.
type SourceStore interface {
	ShaderSource(id resource.UUID) (ShaderSource, error)
	ProgramSource(id resource.UUID) (ProgramSource, error)
}

// Allocator obtains a backend for a given api, with fallback
// permitted, matching the allowFallback=true call render.Allocate
// exposes. A Pipeline depends on this narrow interface rather than a
// concrete *render.Runtime so tests can substitute a stub.
type Allocator interface {
	Allocate(api render.API) (*render.BackendHost, error)
}

// RuntimeAllocator adapts a render.Runtime plus its backend factories
// and host platform into an Allocator, always permitting fallback -
// the compile pipeline only needs *a* working backend for the
// requested API's group, not the exact API.
type RuntimeAllocator struct {
	Runtime    *render.Runtime
	Factories  map[render.API]render.Factory
	Host       render.HostPlatform
	AdapterIdx int
}

func (a RuntimeAllocator) Allocate(api render.API) (*render.BackendHost, error) {
	return render.Allocate(a.Runtime, a.Factories, api, a.AdapterIdx, a.Host, true)
}

// Pipeline drives resource compilation against a SourceStore and an
// Allocator, implementing spec.md section 4.12's subset/superset
// platform resolution.
type Pipeline struct {
	Store     SourceStore
	Allocator Allocator
	Log       func(msg string, kv ...any)
}

// resolvePlatforms implements steps 1-2 of spec.md section 4.12: the
// subset of entries equal to or more specific than requested, or if
// that is empty, the superset requested is equal to or more specific
// than.
func resolvePlatforms(entries []PlatformSource, requested render.PlatformID) []render.PlatformID {
	var subset []render.PlatformID
	for _, e := range entries {
		if e.Platform.MoreSpecific(requested) {
			subset = append(subset, e.Platform)
		}
	}
	if len(subset) > 0 {
		return subset
	}
	var superset []render.PlatformID
	for _, e := range entries {
		if requested.MoreSpecific(e.Platform) {
			superset = append(superset, e.Platform)
		}
	}
	return superset
}

func sourceFor(entries []PlatformSource, platform render.PlatformID) ([]byte, bool) {
	for _, e := range entries {
		if e.Platform == platform {
			return e.Bytes, true
		}
	}
	return nil, false
}

func sourceHash(b []byte) [32]byte { return sha256.Sum256(b) }

func (p *Pipeline) log(msg string, kv ...any) {
	if p.Log != nil {
		p.Log(msg, kv...)
	}
}

// CompileShader compiles src for every subplatform requested resolves
// to (step 3's normalize+skip applied per subplatform), returning one
// Artifact per subplatform actually compiled. It aborts on the first
// subplatform failure, matching spec.md section 4.12's "the loop
// aborts on the first failure, propagating a negative result."
func (p *Pipeline) CompileShader(src ShaderSource, requested render.PlatformID) ([]Artifact, error) {
	platforms := resolvePlatforms(src.Entries, requested)
	out := make([]Artifact, 0, len(platforms))
	for _, pl := range platforms {
		norm, ok := render.NormalizePlatform(pl)
		if !ok {
			continue
		}
		bytes, ok := sourceFor(src.Entries, pl)
		if !ok {
			return nil, fmt.Errorf("compile: shader %s: no source for resolved platform", src.ID)
		}
		a, err := p.compileShaderOne(src, bytes, norm)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *Pipeline) compileShaderOne(src ShaderSource, bytes []byte, platform render.PlatformID) (Artifact, error) {
	host, err := p.Allocator.Allocate(platform.API())
	if err != nil {
		return Artifact{}, render.NewError("CompileShader", render.BackendCompileFailure, err)
	}
	handles, err := host.Backend.AllocateShader(src.Kind, bytes)
	if err != nil {
		p.log("shader compile failed", "id", src.ID, "platform", platform, "err", err)
		return Artifact{}, render.NewError("CompileShader", render.BackendCompileFailure, err)
	}
	host.Backend.DeallocateShader(handles)

	desc := encodeShaderDescriptor(src.Kind)
	return Artifact{
		Platform: platform,
		Static: StaticResource{
			Header: Header{
				TypeHash:   TypeHashShader,
				Version:    VersionShader,
				SourceHash: sourceHash(bytes),
			},
			Descriptor: desc,
		},
		Dynamic: DynamicResource{
			Version: VersionShader,
			Size:    uint64(len(bytes)),
			Bytes:   bytes,
		},
	}, nil
}

func encodeShaderDescriptor(kind render.ShaderKind) []byte {
	return []byte{byte(kind)}
}

// CompileProgram resolves id's vertex and pixel shader sources,
// unions their specialized platforms that are equal-or-more-specific
// than requested into the program's own subplatform list (spec.md
// section 4.12's program fan-out rule), and compiles each resulting
// subplatform by recompiling both shaders for it and linking them. If
// prog is a shader-reference program (RefShader set), it instead
// defers entirely to compileShaderRefProgram.
func (p *Pipeline) CompileProgram(prog ProgramSource, requested render.PlatformID) ([]Artifact, error) {
	if prog.RefShader != (resource.UUID{}) {
		return p.compileShaderRefProgram(prog, requested)
	}

	vert, err := p.Store.ShaderSource(prog.VertShader)
	if err != nil {
		return nil, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	pixel, err := p.Store.ShaderSource(prog.PixelShader)
	if err != nil {
		return nil, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}

	platforms := unionSpecializations(vert.Entries, pixel.Entries, requested)

	out := make([]Artifact, 0, len(platforms))
	for _, pl := range platforms {
		norm, ok := render.NormalizePlatform(pl)
		if !ok {
			continue
		}
		a, err := p.compileProgramOne(prog, vert, pixel, norm)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// unionSpecializations implements "union any shader-specialized
// platforms that are equal-or-more-specific than the program's
// requested platform into the program's subplatform list", falling
// back to requested alone when neither shader specializes beyond it.
func unionSpecializations(vert, pixel []PlatformSource, requested render.PlatformID) []render.PlatformID {
	seen := map[render.PlatformID]bool{}
	var out []render.PlatformID
	add := func(entries []PlatformSource) {
		for _, e := range entries {
			if e.Platform.MoreSpecific(requested) && !seen[e.Platform] {
				seen[e.Platform] = true
				out = append(out, e.Platform)
			}
		}
	}
	add(vert)
	add(pixel)
	if len(out) == 0 {
		out = append(out, requested)
	}
	return out
}

// compileProgramOne performs the link step spec.md section 4.12
// describes: it resolves both shaders' source for platform, compiles
// them against a single backend instance (so the resulting handles
// share one backend to link against), calls AllocateProgram/
// UploadProgram to introspect the linked attributes and parameters,
// and serializes the resulting render.ProgramLayout into the program
// descriptor.
func (p *Pipeline) compileProgramOne(prog ProgramSource, vert, pixel ShaderSource, platform render.PlatformID) (Artifact, error) {
	vertBytes, err := resolvedSource(vert, platform)
	if err != nil {
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	pixelBytes, err := resolvedSource(pixel, platform)
	if err != nil {
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}

	host, err := p.Allocator.Allocate(platform.API())
	if err != nil {
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}

	vertHandles, err := host.Backend.AllocateShader(render.ShaderVertex, vertBytes)
	if err != nil {
		p.log("shader compile failed", "id", vert.ID, "platform", platform, "err", err)
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	defer host.Backend.DeallocateShader(vertHandles)

	pixelHandles, err := host.Backend.AllocateShader(render.ShaderPixel, pixelBytes)
	if err != nil {
		p.log("shader compile failed", "id", pixel.ID, "platform", platform, "err", err)
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	defer host.Backend.DeallocateShader(pixelHandles)

	progHandles, err := host.Backend.AllocateProgram(len(prog.Params))
	if err != nil {
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	defer host.Backend.DeallocateProgram(progHandles)

	layout := render.ProgramLayout{Params: append([]render.ParamDesc(nil), prog.Params...)}
	off := 0
	for i := range layout.Params {
		layout.Params[i].Offset = off
		off += layout.Params[i].Type.Size()
	}
	layout.ParamSize = off

	if err := host.Backend.UploadProgram(progHandles, vertHandles, pixelHandles, &layout); err != nil {
		p.log("program link failed", "id", prog.ID, "platform", platform, "err", err)
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	resource.ResolveAttrSlots(&layout)

	desc := encodeProgramDescriptor(prog, &layout)
	combined := append(append([]byte{}, vertBytes...), pixelBytes...)
	return Artifact{
		Platform: platform,
		Static: StaticResource{
			Header: Header{
				TypeHash:   TypeHashProgram,
				Version:    VersionProgram,
				SourceHash: sourceHash(combined),
			},
			Descriptor: desc,
		},
		Dynamic: DynamicResource{
			Version: VersionProgram,
			Size:    uint64(len(combined)),
			Bytes:   combined,
		},
	}, nil
}

// resolvedSource returns src's bytes for platform if it has a direct
// entry there, or otherwise the entry for the first platform
// resolvePlatforms yields (a subset match if any, else a superset
// match); this is the
// "recompiling that shader if needed" step spec.md section 4.12
// describes for a program's referenced shaders.
func resolvedSource(src ShaderSource, platform render.PlatformID) ([]byte, error) {
	if bytes, ok := sourceFor(src.Entries, platform); ok {
		return bytes, nil
	}
	resolved := resolvePlatforms(src.Entries, platform)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("no source for shader %s at platform %v", src.ID, platform)
	}
	bytes, _ := sourceFor(src.Entries, resolved[0])
	return bytes, nil
}

// compileLinkedShader recompiles src for platform, producing a
// standalone shader Artifact. Used by compileShaderRefProgram, whose
// referenced shader compiles (and is persisted) exactly like any other
// shader resource.
func (p *Pipeline) compileLinkedShader(src ShaderSource, platform render.PlatformID) (Artifact, error) {
	bytes, err := resolvedSource(src, platform)
	if err != nil {
		return Artifact{}, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}
	return p.compileShaderOne(src, bytes, platform)
}

// compileShaderRefProgram implements the shader-reference program
// case of spec.md section 4.12: rather than linking a vertex and pixel
// shader, the program defers to prog.RefShader, recompiling it if
// needed and copying its compiled blob as the program's own dynamic
// stream.
func (p *Pipeline) compileShaderRefProgram(prog ProgramSource, requested render.PlatformID) ([]Artifact, error) {
	ref, err := p.Store.ShaderSource(prog.RefShader)
	if err != nil {
		return nil, render.NewError("CompileProgram", render.BackendCompileFailure, err)
	}

	platforms := resolvePlatforms(ref.Entries, requested)
	out := make([]Artifact, 0, len(platforms))
	for _, pl := range platforms {
		norm, ok := render.NormalizePlatform(pl)
		if !ok {
			continue
		}
		shaderArt, err := p.compileLinkedShader(ref, norm)
		if err != nil {
			return nil, err
		}
		out = append(out, Artifact{
			Platform: norm,
			Static: StaticResource{
				Header: Header{
					TypeHash:   TypeHashProgram,
					Version:    VersionProgram,
					SourceHash: shaderArt.Static.Header.SourceHash,
				},
				Descriptor: encodeShaderRefDescriptor(prog),
			},
			Dynamic: shaderArt.Dynamic,
		})
	}
	return out, nil
}

// encodeShaderRefDescriptor lays out a shader-reference program's
// static descriptor as the single 16-byte UUID it defers to.
func encodeShaderRefDescriptor(prog ProgramSource) []byte {
	b, _ := prog.RefShader.MarshalBinary()
	return b
}

// encodeProgramDescriptor lays out the program resource's static
// descriptor as spec.md section 6 describes: two 16-byte UUIDs
// (vertex, pixel) followed by the program descriptor proper - the
// linked attribute and parameter arrays resource.ResolveAttrSlots and
// UploadProgram produced, sorted ascending by binding/declaration
// order with each entry's computed offset.
func encodeProgramDescriptor(prog ProgramSource, layout *render.ProgramLayout) []byte {
	var buf bytes.Buffer
	vb, _ := prog.VertShader.MarshalBinary()
	pb, _ := prog.PixelShader.MarshalBinary()
	buf.Write(vb)
	buf.Write(pb)

	binary.Write(&buf, binary.LittleEndian, uint16(len(layout.Params)))
	for _, prm := range layout.Params {
		binary.Write(&buf, binary.LittleEndian, prm.NameHash)
		buf.WriteByte(byte(prm.Type))
		binary.Write(&buf, binary.LittleEndian, uint32(prm.Dim))
		binary.Write(&buf, binary.LittleEndian, uint32(prm.Offset))
		buf.WriteByte(byte(prm.Stages))
		binary.Write(&buf, binary.LittleEndian, uint32(prm.Location))
	}

	binary.Write(&buf, binary.LittleEndian, uint16(len(layout.Attrs)))
	for _, a := range layout.Attrs {
		buf.WriteByte(byte(len(a.Name)))
		buf.WriteString(a.Name)
		buf.WriteByte(byte(a.Format))
		binary.Write(&buf, binary.LittleEndian, uint32(a.Binding))
		binary.Write(&buf, binary.LittleEndian, uint32(a.Offset))
	}
	return buf.Bytes()
}
