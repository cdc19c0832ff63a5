// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

// API identifies a rendering API implementation.
type API int

// API enum values, matching spec.md section 6.
const (
	Unknown API = iota
	Default
	NullAPI
	OpenGL
	DirectX
	GLES
	OpenGL2
	OpenGL3
	OpenGL4
	DirectX10
	DirectX11
	DirectX12
	GLES2
	GLES3
	Vulkan
	Metal
	// Reserved console APIs. The core does not implement any
	// backend for these; the selector logs "not implemented" and
	// falls through to NullAPI, per spec.md section 4.11.
	consoleReserved0
	consoleReserved1
	apiCount
)

func (a API) String() string {
	switch a {
	case Unknown:
		return "unknown"
	case Default:
		return "default"
	case NullAPI:
		return "null"
	case OpenGL:
		return "opengl"
	case DirectX:
		return "directx"
	case GLES:
		return "gles"
	case OpenGL2:
		return "opengl2"
	case OpenGL3:
		return "opengl3"
	case OpenGL4:
		return "opengl4"
	case DirectX10:
		return "directx10"
	case DirectX11:
		return "directx11"
	case DirectX12:
		return "directx12"
	case GLES2:
		return "gles2"
	case GLES3:
		return "gles3"
	case Vulkan:
		return "vulkan"
	case Metal:
		return "metal"
	default:
		return "reserved"
	}
}

// APIGroup identifies the family an API belongs to.
type APIGroup int

// Groups, one per API family root.
const (
	GroupUnknown APIGroup = iota
	GroupNull
	GroupOpenGL
	GroupDirectX
	GroupGLES
	GroupVulkan
	GroupMetal
)

// group returns the APIGroup that api belongs to.
func (a API) group() APIGroup {
	switch a {
	case NullAPI:
		return GroupNull
	case OpenGL, OpenGL2, OpenGL3, OpenGL4:
		return GroupOpenGL
	case DirectX, DirectX10, DirectX11, DirectX12:
		return GroupDirectX
	case GLES, GLES2, GLES3:
		return GroupGLES
	case Vulkan:
		return GroupVulkan
	case Metal:
		return GroupMetal
	default:
		return GroupUnknown
	}
}

// HostPlatform identifies the operating system / windowing host the
// process is running under. It is supplied by the embedding
// application (windowing is out of this core's scope), not detected
// here.
type HostPlatform int

// Host platforms.
const (
	HostUnspecified HostPlatform = iota
	HostWindows
	HostLinux
	HostMacOS
	HostIOS
	HostAndroid
	HostRaspberryPi
)

// unspecified is the sentinel used for the arch/toolchain fields of
// a PlatformID, and is representable in the packed form as all-ones
// for that field's width.
const unspecified = -1

// PlatformID is a packed identifier of
// {api, api_group, platform, arch, tool_chain}, used as the key
// resource specializations are indexed by.
//
// RESOURCE_PLATFORM_ALL is the zero value extended with every field
// set to "unspecified": it matches any concrete platform.
type PlatformID uint64

const (
	bitsAPI      = 8
	bitsGroup    = 8
	bitsHost     = 8
	bitsArch     = 8
	bitsToolChn  = 8
	shiftAPI     = 0
	shiftGroup   = shiftAPI + bitsAPI
	shiftHost    = shiftGroup + bitsGroup
	shiftArch    = shiftHost + bitsHost
	shiftToolChn = shiftArch + bitsArch
)

// PlatformAll matches any concrete platform: every field is
// "unspecified".
const PlatformAll PlatformID = 0xFFFFFFFFFFFFFFFF

// NewPlatformID packs the given fields into a PlatformID.
// Pass unspecified (-1, or the typed zero values where documented)
// for fields that should not constrain matching.
func NewPlatformID(api API, group APIGroup, host HostPlatform, arch, toolChain int) PlatformID {
	pack := func(v, bits int) uint64 {
		mask := uint64(1)<<bits - 1
		if v < 0 {
			return mask
		}
		return uint64(v) & mask
	}
	// Unknown, GroupUnknown and HostUnspecified are the typed zero
	// values that stand for "unspecified" in their fields.
	orUnspecified := func(v int) int {
		if v == 0 {
			return -1
		}
		return v
	}
	return PlatformID(
		pack(orUnspecified(int(api)), bitsAPI)<<shiftAPI |
			pack(orUnspecified(int(group)), bitsGroup)<<shiftGroup |
			pack(orUnspecified(int(host)), bitsHost)<<shiftHost |
			pack(arch, bitsArch)<<shiftArch |
			pack(toolChain, bitsToolChn)<<shiftToolChn,
	)
}

func unpackField(p PlatformID, shift uint, bits int) int {
	mask := uint64(1)<<bits - 1
	v := (uint64(p) >> shift) & mask
	if v == mask {
		return unspecified
	}
	return int(v)
}

// API returns the packed api field, or Unknown if unspecified.
func (p PlatformID) API() API {
	v := unpackField(p, shiftAPI, bitsAPI)
	if v < 0 {
		return Unknown
	}
	return API(v)
}

// Group returns the packed api_group field, or GroupUnknown if
// unspecified.
func (p PlatformID) Group() APIGroup {
	v := unpackField(p, shiftGroup, bitsGroup)
	if v < 0 {
		return GroupUnknown
	}
	return APIGroup(v)
}

// Host returns the packed platform (host OS) field.
func (p PlatformID) Host() HostPlatform {
	v := unpackField(p, shiftHost, bitsHost)
	if v < 0 {
		return HostUnspecified
	}
	return HostPlatform(v)
}

// Arch returns the packed arch field, or unspecified (-1).
func (p PlatformID) Arch() int { return unpackField(p, shiftArch, bitsArch) }

// ToolChain returns the packed tool_chain field, or unspecified (-1).
func (p PlatformID) ToolChain() int { return unpackField(p, shiftToolChn, bitsToolChn) }

// withAPI returns a copy of p with its api field replaced.
func (p PlatformID) withAPI(api API) PlatformID {
	mask := uint64(1)<<bitsAPI - 1
	cleared := uint64(p) &^ (mask << shiftAPI)
	return PlatformID(cleared | uint64(api)&mask<<shiftAPI)
}

// MoreSpecific reports whether p is at least as specific as other in
// every field other's field constrains: every field other specifies
// (is not unspecified) must equal the corresponding field of p.
// This is the "subplatform of" relation spec.md section 4.12 uses to
// build the compile pipeline's subset/superset walks.
func (p PlatformID) MoreSpecific(other PlatformID) bool {
	check := func(shift uint, bits int) bool {
		o := unpackField(other, shift, bits)
		if o == unspecified {
			return true
		}
		return unpackField(p, shift, bits) == o
	}
	return check(shiftAPI, bitsAPI) &&
		check(shiftGroup, bitsGroup) &&
		check(shiftHost, bitsHost) &&
		check(shiftArch, bitsArch) &&
		check(shiftToolChn, bitsToolChn)
}

// NormalizePlatform resolves p's api field to a concrete API,
// defaulting to p.Group()'s representative API when the field is
// Unknown or Default. It reports false if no group default exists
// (the platform's api field is not specific enough to compile for),
// per spec.md section 4.12 step 3.
func NormalizePlatform(p PlatformID) (PlatformID, bool) {
	return normalizeAPI(p)
}

// normalizeAPI resolves an api field that is at or below Default to
// the group's default API, per spec.md section 4.12 step 3.
func normalizeAPI(p PlatformID) (PlatformID, bool) {
	api := p.API()
	if api > Default {
		return p, true
	}
	def, ok := groupDefault[p.Group()]
	if !ok {
		return p, false
	}
	return p.withAPI(def), true
}

// groupDefault maps an APIGroup to the API used when a subplatform's
// api field is unspecified or Default.
var groupDefault = map[APIGroup]API{
	GroupNull:    NullAPI,
	GroupOpenGL:  OpenGL4,
	GroupDirectX: DirectX12,
	GroupGLES:    GLES3,
	GroupVulkan:  Vulkan,
	GroupMetal:   Metal,
}
