// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// Config configures a Runtime's fixed-capacity resource tables and
// initial API availability.
type Config struct {
	ShaderMax  int `toml:"shader_max"`
	ProgramMax int `toml:"program_max"`
	BufferMax  int `toml:"buffer_max"`
	TargetMax  int `toml:"target_max"`

	// DisabledAPIs lists APIs (by String() name) that should
	// start out disabled, e.g. ["directx", "vulkan"].
	DisabledAPIs []string `toml:"disabled_apis"`
}

// DefaultConfig returns sensible table sizes for a single
// application window.
func DefaultConfig() Config {
	return Config{
		ShaderMax:  256,
		ProgramMax: 128,
		BufferMax:  1024,
		TargetMax:  16,
	}
}

// LoadConfig decodes a Config from TOML, following the same
// configuration style spaghettifunk/anima uses for its engine
// settings.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func nameToAPI(name string) (API, bool) {
	for a := Unknown; a < apiCount; a++ {
		if a.String() == name {
			return a, true
		}
	}
	return Unknown, false
}

// Runtime holds the state the original implementation kept in module
// globals: the set of disabled APIs, the registry of live backends,
// and the diagnostic sink every component logs through. Per spec.md
// section 9 ("Process-wide mutable state"), it is created once by the
// embedding application and threaded explicitly rather than reached
// for as a package-level variable.
type Runtime struct {
	mu       sync.Mutex
	disabled [apiCount]bool
	backends []*BackendHost
	Config   Config

	// Log is the structured diagnostic sink every failure in this
	// module logs through. It plays the role of spec.md section 7's
	// "hashed-channel diagnostic sink": callers set the "channel"
	// field to scope messages to a subsystem.
	Log *log.Logger
}

// NewRuntime creates a Runtime from the given configuration, applying
// cfg.DisabledAPIs to the initial disabled set.
func NewRuntime(cfg Config) *Runtime {
	rt := &Runtime{
		Config: cfg,
		Log:    log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "render"}),
	}
	for _, name := range cfg.DisabledAPIs {
		if a, ok := nameToAPI(name); ok {
			rt.disabled[a] = true
		}
	}
	return rt
}

// Enable clears the disabled flag for each of apis.
func (rt *Runtime) Enable(apis ...API) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, a := range apis {
		if a >= 0 && a < apiCount {
			rt.disabled[a] = false
		}
	}
}

// Disable sets the disabled flag for each of apis.
func (rt *Runtime) Disable(apis ...API) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, a := range apis {
		if a >= 0 && a < apiCount {
			rt.disabled[a] = true
		}
	}
}

// IsDisabled reports whether api is currently disabled.
func (rt *Runtime) IsDisabled(api API) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if api < 0 || api >= apiCount {
		return true
	}
	return rt.disabled[api]
}

// register records host in the live-backend list.
func (rt *Runtime) register(host *BackendHost) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.backends = append(rt.backends, host)
}

// unregister removes host from the live-backend list.
func (rt *Runtime) unregister(host *BackendHost) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for i, b := range rt.backends {
		if b == host {
			rt.backends = append(rt.backends[:i], rt.backends[i+1:]...)
			return
		}
	}
}

// Backends returns a snapshot of the currently live backends.
func (rt *Runtime) Backends() []*BackendHost {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]*BackendHost, len(rt.backends))
	copy(out, rt.backends)
	return out
}
