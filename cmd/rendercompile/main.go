// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Command rendercompile compiles a shader or program resource for a
// requested platform, writing the resulting static and dynamic
// streams next to the source. Argument parsing only: everything else
// delegates to the resource/compile package, per spec.md section 1's
// "CLI tool surfaces... argument parsing only" non-goal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/gviegas/render"
	"github.com/gviegas/render/backend/null"
	"github.com/gviegas/render/resource/compile"
)

// Exit codes, per spec.md section 6.
const (
	exitSuccess          = 0
	exitUnsupportedInput = -1
	exitInvalidArgument  = -2
	exitUnableToOpen     = -4
	exitInvalidInput     = -5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("rendercompile", flag.ContinueOnError)
	var (
		dir  = fs.String("dir", ".", "directory holding resource source files")
		id   = fs.String("id", "", "resource UUID to compile")
		kind = fs.String("kind", "shader", "resource kind: shader or program")
		api  = fs.String("api", "default", "requested render API")
		out  = fs.String("out", "", "output directory for compiled streams (default: -dir)")
	)
	if err := fs.Parse(args); err != nil {
		return exitInvalidArgument
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "rendercompile: -id is required")
		return exitInvalidArgument
	}
	resID, err := uuid.Parse(*id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rendercompile: invalid -id:", err)
		return exitInvalidArgument
	}
	if *out == "" {
		*out = *dir
	}

	store := fileSourceStore{dir: *dir}

	rt := render.NewRuntime(render.DefaultConfig())
	factories := map[render.API]render.Factory{
		render.NullAPI: func() render.Backend { return null.New(rt.Log) },
	}
	pipeline := &compile.Pipeline{
		Store: store,
		Allocator: compile.RuntimeAllocator{
			Runtime:   rt,
			Factories: factories,
			Host:      render.HostLinux,
		},
		Log: func(msg string, kv ...any) { rt.Log.Info(msg, kv...) },
	}

	requested, ok := nameToAPI(*api)
	if !ok {
		fmt.Fprintln(os.Stderr, "rendercompile: unrecognized -api:", *api)
		return exitInvalidArgument
	}
	platform := render.NewPlatformID(requested, render.GroupUnknown, render.HostLinux, -1, -1)

	var artifacts []compile.Artifact
	switch *kind {
	case "shader":
		src, err := store.ShaderSource(resID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rendercompile:", err)
			return exitUnableToOpen
		}
		artifacts, err = pipeline.CompileShader(src, platform)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rendercompile:", err)
			return exitUnsupportedInput
		}
	case "program":
		src, err := store.ProgramSource(resID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rendercompile:", err)
			return exitUnableToOpen
		}
		artifacts, err = pipeline.CompileProgram(src, platform)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rendercompile:", err)
			return exitUnsupportedInput
		}
	default:
		fmt.Fprintln(os.Stderr, "rendercompile: unknown -kind:", *kind)
		return exitInvalidArgument
	}

	for i, a := range artifacts {
		if err := writeArtifact(*out, resID, i, a); err != nil {
			fmt.Fprintln(os.Stderr, "rendercompile:", err)
			return exitInvalidInput
		}
	}
	return exitSuccess
}

func writeArtifact(dir string, id uuid.UUID, i int, a compile.Artifact) error {
	name := filepath.Join(dir, fmt.Sprintf("%s.%d.compiled.json", id, i))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(a)
}

func nameToAPI(name string) (render.API, bool) {
	for a := render.Unknown; a.String() != "reserved"; a++ {
		if a.String() == name {
			return a, true
		}
	}
	return render.Unknown, false
}

// fileSourceStore is a minimal compile.SourceStore reading one JSON
// sidecar file per resource ("<uuid>.source.json"), sufficient for
// the CLI's own round-trip use; embedders with richer build systems
// supply their own SourceStore.
type fileSourceStore struct{ dir string }

func (s fileSourceStore) ShaderSource(id uuid.UUID) (compile.ShaderSource, error) {
	var src compile.ShaderSource
	if err := readJSON(filepath.Join(s.dir, id.String()+".source.json"), &src); err != nil {
		return compile.ShaderSource{}, err
	}
	src.ID = id
	return src, nil
}

func (s fileSourceStore) ProgramSource(id uuid.UUID) (compile.ProgramSource, error) {
	var src compile.ProgramSource
	if err := readJSON(filepath.Join(s.dir, id.String()+".source.json"), &src); err != nil {
		return compile.ProgramSource{}, err
	}
	src.ID = id
	return src, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
