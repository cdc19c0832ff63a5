// Copyright 2026 Gustavo C. Viegas. All rights reserved.

// Command renderimport copies a raw shader/program source file into a
// resource store under its UUID-addressed name, generating a fresh
// UUID if none is given. Argument parsing and file copying only; the
// resulting file is what resource.FileLoader expects to find, and what
// rendercompile reads when the extension is "source.json" (spec.md
// section 1's CLI non-goal applies here too).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Exit codes, per spec.md section 6.
const (
	exitSuccess      = 0
	exitUnableToOpen = -4
	exitInvalidInput = -5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("renderimport", flag.ContinueOnError)
	var (
		in  = fs.String("in", "", "source file to import")
		out = fs.String("out", ".", "destination resource directory")
		id  = fs.String("id", "", "resource UUID (generated if empty)")
		ext = fs.String("ext", "", "destination extension, e.g. vert, frag, bin (default: source extension)")
	)
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}
	if *in == "" {
		fmt.Fprintln(os.Stderr, "renderimport: -in is required")
		return exitInvalidInput
	}

	resID := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "renderimport: invalid -id:", err)
			return exitInvalidInput
		}
		resID = parsed
	}

	srcExt := *ext
	if srcExt == "" {
		srcExt = filepath.Ext(*in)
	}
	if srcExt != "" && srcExt[0] != '.' {
		srcExt = "." + srcExt
	}

	src, err := os.Open(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "renderimport:", err)
		return exitUnableToOpen
	}
	defer src.Close()

	dstPath := filepath.Join(*out, resID.String()+srcExt)
	dst, err := os.Create(dstPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "renderimport:", err)
		return exitUnableToOpen
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		fmt.Fprintln(os.Stderr, "renderimport:", err)
		return exitInvalidInput
	}

	fmt.Println(resID.String())
	return exitSuccess
}
