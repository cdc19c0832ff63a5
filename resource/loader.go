// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileLoader loads resource bytes from a directory where each
// resource is named by its UUID (id.String(), with an arbitrary
// extension). It doubles as a Resolver for Watcher, so the common
// case of watching the same directory a FileLoader reads from needs
// no extra wiring.
type FileLoader struct {
	Dir string
}

// Load reads Dir/<id>.* and returns its contents. It is an error for
// more than one file to match id; resources are expected to own their
// extension uniquely (".vert", ".frag", ".bin", ...).
func (l FileLoader) Load(id UUID) ([]byte, error) {
	matches, err := filepath.Glob(filepath.Join(l.Dir, id.String()+".*"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, os.ErrNotExist
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("resource %s: %d files match", id, len(matches))
	}
	return os.ReadFile(matches[0])
}

// Resolve implements Resolver by parsing the UUID out of path's base
// name, ignoring its extension.
func (l FileLoader) Resolve(path string) (UUID, bool) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	id, err := uuid.Parse(name)
	if err != nil {
		return UUID{}, false
	}
	return id, true
}
