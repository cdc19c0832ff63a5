// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("compile log text")
	err := NewError("Dispatch", BackendCompileFailure, cause)
	if !errors.Is(err, cause) {
		t.Fatal("Error: errors.Is did not find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "Dispatch") || !strings.Contains(err.Error(), cause.Error()) {
		t.Fatalf("Error.Error: %q missing op or cause text", err.Error())
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError("Lock", StaleHandle, nil)
	if err.Unwrap() != nil {
		t.Fatal("Error.Unwrap: unexpected non-nil cause")
	}
	if !strings.Contains(err.Error(), StaleHandle.String()) {
		t.Fatalf("Error.Error: %q missing kind text", err.Error())
	}
}

func TestErrorKindString(t *testing.T) {
	for _, k := range []ErrorKind{
		ResourceExhausted,
		UnsupportedAPI,
		DrawableConfigConflict,
		StaleHandle,
		InvalidCommand,
		BackendCompileFailure,
		ResourceVersionMismatch,
	} {
		if k.String() == "" {
			t.Fatalf("ErrorKind(%d).String: unexpected empty string", k)
		}
	}
}
