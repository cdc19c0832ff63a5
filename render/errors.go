// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import "fmt"

// ErrorKind enumerates the error taxonomy described for the core: a
// closed set of ways a call into this package can fail, so callers
// can branch on errors.As rather than string-matching log output.
type ErrorKind int

const (
	// ResourceExhausted means a fixed-capacity table (handles,
	// host memory) had no room left for the request.
	ResourceExhausted ErrorKind = iota
	// UnsupportedAPI means the requested rendering API is absent
	// or disabled and no fallback was permitted.
	UnsupportedAPI
	// DrawableConfigConflict means a pixel format/colorspace
	// change was attempted with a drawable already attached.
	DrawableConfigConflict
	// StaleHandle means a lookup found a handle whose refcount
	// had already reached zero.
	StaleHandle
	// InvalidCommand means a draw command referenced a resource
	// handle that no longer resolves to a live resource.
	InvalidCommand
	// BackendCompileFailure means a shader or program failed to
	// compile or link.
	BackendCompileFailure
	// ResourceVersionMismatch means a persisted resource's
	// version field did not match what the running core expects.
	ResourceVersionMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case ResourceExhausted:
		return "resource exhausted"
	case UnsupportedAPI:
		return "unsupported API"
	case DrawableConfigConflict:
		return "drawable config conflict"
	case StaleHandle:
		return "stale handle"
	case InvalidCommand:
		return "invalid command"
	case BackendCompileFailure:
		return "backend compile failure"
	case ResourceVersionMismatch:
		return "resource version mismatch"
	default:
		return "unknown render error"
	}
}

// Error wraps a failure with the operation that produced it and its
// taxonomy Kind. Every call documented to "return a sentinel and log"
// returns one of these alongside the sentinel value instead, so
// callers that want the diagnostic text can still get it through the
// normal error-handling path rather than only from the log.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("render: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds an *Error, optionally wrapping an underlying cause.
func newError(op string, kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// NewError builds an *Error for use by packages outside render (the
// resource and compile packages report failures using the same
// taxonomy rather than inventing their own).
func NewError(op string, kind ErrorKind, cause error) *Error {
	return newError(op, kind, cause)
}
