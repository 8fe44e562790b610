// Package artifact defines the compiled outputs the pipeline moves between
// stages and the combiner that merges single-architecture artifacts into
// universal ones.
package artifact

import (
	"fmt"

	"github.com/damus-io/nostr-sdk/target"
)

// Format tags how a compiled artifact was linked.
type Format string

const (
	// Dynamic is a shared library (.so / .dylib).
	Dynamic Format = "dynamic"

	// Static is a static archive (.a).
	Static Format = "static"

	// Wasm is a WebAssembly binary.
	Wasm Format = "wasm"
)

// Ext returns the file extension a format uses on a given OS, without the dot.
func (f Format) Ext(os target.OS) string {
	switch f {
	case Static:
		return "a"
	case Wasm:
		return "wasm"
	case Dynamic:
		if os == target.Darwin || os == target.IOS {
			return "dylib"
		}
		return "so"
	}
	return ""
}

// LibraryFile returns the conventional file name the native compiler emits for
// a library crate, e.g. libnostr_ffi.so.
func LibraryFile(lib string, t target.Target, f Format) string {
	if f == Wasm {
		return fmt.Sprintf("%s.wasm", lib)
	}
	return fmt.Sprintf("lib%s.%s", lib, f.Ext(t.OS))
}

// Compiled is one compiler output: a file path, the target it was built for,
// and its format. Never mutated after creation; only copied or merged.
type Compiled struct {
	Path   string
	Target target.Target
	Format Format
}

// Universal is a multi-architecture artifact formed by merging ≥2 compiled
// artifacts that share an OS and format but differ in architecture.
type Universal struct {
	Path   string
	OS     target.OS
	Archs  []target.Arch
	Format Format
}
