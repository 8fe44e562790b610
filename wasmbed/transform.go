// Package wasmbed post-processes the web-target compiler output so the
// WebAssembly binary ships embedded as base64 text inside the loader module
// instead of as a side-file. None of the three host runtimes (bundler-based
// web, direct-script web, server-side test runner) share a reliable
// file-loading primitive, so the file-loading path is removed entirely: the
// loader's runtime-specific text-codec imports are stripped (the codecs are
// ambient globals in every target host), everything from the path-construction
// statement to end-of-file is dropped, and a fixed epilogue decodes the
// embedded payload and instantiates the module from in-memory bytes.
package wasmbed

import (
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/errors"
)

const transformOp = "wasmbed.Transform"

// IsTextCodecImport reports whether a loader line imports a runtime text
// decoder or encoder. These imports only resolve on the test-runner host; the
// codecs are ambient globals everywhere the module ships, so the lines go.
func IsTextCodecImport(line string) bool {
	if !strings.Contains(line, "require") {
		return false
	}
	return strings.Contains(line, "TextDecoder") || strings.Contains(line, "TextEncoder")
}

// IsPathConstruction reports whether a loader line begins the generated
// file-loading tail. Everything from this line to end-of-file exclusively
// serves the file-loading path the embedding eliminates.
func IsPathConstruction(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "const path = require('path')")
}

// EncodePayload converts the binary into its embedded textual representation.
func EncodePayload(wasm []byte) string {
	return base64.StdEncoding.EncodeToString(wasm)
}

// Epilogue is the module appended to the stripped loader head. It decodes the
// embedded payload and instantiates the WebAssembly module from in-memory
// bytes, and exports the two entry points the package contract requires: one
// yielding the raw decoded bytes and one yielding the instantiated module.
// It references the `imports` object and assigns the `wasm` binding, both
// declared in the loader head.
func Epilogue(payload string) string {
	return fmt.Sprintf(`const __wasmBase64 = '%s';

function __decodeWasmBytes() {
    if (typeof Buffer !== 'undefined') {
        return Buffer.from(__wasmBase64, 'base64');
    }
    const binary = atob(__wasmBase64);
    const bytes = new Uint8Array(binary.length);
    for (let i = 0; i < binary.length; i++) {
        bytes[i] = binary.charCodeAt(i);
    }
    return bytes;
}

const wasmBytes = __decodeWasmBytes();
const wasmModule = new WebAssembly.Module(wasmBytes);
const wasmInstance = new WebAssembly.Instance(wasmModule, imports);
wasm = wasmInstance.exports;

module.exports.getWasmBytes = __decodeWasmBytes;
module.exports.getWasmInstance = function () { return wasmInstance; };
module.exports.__wasm = wasm;
`, payload)
}

// DeclsEpilogue is appended to the generated type-declaration file, declaring
// the two entry points the epilogue adds.
const DeclsEpilogue = `export function getWasmBytes(): Uint8Array;
export function getWasmInstance(): WebAssembly.Instance;
`

// Transform rewrites compiler-generated loader sources. The strip rules are
// pattern-based and coupled to the upstream generator's output format; a rule
// that matches nothing means the format has drifted and the transform would
// otherwise silently emit a non-functional module, so that case is an error
// unless AllowPatternMiss downgrades it to a warning.
type Transform struct {
	// AllowPatternMiss keeps going with a warning when a strip rule matches
	// nothing.
	AllowPatternMiss bool

	log *zap.Logger
}

// NewTransform creates a Transform.
func NewTransform(log *zap.Logger) *Transform {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transform{log: log}
}

// Loader rewrites the loader source around the given embedded payload:
// text-codec import lines are deleted, the file-loading tail (first
// path-construction line through end-of-file) is deleted, and the fixed
// epilogue is appended to the remaining head.
func (t *Transform) Loader(src, payload string) (string, error) {
	lines := strings.Split(src, "\n")

	head := make([]string, 0, len(lines))
	codecLines := 0
	pathFound := false
	for _, line := range lines {
		if IsPathConstruction(line) {
			pathFound = true
			break
		}
		if IsTextCodecImport(line) {
			codecLines++
			continue
		}
		head = append(head, line)
	}

	if codecLines == 0 {
		if err := t.patternMiss("text-codec import"); err != nil {
			return "", err
		}
	}
	if !pathFound {
		if err := t.patternMiss("path construction"); err != nil {
			return "", err
		}
	}

	out := strings.Join(head, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out + Epilogue(payload), nil
}

// Decls appends the fixed declaration epilogue to the type-declaration
// source.
func (t *Transform) Decls(src string) string {
	if src != "" && !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	return src + DeclsEpilogue
}

func (t *Transform) patternMiss(rule string) error {
	if t.AllowPatternMiss {
		t.log.Warn("loader strip rule matched nothing; generator output format may have changed",
			zap.String("rule", rule))
		return nil
	}
	return errors.Newf(errors.CodeTransform, transformOp,
		"%s rule matched no lines; generator output format may have changed", rule)
}
