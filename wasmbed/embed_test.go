package wasmbed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/wasmbed"
)

// emptyModule is the smallest valid WebAssembly binary: magic plus version.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestValidateAcceptsWellFormedModule(t *testing.T) {
	assert.NoError(t, wasmbed.Validate(context.Background(), emptyModule))
}

func TestValidateRejectsGarbage(t *testing.T) {
	err := wasmbed.Validate(context.Background(), []byte("definitely not wasm"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeCompilation, errors.CodeOf(err))
}

func stagePkg(t *testing.T) fs.Filesystem {
	t.Helper()
	fsys := fs.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("/dist/web/pkg/nostr_js_bg.wasm", emptyModule, 0o644))
	require.NoError(t, fsys.WriteFile("/dist/web/pkg/nostr_js.js", []byte(sampleLoader), 0o644))
	require.NoError(t, fsys.WriteFile("/dist/web/pkg/nostr_js.d.ts",
		[]byte("export function generate_keys(): Keys;\n"), 0o644))
	return fsys
}

func TestEmbedRewritesPackageInPlace(t *testing.T) {
	fsys := stagePkg(t)
	embedder := wasmbed.NewEmbedder(fsys, nil, nil)

	require.NoError(t, embedder.Embed(context.Background(), "/dist/web/pkg", "nostr_js"))

	loader, err := fsys.ReadFile("/dist/web/pkg/nostr_js.js")
	require.NoError(t, err)
	assert.Contains(t, string(loader), wasmbed.Epilogue(wasmbed.EncodePayload(emptyModule)))
	assert.NotContains(t, string(loader), "readFileSync")

	decls, err := fsys.ReadFile("/dist/web/pkg/nostr_js.d.ts")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(decls), wasmbed.DeclsEpilogue))
	assert.Contains(t, string(decls), "generate_keys")

	// The side-file must be gone: the binary now travels inside the module.
	ok, err := fsys.Exists("/dist/web/pkg/nostr_js_bg.wasm")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbedFailsOnCorruptBinary(t *testing.T) {
	fsys := stagePkg(t)
	require.NoError(t, fsys.WriteFile("/dist/web/pkg/nostr_js_bg.wasm", []byte("corrupt"), 0o644))

	embedder := wasmbed.NewEmbedder(fsys, nil, nil)
	err := embedder.Embed(context.Background(), "/dist/web/pkg", "nostr_js")
	require.Error(t, err)
	assert.Equal(t, errors.CodeCompilation, errors.CodeOf(err))

	// Loader untouched on failure.
	loader, readErr := fsys.ReadFile("/dist/web/pkg/nostr_js.js")
	require.NoError(t, readErr)
	assert.Equal(t, sampleLoader, string(loader))
}

func TestEmbedMissingBinary(t *testing.T) {
	fsys := fs.NewInMemoryFS()
	embedder := wasmbed.NewEmbedder(fsys, nil, nil)

	err := embedder.Embed(context.Background(), "/dist/web/pkg", "nostr_js")
	require.Error(t, err)
	assert.Equal(t, errors.CodeIO, errors.CodeOf(err))
}

func TestEmbedSurfacesPatternDrift(t *testing.T) {
	fsys := stagePkg(t)
	// A loader without the expected generated shape.
	require.NoError(t, fsys.WriteFile("/dist/web/pkg/nostr_js.js", []byte("let wasm;\n"), 0o644))

	embedder := wasmbed.NewEmbedder(fsys, nil, nil)
	err := embedder.Embed(context.Background(), "/dist/web/pkg", "nostr_js")
	require.Error(t, err)
	assert.Equal(t, errors.CodeTransform, errors.CodeOf(err))
}
