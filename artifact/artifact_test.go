package artifact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/target"
)

func TestFormatExt(t *testing.T) {
	assert.Equal(t, "so", artifact.Dynamic.Ext(target.Android))
	assert.Equal(t, "so", artifact.Dynamic.Ext(target.Linux))
	assert.Equal(t, "dylib", artifact.Dynamic.Ext(target.Darwin))
	assert.Equal(t, "a", artifact.Static.Ext(target.IOS))
	assert.Equal(t, "wasm", artifact.Wasm.Ext(target.Unknown))
}

func TestLibraryFile(t *testing.T) {
	android := target.Target{OS: target.Android, Arch: target.ARM64}
	assert.Equal(t, "libnostr_ffi.so", artifact.LibraryFile("nostr_ffi", android, artifact.Dynamic))

	ios := target.Target{OS: target.IOS, Arch: target.ARM64}
	assert.Equal(t, "libnostr_ffi.a", artifact.LibraryFile("nostr_ffi", ios, artifact.Static))

	wasm := target.Target{OS: target.Unknown, Arch: target.Wasm32}
	assert.Equal(t, "nostr_js.wasm", artifact.LibraryFile("nostr_js", wasm, artifact.Wasm))
}
