package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/manifest"
)

const validManifest = `
name:    "nostr"
version: "0.12.0"
crate:   "nostr-ffi"

android: namespace: "rust.nostr.protocol"
python: package:    "nostr_protocol"
web: {
	crate:   "nostr-js"
	package: "@rust-nostr/nostr"
}
`

func writeManifest(t *testing.T, content string) fs.Filesystem {
	t.Helper()
	fsys := fs.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("/repo/release.cue", []byte(content), 0o644))
	return fsys
}

func TestLoadValid(t *testing.T) {
	fsys := writeManifest(t, validManifest)

	m, err := manifest.Load(fsys, "/repo/release.cue")
	require.NoError(t, err)

	assert.Equal(t, "nostr", m.Name)
	assert.Equal(t, "0.12.0", m.Version)
	assert.Equal(t, "nostr-ffi", m.Crate)
	assert.Equal(t, "rust.nostr.protocol", m.Android.Namespace)
	assert.Equal(t, "@rust-nostr/nostr", m.Web.Package)
}

func TestLoadAppliesDefaults(t *testing.T) {
	fsys := writeManifest(t, `
name:    "nostr"
version: "1.0.0"
crate:   "nostr-ffi"
web: crate: "bindings/nostr-js"
`)

	m, err := manifest.Load(fsys, "/repo/release.cue")
	require.NoError(t, err)

	assert.Equal(t, "nostr_ffi", m.Library)
	assert.Equal(t, "nostr", m.Python.Package)
	assert.Equal(t, "nostr", m.Web.Package)
	assert.Equal(t, "nostr_js", m.Web.Module)
}

func TestLoadRejectsBadVersion(t *testing.T) {
	fsys := writeManifest(t, `
name:    "nostr"
version: "not-a-version"
crate:   "nostr-ffi"
`)

	_, err := manifest.Load(fsys, "/repo/release.cue")
	require.Error(t, err)
	assert.Equal(t, errors.CodeManifest, errors.CodeOf(err))
}

func TestLoadRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", `version: "1.0.0"` + "\n" + `crate: "nostr-ffi"`},
		{"missing crate", `name: "nostr"` + "\n" + `version: "1.0.0"`},
		{"missing version", `name: "nostr"` + "\n" + `crate: "nostr-ffi"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := writeManifest(t, tc.content)
			_, err := manifest.Load(fsys, "/repo/release.cue")
			require.Error(t, err)
			assert.Equal(t, errors.CodeManifest, errors.CodeOf(err))
		})
	}
}

func TestLoadRejectsMalformedCUE(t *testing.T) {
	fsys := writeManifest(t, `name: "unterminated`)

	_, err := manifest.Load(fsys, "/repo/release.cue")
	require.Error(t, err)
	assert.Equal(t, errors.CodeManifest, errors.CodeOf(err))
}

func TestLoadMissingFile(t *testing.T) {
	fsys := fs.NewInMemoryFS()

	_, err := manifest.Load(fsys, "/repo/release.cue")
	require.Error(t, err)
	assert.Equal(t, errors.CodeManifest, errors.CodeOf(err))
}
