package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/layout"
	"github.com/damus-io/nostr-sdk/target"
)

func TestArtifactPathIsDeterministic(t *testing.T) {
	paths := layout.New("/work")
	tgt := target.Target{OS: target.Android, Arch: target.ARM64}

	got := paths.ArtifactPath("nostr_ffi", tgt, artifact.Dynamic)
	assert.Equal(t, "/work/target/aarch64-linux-android/release/libnostr_ffi.so", got)

	// Same inputs, same path.
	assert.Equal(t, got, paths.ArtifactPath("nostr_ffi", tgt, artifact.Dynamic))
}

func TestDistinctTargetsDistinctSubtrees(t *testing.T) {
	paths := layout.New("/work")
	a := paths.ArtifactDir(target.Target{OS: target.Android, Arch: target.ARM64})
	b := paths.ArtifactDir(target.Target{OS: target.Android, Arch: target.X8664})
	assert.NotEqual(t, a, b)
}

func TestPackageAndBindingDirs(t *testing.T) {
	paths := layout.New("/work")
	assert.Equal(t, "/work/dist/bindings/kotlin", paths.BindingsDir("kotlin"))
	assert.Equal(t, "/work/dist/android", paths.PackageDir(target.PlatformAndroid))
	assert.Equal(t, "/work/dist/web/pkg", paths.WebPkgDir())
	assert.Equal(t, "/work/dist/universal/darwin/libnostr_ffi.a",
		paths.UniversalPath("nostr_ffi", "darwin", target.Darwin, artifact.Static))
}
