// Package layout is the explicit build context threaded through every stage:
// it resolves the deterministic locations artifacts, bindings, and packages
// live at under one root. Stages never compute paths on their own, so tests
// and repeated runs can point the whole pipeline at a disposable root.
package layout

import (
	"path/filepath"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/target"
)

// Paths resolves every pipeline output location under one root.
type Paths struct {
	// Root is the repository checkout being released.
	Root string

	// Build is the native compiler's output tree. Distinct targets write to
	// distinct subtrees, which is the pipeline's only concurrency discipline.
	Build string

	// Dist holds bindings, staged package layouts, and final distributables.
	Dist string
}

// New derives the standard layout under root.
func New(root string) Paths {
	return Paths{
		Root:  root,
		Build: filepath.Join(root, "target"),
		Dist:  filepath.Join(root, "dist"),
	}
}

// ArtifactDir is the per-target compiler output directory for release builds.
func (p Paths) ArtifactDir(t target.Target) string {
	return filepath.Join(p.Build, t.Triple(), "release")
}

// ArtifactPath is the deterministic location of one compiled artifact, keyed
// by target triple and build mode.
func (p Paths) ArtifactPath(lib string, t target.Target, f artifact.Format) string {
	return filepath.Join(p.ArtifactDir(t), artifact.LibraryFile(lib, t, f))
}

// UniversalPath is where a merged multi-architecture artifact lands.
func (p Paths) UniversalPath(lib, group string, os target.OS, f artifact.Format) string {
	name := artifact.LibraryFile(lib, target.Target{OS: os}, f)
	return filepath.Join(p.Dist, "universal", group, name)
}

// BindingsDir is where one language's generated binding set lands.
func (p Paths) BindingsDir(language string) string {
	return filepath.Join(p.Dist, "bindings", language)
}

// PackageDir is the staging and output directory for one platform package.
func (p Paths) PackageDir(platform target.Platform) string {
	return filepath.Join(p.Dist, string(platform))
}

// WebPkgDir is where the web-target compiler emits its module package, and
// where the embedding transform rewrites it in place.
func (p Paths) WebPkgDir() string {
	return filepath.Join(p.PackageDir(target.PlatformWeb), "pkg")
}
