// Package manifest loads and validates the release manifest, a CUE file at
// the repository root describing what is being released: the FFI crate, the
// library it produces, the version, and each ecosystem's package coordinates.
package manifest

import (
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/Masterminds/semver/v3"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/fs"
)

const loadOp = "manifest.Load"

// DefaultPath is where the manifest lives relative to the repository root.
const DefaultPath = "release.cue"

// Android holds the Android package coordinates.
type Android struct {
	// Namespace is the library's Kotlin/Java namespace, e.g. "rust.nostr.protocol".
	Namespace string `json:"namespace"`
}

// Python holds the Python package coordinates.
type Python struct {
	// Package is the import package name, e.g. "nostr_protocol".
	Package string `json:"package"`
}

// Web holds the npm package coordinates.
type Web struct {
	// Crate is the directory of the wasm-bindgen crate built for the web
	// target, relative to the repository root.
	Crate string `json:"crate"`

	// Package is the npm package name, e.g. "@rust-nostr/nostr".
	Package string `json:"package"`

	// Module is the base name of the generated JS module. Defaults to the
	// crate directory's base name with dashes replaced by underscores.
	Module string `json:"module"`
}

// Manifest describes one release of the native library.
type Manifest struct {
	// Name is the distribution name shared by the packages.
	Name string `json:"name"`

	// Version is the release version, semver.
	Version string `json:"version"`

	// Crate is the FFI crate the cross-compilation driver builds.
	Crate string `json:"crate"`

	// Library is the base name of the compiled library file. Defaults to the
	// crate name with dashes replaced by underscores.
	Library string `json:"library"`

	Android Android `json:"android"`
	Python  Python  `json:"python"`
	Web     Web     `json:"web"`
}

// Load reads, decodes, and validates a manifest.
func Load(fsys fs.Filesystem, path string) (*Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeManifest, loadOp, err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeManifest, loadOp, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.Wrap(errors.CodeManifest, loadOp, err)
	}

	var m Manifest
	if err := value.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.CodeManifest, loadOp, err)
	}

	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Library == "" {
		m.Library = strings.ReplaceAll(m.Crate, "-", "_")
	}
	if m.Python.Package == "" {
		m.Python.Package = strings.ReplaceAll(m.Name, "-", "_")
	}
	if m.Web.Package == "" {
		m.Web.Package = m.Name
	}
	if m.Web.Module == "" && m.Web.Crate != "" {
		m.Web.Module = strings.ReplaceAll(path.Base(m.Web.Crate), "-", "_")
	}
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return errors.New(errors.CodeManifest, loadOp, "name is required")
	}
	if m.Crate == "" {
		return errors.New(errors.CodeManifest, loadOp, "crate is required")
	}
	if m.Version == "" {
		return errors.New(errors.CodeManifest, loadOp, "version is required")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return errors.Wrapf(errors.CodeManifest, loadOp, err, "version %q", m.Version)
	}
	return nil
}
