package assemble

import (
	"context"
	"path/filepath"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/bindgen"
	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/target"
)

const pythonOp = "assemble.Python"

// Python lays out the Python bindings with the host-built shared library
// embedded next to them and builds the wheel.
func (a *Assembler) Python(ctx context.Context, bindings bindgen.BindingSet, lib artifact.Compiled) error {
	dest, err := a.stage(pythonOp, target.PlatformPython)
	if err != nil {
		return err
	}

	pkgDir := filepath.Join(dest, "src", a.man.Python.Package)
	if err := fs.CopyDir(a.fsys, bindings.Dir, pkgDir); err != nil {
		return errors.Wrap(errors.CodeIO, pythonOp, err)
	}
	if err := fs.CopyFile(a.fsys, lib.Path, filepath.Join(pkgDir, filepath.Base(lib.Path)), 0o644); err != nil {
		return errors.Wrap(errors.CodeIO, pythonOp, err)
	}

	if err := a.writeProvenance(pythonOp, dest); err != nil {
		return err
	}

	return a.pack(ctx, pythonOp, executor.Command{
		Program: "python3",
		Args:    []string{"-m", "build", "--wheel"},
		Dir:     dest,
	})
}
