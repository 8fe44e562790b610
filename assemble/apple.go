package assemble

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/damus-io/nostr-sdk/bindgen"
	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/target"
)

const appleOp = "assemble.Apple"

// AppleSlice pairs one framework slice with the (universal) static library
// backing it.
type AppleSlice struct {
	Group   target.Group
	Library string
}

// Apple lays out the Swift bindings and the three slice libraries, then
// builds the binary framework bundle with xcodebuild. Each slice gets its own
// headers directory; the generated module map is installed under the name the
// framework loader expects.
func (a *Assembler) Apple(ctx context.Context, bindings bindgen.BindingSet, slices []AppleSlice) error {
	dest, err := a.stage(appleOp, target.PlatformApple)
	if err != nil {
		return err
	}

	entries, err := a.fsys.ReadDir(bindings.Dir)
	if err != nil {
		return errors.Wrap(errors.CodeIO, appleOp, err)
	}

	var headers []string
	var modulemap string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		src := filepath.Join(bindings.Dir, name)
		switch {
		case strings.HasSuffix(name, ".swift"):
			if err := fs.CopyFile(a.fsys, src, filepath.Join(dest, "Sources", name), 0o644); err != nil {
				return errors.Wrap(errors.CodeIO, appleOp, err)
			}
		case strings.HasSuffix(name, ".modulemap"):
			modulemap = src
		case strings.HasSuffix(name, ".h"):
			headers = append(headers, src)
		}
	}
	if modulemap == "" {
		return errors.New(errors.CodePackaging, appleOp, "binding set has no module map")
	}
	if len(headers) == 0 {
		return errors.New(errors.CodePackaging, appleOp, "binding set has no headers")
	}

	args := []string{"-create-xcframework"}
	for _, slice := range slices {
		sliceDir := filepath.Join(dest, slice.Group.Name)
		headersDir := filepath.Join(sliceDir, "Headers")
		for _, h := range headers {
			if err := fs.CopyFile(a.fsys, h, filepath.Join(headersDir, filepath.Base(h)), 0o644); err != nil {
				return errors.Wrap(errors.CodeIO, appleOp, err)
			}
		}
		if err := fs.CopyFile(a.fsys, modulemap, filepath.Join(headersDir, "module.modulemap"), 0o644); err != nil {
			return errors.Wrap(errors.CodeIO, appleOp, err)
		}

		lib := filepath.Join(sliceDir, filepath.Base(slice.Library))
		if err := fs.CopyFile(a.fsys, slice.Library, lib, 0o644); err != nil {
			return errors.Wrap(errors.CodeIO, appleOp, err)
		}
		args = append(args, "-library", lib, "-headers", headersDir)
	}
	args = append(args, "-output", filepath.Join(dest, a.man.Name+"FFI.xcframework"))

	if err := a.writeProvenance(appleOp, dest); err != nil {
		return err
	}

	return a.pack(ctx, appleOp, executor.Command{
		Program: "xcodebuild",
		Args:    args,
		Dir:     a.paths.Root,
	})
}
