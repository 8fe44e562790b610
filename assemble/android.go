package assemble

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/bindgen"
	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/target"
)

const androidOp = "assemble.Android"

// Android lays out the Kotlin bindings and the per-ABI shared libraries into
// the Android library project and builds the release archive with Gradle. The
// generated sources land under the manifest's Kotlin namespace so the archive
// exposes them at the package path consumers import.
func (a *Assembler) Android(ctx context.Context, bindings bindgen.BindingSet, artifacts []artifact.Compiled) error {
	dest, err := a.stage(androidOp, target.PlatformAndroid)
	if err != nil {
		return err
	}

	kotlinDir := filepath.Join(dest, "lib", "src", "main", "kotlin")
	if ns := a.man.Android.Namespace; ns != "" {
		kotlinDir = filepath.Join(kotlinDir, strings.ReplaceAll(ns, ".", string(filepath.Separator)))
	}
	if err := fs.CopyDir(a.fsys, bindings.Dir, kotlinDir); err != nil {
		return errors.Wrap(errors.CodeIO, androidOp, err)
	}

	for _, art := range artifacts {
		abi, ok := target.AndroidABI(art.Target)
		if !ok {
			return errors.Newf(errors.CodePackaging, androidOp,
				"artifact for %s is not an Android target", art.Target)
		}
		dst := filepath.Join(dest, "lib", "src", "main", "jniLibs", abi, filepath.Base(art.Path))
		if err := fs.CopyFile(a.fsys, art.Path, dst, 0o644); err != nil {
			return errors.Wrap(errors.CodeIO, androidOp, err)
		}
	}

	if err := a.writeProvenance(androidOp, dest); err != nil {
		return err
	}

	return a.pack(ctx, androidOp, executor.Command{
		Program: "gradle",
		Args:    []string{"assembleRelease"},
		Dir:     dest,
	})
}
