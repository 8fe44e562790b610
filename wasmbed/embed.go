package wasmbed

import (
	"context"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/fs"
)

const (
	validateOp = "wasmbed.Validate"
	embedOp    = "wasmbed.Embed"
)

// Validate compiles the binary with an in-process WebAssembly compiler before
// it is embedded, so a corrupt or truncated binary fails the pipeline here
// instead of shipping inside a package.
func Validate(ctx context.Context, wasm []byte) error {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Wrap(errors.CodeCompilation, validateOp, err)
	}
	return compiled.Close(ctx)
}

// Embedder applies the embedding transform to a compiler-emitted module
// package in place.
type Embedder struct {
	fsys      fs.Filesystem
	transform *Transform
	log       *zap.Logger
}

// NewEmbedder creates an Embedder.
func NewEmbedder(fsys fs.Filesystem, transform *Transform, log *zap.Logger) *Embedder {
	if transform == nil {
		transform = NewTransform(log)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Embedder{fsys: fsys, transform: transform, log: log}
}

// Embed rewrites the package at pkgDir for the module base name: the wasm
// binary is validated, encoded, and folded into the loader source; the type
// declarations gain the new entry points; the now-redundant wasm side-file is
// removed.
func (e *Embedder) Embed(ctx context.Context, pkgDir, module string) error {
	wasmPath := filepath.Join(pkgDir, module+"_bg.wasm")
	loaderPath := filepath.Join(pkgDir, module+".js")
	declsPath := filepath.Join(pkgDir, module+".d.ts")

	wasm, err := e.fsys.ReadFile(wasmPath)
	if err != nil {
		return errors.Wrap(errors.CodeIO, embedOp, err)
	}
	if err := Validate(ctx, wasm); err != nil {
		return err
	}

	loader, err := e.fsys.ReadFile(loaderPath)
	if err != nil {
		return errors.Wrap(errors.CodeIO, embedOp, err)
	}

	rewritten, err := e.transform.Loader(string(loader), EncodePayload(wasm))
	if err != nil {
		return err
	}
	if err := e.fsys.WriteFile(loaderPath, []byte(rewritten), 0o644); err != nil {
		return errors.Wrap(errors.CodeIO, embedOp, err)
	}

	if ok, _ := e.fsys.Exists(declsPath); ok {
		decls, readErr := e.fsys.ReadFile(declsPath)
		if readErr != nil {
			return errors.Wrap(errors.CodeIO, embedOp, readErr)
		}
		if writeErr := e.fsys.WriteFile(declsPath, []byte(e.transform.Decls(string(decls))), 0o644); writeErr != nil {
			return errors.Wrap(errors.CodeIO, embedOp, writeErr)
		}
	}

	if err := e.fsys.Remove(wasmPath); err != nil {
		return errors.Wrap(errors.CodeIO, embedOp, err)
	}

	e.log.Info("embedded wasm binary",
		zap.String("module", module),
		zap.Int("bytes", len(wasm)),
	)
	return nil
}
