package toolchain

import (
	"context"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/layout"
	"github.com/damus-io/nostr-sdk/target"
)

const buildOp = "toolchain.Build"

// Builder invokes the native compiler once per target triple. Distinct
// targets write to distinct subtrees of the build tree, so different targets
// may build concurrently; the same target must never build twice at once.
type Builder struct {
	runner executor.Runner
	fsys   fs.Filesystem
	paths  layout.Paths
	log    *zap.Logger
}

// NewBuilder creates a Builder writing into the given layout.
func NewBuilder(runner executor.Runner, fsys fs.Filesystem, paths layout.Paths, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{runner: runner, fsys: fsys, paths: paths, log: log}
}

// Build cross-compiles the crate for one target in release mode, returning
// the compiled artifact at its deterministic location. A compiler failure is
// fatal; the compiler's own atomicity guarantees no partial artifact is left
// at the expected path.
func (b *Builder) Build(ctx context.Context, crate, lib string, t target.Target, f artifact.Format) (artifact.Compiled, error) {
	b.log.Info("compiling",
		zap.String("crate", crate),
		zap.String("target", t.Triple()),
	)

	cmd := executor.Command{
		Program: "cargo",
		Args:    []string{"build", "-p", crate, "--release", "--target", t.Triple()},
		Dir:     b.paths.Root,
	}
	if _, err := b.runner.Run(ctx, cmd, executor.WithConsole(true)); err != nil {
		return artifact.Compiled{}, errors.Wrapf(errors.CodeCompilation, buildOp, err,
			"target %s", t.Triple())
	}

	return artifact.Compiled{
		Path:   b.paths.ArtifactPath(lib, t, f),
		Target: t,
		Format: f,
	}, nil
}

// BuildMatrix compiles the crate for every target in the matrix,
// sequentially, in matrix order, for reproducible log ordering.
func (b *Builder) BuildMatrix(ctx context.Context, crate, lib string, matrix []target.Target, f artifact.Format) ([]artifact.Compiled, error) {
	artifacts := make([]artifact.Compiled, 0, len(matrix))
	for _, t := range matrix {
		art, err := b.Build(ctx, crate, lib, t, f)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, nil
}

// BuildWeb compiles the web crate with the web-target build tool, which emits
// the module package (wasm binary, loader source, type declarations) into
// outDir. outDir is cleared first so repeated runs never accumulate stale
// files.
func (b *Builder) BuildWeb(ctx context.Context, crateDir, outDir string) error {
	if err := b.fsys.RemoveAll(outDir); err != nil {
		return errors.Wrap(errors.CodeIO, buildOp, err)
	}

	b.log.Info("compiling web module", zap.String("crate", crateDir))

	cmd := executor.Command{
		Program: "wasm-pack",
		Args:    []string{"build", crateDir, "--release", "--target", "nodejs", "--out-dir", outDir},
		Dir:     b.paths.Root,
	}
	if _, err := b.runner.Run(ctx, cmd, executor.WithConsole(true)); err != nil {
		return errors.Wrap(errors.CodeCompilation, buildOp, err)
	}
	return nil
}
