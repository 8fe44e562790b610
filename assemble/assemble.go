// Package assemble lays out bindings and compiled artifacts into the
// directory structure each destination ecosystem expects, then invokes that
// ecosystem's own packaging tool. Every assembler clears its destination
// first: rebuilding from the same inputs overwrites rather than accumulates,
// so stale files from a previous run never survive into a new package.
package assemble

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/layout"
	"github.com/damus-io/nostr-sdk/manifest"
	"github.com/damus-io/nostr-sdk/target"
	"github.com/damus-io/nostr-sdk/vcs"
)

// ProvenanceFile records what a package was built from.
const ProvenanceFile = "PROVENANCE"

// Assembler builds platform packages. It is the only pipeline component
// permitted to invoke a platform's own packaging tool; that tool's exit code
// is the assembler's failure signal.
type Assembler struct {
	fsys   fs.Filesystem
	runner executor.Runner
	paths  layout.Paths
	man    *manifest.Manifest
	stamp  vcs.Stamp
	log    *zap.Logger
}

// New creates an Assembler.
func New(fsys fs.Filesystem, runner executor.Runner, paths layout.Paths, man *manifest.Manifest, stamp vcs.Stamp, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{fsys: fsys, runner: runner, paths: paths, man: man, stamp: stamp, log: log}
}

// stage clears the platform's package directory and seeds it from the
// checked-in project skeleton under package/<platform>, when one exists.
func (a *Assembler) stage(op string, platform target.Platform) (string, error) {
	dest := a.paths.PackageDir(platform)
	if err := a.fsys.RemoveAll(dest); err != nil {
		return "", errors.Wrap(errors.CodeIO, op, err)
	}
	if err := a.fsys.MkdirAll(dest, 0o755); err != nil {
		return "", errors.Wrap(errors.CodeIO, op, err)
	}

	skeleton := filepath.Join(a.paths.Root, "package", string(platform))
	ok, err := a.fsys.Exists(skeleton)
	if err != nil {
		return "", errors.Wrap(errors.CodeIO, op, err)
	}
	if ok {
		if err := fs.CopyDir(a.fsys, skeleton, dest); err != nil {
			return "", errors.Wrap(errors.CodeIO, op, err)
		}
	}
	return dest, nil
}

// writeProvenance records the release identity and revision into dir.
func (a *Assembler) writeProvenance(op, dir string) error {
	content := fmt.Sprintf("name: %s\nversion: %s\ncommit: %s\ntag: %s\ndirty: %t\n",
		a.man.Name, a.man.Version, a.stamp.Commit, a.stamp.Tag, a.stamp.Dirty)
	if err := a.fsys.WriteFile(filepath.Join(dir, ProvenanceFile), []byte(content), 0o644); err != nil {
		return errors.Wrap(errors.CodeIO, op, err)
	}
	return nil
}

// pack shells out to a platform's packaging tool.
func (a *Assembler) pack(ctx context.Context, op string, cmd executor.Command) error {
	a.log.Info("packaging",
		zap.String("tool", cmd.Program),
		zap.String("dir", cmd.Dir),
	)
	if _, err := a.runner.Run(ctx, cmd, executor.WithConsole(true)); err != nil {
		return errors.Wrap(errors.CodePackaging, op, err)
	}
	return nil
}
