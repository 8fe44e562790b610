package assemble

import (
	"context"

	"github.com/damus-io/nostr-sdk/executor"
)

const webOp = "assemble.Web"

// Web packs the transformed module package for npm. The package directory was
// produced by the web build and rewritten in place by the embedding
// transform; the web build stage cleared it, so there is nothing stale to
// remove here.
func (a *Assembler) Web(ctx context.Context) error {
	pkgDir := a.paths.WebPkgDir()

	if err := a.writeProvenance(webOp, pkgDir); err != nil {
		return err
	}

	return a.pack(ctx, webOp, executor.Command{
		Program: "npm",
		Args:    []string{"pack", "--pack-destination", ".."},
		Dir:     pkgDir,
	})
}
