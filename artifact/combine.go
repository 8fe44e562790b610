package artifact

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/target"
)

const combineOp = "artifact.Combine"

// Combiner merges single-architecture artifacts into universal ones via the
// platform's architecture-fusion tool.
type Combiner struct {
	runner executor.Runner
	fsys   fs.Filesystem
	log    *zap.Logger

	// tool is the fusion tool program, lipo unless overridden.
	tool string
}

// NewCombiner creates a Combiner using lipo as the fusion tool.
func NewCombiner(runner executor.Runner, fsys fs.Filesystem, log *zap.Logger) *Combiner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Combiner{runner: runner, fsys: fsys, log: log, tool: "lipo"}
}

// Combine merges the inputs into a universal artifact at out. Inputs must all
// exist on disk, share format and OS, and differ in architecture; a missing
// input is fatal since a universal binary missing an architecture crashes on
// that architecture at runtime. Inputs are sorted by triple before invocation,
// so any argument order produces the identical merge.
func (c *Combiner) Combine(ctx context.Context, out string, inputs []Compiled) (Universal, error) {
	if len(inputs) < 2 {
		return Universal{}, errors.Newf(errors.CodeMergeInput, combineOp,
			"need at least 2 inputs, got %d", len(inputs))
	}

	format := inputs[0].Format
	osFamily := inputs[0].Target.OS
	seen := make(map[target.Arch]bool, len(inputs))
	for _, in := range inputs {
		if in.Format != format {
			return Universal{}, errors.Newf(errors.CodeMergeInput, combineOp,
				"mixed formats: %s and %s", format, in.Format)
		}
		if in.Target.OS != osFamily {
			return Universal{}, errors.Newf(errors.CodeMergeInput, combineOp,
				"mixed operating systems: %s and %s", osFamily, in.Target.OS)
		}
		if seen[in.Target.Arch] {
			return Universal{}, errors.Newf(errors.CodeMergeInput, combineOp,
				"duplicate architecture %s", in.Target.Arch)
		}
		seen[in.Target.Arch] = true

		ok, err := c.fsys.Exists(in.Path)
		if err != nil {
			return Universal{}, errors.Wrap(errors.CodeIO, combineOp, err)
		}
		if !ok {
			return Universal{}, errors.Newf(errors.CodeMergeInput, combineOp,
				"input for %s missing at %s", in.Target, in.Path)
		}
	}

	sorted := make([]Compiled, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Target.Triple() < sorted[j].Target.Triple()
	})

	if err := c.fsys.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Universal{}, errors.Wrap(errors.CodeIO, combineOp, err)
	}

	args := []string{"-create", "-output", out}
	archs := make([]target.Arch, 0, len(sorted))
	for _, in := range sorted {
		args = append(args, in.Path)
		archs = append(archs, in.Target.Arch)
	}

	c.log.Info("combining architectures",
		zap.String("output", out),
		zap.Int("inputs", len(sorted)),
	)

	if _, err := c.runner.Run(ctx, executor.Command{Program: c.tool, Args: args}); err != nil {
		return Universal{}, errors.Wrap(errors.CodeMerge, combineOp, err)
	}

	return Universal{Path: out, OS: osFamily, Archs: archs, Format: format}, nil
}

// Archs reports the architectures embedded in a universal artifact, as the
// fusion tool sees them.
func (c *Combiner) Archs(ctx context.Context, path string) ([]string, error) {
	result, err := c.runner.Run(ctx, executor.Command{
		Program: c.tool,
		Args:    []string{"-archs", path},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeMerge, "artifact.Archs", err)
	}
	return strings.Fields(result.Stdout), nil
}
