// Package bindgen invokes the binding generator, an external tool that
// introspects a compiled library's exported interface and emits source for one
// destination language. The generator is a black box here; this package owns
// only its invocation contract.
package bindgen

import (
	"context"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
)

const generateOp = "bindgen.Generate"

// Language selects the destination ecosystem for one generation run.
type Language string

const (
	Kotlin Language = "kotlin"
	Swift  Language = "swift"
	Python Language = "python"
)

// BindingSet is the output of one generation run: source files in one
// destination language, plus any native headers or module maps, generated
// from exactly one artifact. Never shared across languages.
type BindingSet struct {
	Language Language
	Dir      string
	Artifact artifact.Compiled
}

// Generator runs the binding generator tool.
type Generator struct {
	runner executor.Runner
	fsys   fs.Filesystem
	root   string
	log    *zap.Logger
}

// NewGenerator creates a Generator running out of the repository root.
func NewGenerator(runner executor.Runner, fsys fs.Filesystem, root string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{runner: runner, fsys: fsys, root: root, log: log}
}

// Generate produces the binding set for one artifact and language into
// outDir. The output directory is cleared first so a failed or repeated run
// never leaves a partial or stale binding set behind. A generator failure is
// fatal.
func (g *Generator) Generate(ctx context.Context, art artifact.Compiled, lang Language, outDir string, format bool) (BindingSet, error) {
	if err := g.fsys.RemoveAll(outDir); err != nil {
		return BindingSet{}, errors.Wrap(errors.CodeIO, generateOp, err)
	}
	if err := g.fsys.MkdirAll(outDir, 0o755); err != nil {
		return BindingSet{}, errors.Wrap(errors.CodeIO, generateOp, err)
	}

	g.log.Info("generating bindings",
		zap.String("language", string(lang)),
		zap.String("artifact", art.Path),
	)

	args := []string{
		"run", "-p", "uniffi-bindgen", "--",
		"generate",
		"--library", art.Path,
		"--language", string(lang),
		"--out-dir", outDir,
	}
	if !format {
		args = append(args, "--no-format")
	}

	cmd := executor.Command{Program: "cargo", Args: args, Dir: g.root}
	if _, err := g.runner.Run(ctx, cmd, executor.WithConsole(true)); err != nil {
		return BindingSet{}, errors.Wrapf(errors.CodeGeneration, generateOp, err,
			"language %s", lang)
	}

	return BindingSet{Language: lang, Dir: outDir, Artifact: art}, nil
}
