// Command release drives the native-library release pipeline: it
// cross-compiles the FFI crate for every shipped target, generates language
// bindings, and assembles the platform packages. The argument names the stage
// to run; its dependency closure runs first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/artifact"
	"github.com/damus-io/nostr-sdk/assemble"
	"github.com/damus-io/nostr-sdk/bindgen"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
	"github.com/damus-io/nostr-sdk/layout"
	"github.com/damus-io/nostr-sdk/manifest"
	"github.com/damus-io/nostr-sdk/pipeline"
	"github.com/damus-io/nostr-sdk/target"
	"github.com/damus-io/nostr-sdk/toolchain"
	"github.com/damus-io/nostr-sdk/vcs"
	"github.com/damus-io/nostr-sdk/wasmbed"
)

var stageStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1)

func main() {
	var (
		rootDir      = flag.String("C", ".", "Repository root to release from")
		manifestPath = flag.String("manifest", manifest.DefaultPath, "Release manifest path, relative to the root")
		patternMiss  = flag.Bool("allow-pattern-miss", false, "Warn instead of failing when a loader strip rule matches nothing")
		verbose      = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	stage := flag.Arg(0)
	if stage == "" {
		stage = "all"
	}

	if err := run(*rootDir, *manifestPath, stage, *patternMiss, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rootDir, manifestPath, stage string, patternMiss, verbose bool) error {
	log, err := buildLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	root, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	fsys := fs.NewOSFS("/")
	paths := layout.New(root)

	man, err := manifest.Load(fsys, filepath.Join(root, manifestPath))
	if err != nil {
		return err
	}

	stamp, err := vcs.Describe(root)
	if err != nil {
		return err
	}
	log.Info("releasing",
		zap.String("name", man.Name),
		zap.String("version", man.Version),
		zap.String("commit", stamp.Short()),
		zap.Bool("dirty", stamp.Dirty),
	)

	runner := executor.NewLocal(log)
	checker := toolchain.NewChecker(fsys, runner, nil, log)
	builder := toolchain.NewBuilder(runner, fsys, paths, log)
	combiner := artifact.NewCombiner(runner, fsys, log)
	generator := bindgen.NewGenerator(runner, fsys, root, log)

	transform := wasmbed.NewTransform(log)
	transform.AllowPatternMiss = patternMiss
	embedder := wasmbed.NewEmbedder(fsys, transform, log)

	asm := assemble.New(fsys, runner, paths, man, stamp, log)

	p := pipeline.New(log)
	p.Before = func(name string) {
		fmt.Println(stageStyle.Render(name))
	}
	registerStages(p, stages{
		paths:     paths,
		man:       man,
		checker:   checker,
		builder:   builder,
		combiner:  combiner,
		generator: generator,
		embedder:  embedder,
		asm:       asm,
	})

	return p.Run(context.Background(), stage)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// stages carries the wired pipeline components plus the artifacts each stage
// hands to the next. A run is single-threaded, so plain fields suffice.
type stages struct {
	paths layout.Paths
	man   *manifest.Manifest

	checker   *toolchain.Checker
	builder   *toolchain.Builder
	combiner  *artifact.Combiner
	generator *bindgen.Generator
	embedder  *wasmbed.Embedder
	asm       *assemble.Assembler

	android     []artifact.Compiled
	apple       []artifact.Compiled
	appleSlices []assemble.AppleSlice
	python      artifact.Compiled

	kotlin    bindgen.BindingSet
	swift     bindgen.BindingSet
	pythonGen bindgen.BindingSet
}

func registerStages(p *pipeline.Pipeline, s stages) {
	st := &s

	p.MustRegister(pipeline.Stage{Name: "check-android", Run: func(ctx context.Context) error {
		if err := st.checker.EnvDir("Android build", toolchain.AndroidNDKEnv); err != nil {
			return err
		}
		for _, tool := range []string{"cargo", "gradle"} {
			if err := st.checker.Tool("Android build", tool); err != nil {
				return err
			}
		}
		return nil
	}})
	p.MustRegister(pipeline.Stage{Name: "build-android", Deps: []string{"check-android"}, Run: func(ctx context.Context) error {
		arts, err := st.builder.BuildMatrix(ctx, st.man.Crate, st.man.Library,
			target.Matrix(target.PlatformAndroid), artifact.Dynamic)
		st.android = arts
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "bindings-kotlin", Deps: []string{"build-android"}, Run: func(ctx context.Context) error {
		set, err := st.generator.Generate(ctx, st.android[0], bindgen.Kotlin,
			st.paths.BindingsDir("kotlin"), false)
		st.kotlin = set
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "package-android", Deps: []string{"bindings-kotlin"}, Run: func(ctx context.Context) error {
		return st.asm.Android(ctx, st.kotlin, st.android)
	}})

	p.MustRegister(pipeline.Stage{Name: "check-apple", Run: func(ctx context.Context) error {
		for _, tool := range []string{"cargo", "lipo", "xcodebuild"} {
			if err := st.checker.Tool("Apple build", tool); err != nil {
				return err
			}
		}
		return nil
	}})
	p.MustRegister(pipeline.Stage{Name: "build-apple", Deps: []string{"check-apple"}, Run: func(ctx context.Context) error {
		arts, err := st.builder.BuildMatrix(ctx, st.man.Crate, st.man.Library,
			target.Matrix(target.PlatformApple), artifact.Static)
		st.apple = arts
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "combine-apple", Deps: []string{"build-apple"}, Run: func(ctx context.Context) error {
		slices, err := combineApple(ctx, st)
		st.appleSlices = slices
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "bindings-swift", Deps: []string{"build-apple"}, Run: func(ctx context.Context) error {
		set, err := st.generator.Generate(ctx, st.apple[0], bindgen.Swift,
			st.paths.BindingsDir("swift"), false)
		st.swift = set
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "package-apple", Deps: []string{"combine-apple", "bindings-swift"}, Run: func(ctx context.Context) error {
		return st.asm.Apple(ctx, st.swift, st.appleSlices)
	}})

	p.MustRegister(pipeline.Stage{Name: "check-python", Run: func(ctx context.Context) error {
		for _, tool := range []string{"cargo", "python3"} {
			if err := st.checker.Tool("Python build", tool); err != nil {
				return err
			}
		}
		return nil
	}})
	p.MustRegister(pipeline.Stage{Name: "build-python", Deps: []string{"check-python"}, Run: func(ctx context.Context) error {
		art, err := st.builder.Build(ctx, st.man.Crate, st.man.Library,
			target.Host(), artifact.Dynamic)
		st.python = art
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "bindings-python", Deps: []string{"build-python"}, Run: func(ctx context.Context) error {
		set, err := st.generator.Generate(ctx, st.python, bindgen.Python,
			st.paths.BindingsDir("python"), false)
		st.pythonGen = set
		return err
	}})
	p.MustRegister(pipeline.Stage{Name: "package-python", Deps: []string{"bindings-python"}, Run: func(ctx context.Context) error {
		return st.asm.Python(ctx, st.pythonGen, st.python)
	}})

	p.MustRegister(pipeline.Stage{Name: "check-web", Run: func(ctx context.Context) error {
		for _, tool := range []string{"wasm-pack", "npm"} {
			if err := st.checker.Tool("Web build", tool); err != nil {
				return err
			}
		}
		return nil
	}})
	p.MustRegister(pipeline.Stage{Name: "build-web", Deps: []string{"check-web"}, Run: func(ctx context.Context) error {
		crateDir := filepath.Join(st.paths.Root, st.man.Web.Crate)
		return st.builder.BuildWeb(ctx, crateDir, st.paths.WebPkgDir())
	}})
	p.MustRegister(pipeline.Stage{Name: "embed-web", Deps: []string{"build-web"}, Run: func(ctx context.Context) error {
		return st.embedder.Embed(ctx, st.paths.WebPkgDir(), st.man.Web.Module)
	}})
	p.MustRegister(pipeline.Stage{Name: "package-web", Deps: []string{"embed-web"}, Run: func(ctx context.Context) error {
		return st.asm.Web(ctx)
	}})

	p.MustRegister(pipeline.Stage{Name: "android", Deps: []string{"package-android"}})
	p.MustRegister(pipeline.Stage{Name: "apple", Deps: []string{"package-apple"}})
	p.MustRegister(pipeline.Stage{Name: "python", Deps: []string{"package-python"}})
	p.MustRegister(pipeline.Stage{Name: "web", Deps: []string{"package-web"}})
	p.MustRegister(pipeline.Stage{Name: "all", Deps: []string{"android", "apple", "python", "web"}})
}

// combineApple fuses the per-architecture static libraries into one library
// per framework slice. A single-target slice ships its artifact as built.
func combineApple(ctx context.Context, st *stages) ([]assemble.AppleSlice, error) {
	byTriple := make(map[string]artifact.Compiled, len(st.apple))
	for _, art := range st.apple {
		byTriple[art.Target.Triple()] = art
	}

	slices := make([]assemble.AppleSlice, 0, 3)
	for _, group := range target.AppleGroups() {
		inputs := make([]artifact.Compiled, 0, len(group.Targets))
		for _, t := range group.Targets {
			if art, ok := byTriple[t.Triple()]; ok {
				inputs = append(inputs, art)
			}
		}

		if len(inputs) == 1 {
			slices = append(slices, assemble.AppleSlice{Group: group, Library: inputs[0].Path})
			continue
		}

		out := st.paths.UniversalPath(st.man.Library, group.Name, group.OS, artifact.Static)
		merged, err := st.combiner.Combine(ctx, out, inputs)
		if err != nil {
			return nil, err
		}
		slices = append(slices, assemble.AppleSlice{Group: group, Library: merged.Path})
	}
	return slices, nil
}
