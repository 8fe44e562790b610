package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/pipeline"
)

// recording builds a pipeline whose stages append their name to a shared log.
func recording(t *testing.T, ran *[]string, stages ...pipeline.Stage) *pipeline.Pipeline {
	t.Helper()
	p := pipeline.New(nil)
	for _, s := range stages {
		s := s
		if s.Run == nil {
			name := s.Name
			s.Run = func(context.Context) error {
				*ran = append(*ran, name)
				return nil
			}
		}
		require.NoError(t, p.Register(s))
	}
	return p
}

func TestRunExecutesClosureInOrder(t *testing.T) {
	var ran []string
	p := recording(t, &ran,
		pipeline.Stage{Name: "package-android", Deps: []string{"bindings-kotlin"}},
		pipeline.Stage{Name: "bindings-kotlin", Deps: []string{"build-android"}},
		pipeline.Stage{Name: "build-android", Deps: []string{"check-android"}},
		pipeline.Stage{Name: "check-android"},
		pipeline.Stage{Name: "build-web"},
	)

	require.NoError(t, p.Run(context.Background(), "package-android"))

	assert.Equal(t, []string{"check-android", "build-android", "bindings-kotlin", "package-android"}, ran)
	assert.NotContains(t, ran, "build-web", "stages outside the closure must not run")
}

func TestPlanBreaksDepthTiesByName(t *testing.T) {
	var ran []string
	p := recording(t, &ran,
		pipeline.Stage{Name: "all", Deps: []string{"web", "android"}},
		pipeline.Stage{Name: "web"},
		pipeline.Stage{Name: "android"},
	)

	plan, err := p.Plan("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"android", "web", "all"}, plan)
}

func TestRunFailFast(t *testing.T) {
	var ran []string
	boom := fmt.Errorf("cargo: exit status 101")
	p := pipeline.New(nil)
	require.NoError(t, p.Register(pipeline.Stage{Name: "build", Run: func(context.Context) error {
		ran = append(ran, "build")
		return errors.Wrap(errors.CodeCompilation, "toolchain.Build", boom)
	}}))
	require.NoError(t, p.Register(pipeline.Stage{Name: "package", Deps: []string{"build"}, Run: func(context.Context) error {
		ran = append(ran, "package")
		return nil
	}}))

	err := p.Run(context.Background(), "package")
	require.Error(t, err)
	assert.Equal(t, []string{"build"}, ran)
	assert.Equal(t, errors.CodeCompilation, errors.CodeOf(err), "the failing stage's classification survives")
	assert.Contains(t, err.Error(), `stage "build" failed`)
}

func TestAggregateStageHasNoRun(t *testing.T) {
	var ran []string
	p := recording(t, &ran,
		pipeline.Stage{Name: "build-web"},
	)
	require.NoError(t, p.Register(pipeline.Stage{Name: "web", Deps: []string{"build-web"}}))

	require.NoError(t, p.Run(context.Background(), "web"))
	assert.Equal(t, []string{"build-web"}, ran)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	p := pipeline.New(nil)
	require.NoError(t, p.Register(pipeline.Stage{Name: "build"}))

	err := p.Register(pipeline.Stage{Name: "build"})
	require.Error(t, err)
	assert.Equal(t, errors.CodePipeline, errors.CodeOf(err))
}

func TestRegisterRejectsSelfDependency(t *testing.T) {
	p := pipeline.New(nil)
	err := p.Register(pipeline.Stage{Name: "build", Deps: []string{"build"}})
	require.Error(t, err)
	assert.Equal(t, errors.CodePipeline, errors.CodeOf(err))
}

func TestPlanRejectsUnknownStage(t *testing.T) {
	p := pipeline.New(nil)
	require.NoError(t, p.Register(pipeline.Stage{Name: "build"}))

	_, err := p.Plan("deploy")
	require.Error(t, err)
	assert.Equal(t, errors.CodePipeline, errors.CodeOf(err))
}

func TestPlanRejectsUnknownDependency(t *testing.T) {
	p := pipeline.New(nil)
	require.NoError(t, p.Register(pipeline.Stage{Name: "package", Deps: []string{"build"}}))

	_, err := p.Plan("package")
	require.Error(t, err)
	assert.Equal(t, errors.CodePipeline, errors.CodeOf(err))
	assert.Contains(t, err.Error(), `unknown stage "build"`)
}

func TestPlanRejectsCycle(t *testing.T) {
	p := pipeline.New(nil)
	require.NoError(t, p.Register(pipeline.Stage{Name: "a", Deps: []string{"b"}}))
	require.NoError(t, p.Register(pipeline.Stage{Name: "b", Deps: []string{"c"}}))
	require.NoError(t, p.Register(pipeline.Stage{Name: "c", Deps: []string{"a"}}))

	_, err := p.Plan("a")
	require.Error(t, err)
	assert.Equal(t, errors.CodePipeline, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "cycle")
}

func TestBeforeHookSeesEachRunnableStage(t *testing.T) {
	var ran, announced []string
	p := recording(t, &ran,
		pipeline.Stage{Name: "build"},
		pipeline.Stage{Name: "embed", Deps: []string{"build"}},
	)
	require.NoError(t, p.Register(pipeline.Stage{Name: "web", Deps: []string{"embed"}}))
	p.Before = func(name string) { announced = append(announced, name) }

	require.NoError(t, p.Run(context.Background(), "web"))
	assert.Equal(t, []string{"build", "embed"}, announced, "aggregates are not announced")
}
