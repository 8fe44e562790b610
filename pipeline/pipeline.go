// Package pipeline orders release stages by their declared dependencies and
// runs them. The graph is validated as it is built; running a stage runs its
// full dependency closure in a deterministic order and stops at the first
// failure. There is no rollback: a failed release run leaves its partial
// output on disk for inspection.
package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/errors"
)

// Stage is one unit of release work. Run may be nil for aggregate stages that
// exist only to group their dependencies under one name.
type Stage struct {
	Name string
	Deps []string
	Run  func(ctx context.Context) error
}

// Pipeline is a registry of stages forming a dependency graph.
type Pipeline struct {
	stages map[string]Stage
	order  []string // registration order, for deterministic validation walks
	log    *zap.Logger

	// Before, when set, is called with each stage name immediately before it
	// runs. Aggregate stages are skipped.
	Before func(name string)
}

// New creates an empty Pipeline.
func New(log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{stages: make(map[string]Stage), log: log}
}

// Register adds a stage. Duplicate names and self-dependencies are rejected
// immediately; dangling dependency names and cycles are caught by Run, since
// stages may be registered in any order.
func (p *Pipeline) Register(s Stage) error {
	const op = "pipeline.Register"
	if s.Name == "" {
		return errors.New(errors.CodePipeline, op, "stage name is required")
	}
	if _, exists := p.stages[s.Name]; exists {
		return errors.Newf(errors.CodePipeline, op, "duplicate stage %q", s.Name)
	}
	for _, dep := range s.Deps {
		if dep == s.Name {
			return errors.Newf(errors.CodePipeline, op, "stage %q depends on itself", s.Name)
		}
	}
	p.stages[s.Name] = s
	p.order = append(p.order, s.Name)
	return nil
}

// MustRegister is Register for static graphs assembled at startup, where a
// registration error is a programming mistake.
func (p *Pipeline) MustRegister(s Stage) {
	if err := p.Register(s); err != nil {
		panic(err)
	}
}

// Stages returns the registered stage names sorted alphabetically.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for name := range p.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plan returns the dependency closure of name in execution order. The order
// is deterministic: ascending topological depth, ties broken by name.
func (p *Pipeline) Plan(name string) ([]string, error) {
	const op = "pipeline.Plan"
	if _, ok := p.stages[name]; !ok {
		return nil, errors.Newf(errors.CodePipeline, op, "unknown stage %q", name)
	}

	depth, err := p.depths(op)
	if err != nil {
		return nil, err
	}

	closure := map[string]bool{}
	var visit func(n string)
	visit = func(n string) {
		if closure[n] {
			return
		}
		closure[n] = true
		for _, dep := range p.stages[n].Deps {
			visit(dep)
		}
	}
	visit(name)

	plan := make([]string, 0, len(closure))
	for n := range closure {
		plan = append(plan, n)
	}
	sort.Slice(plan, func(i, j int) bool {
		if depth[plan[i]] != depth[plan[j]] {
			return depth[plan[i]] < depth[plan[j]]
		}
		return plan[i] < plan[j]
	})
	return plan, nil
}

// Run executes the dependency closure of name sequentially, aborting at the
// first stage that fails.
func (p *Pipeline) Run(ctx context.Context, name string) error {
	const op = "pipeline.Run"

	plan, err := p.Plan(name)
	if err != nil {
		return err
	}
	p.log.Info("planned stages", zap.Strings("plan", plan))

	for _, n := range plan {
		stage := p.stages[n]
		if stage.Run == nil {
			continue
		}
		if p.Before != nil {
			p.Before(n)
		}
		p.log.Info("stage starting", zap.String("stage", n))
		if err := stage.Run(ctx); err != nil {
			p.log.Error("stage failed", zap.String("stage", n), zap.Error(err))
			return errors.Wrapf(errors.CodeOf(err), op, err, "stage %q failed", n)
		}
		p.log.Info("stage done", zap.String("stage", n))
	}
	return nil
}

// depths validates the whole graph (unknown deps, cycles) and computes the
// longest-path depth of every stage via Kahn's algorithm. A graph that cannot
// be fully ordered contains a cycle.
func (p *Pipeline) depths(op string) (map[string]int, error) {
	indeg := make(map[string]int, len(p.stages))
	dependents := make(map[string][]string, len(p.stages))
	for _, name := range p.order {
		indeg[name] += 0
		for _, dep := range p.stages[name].Deps {
			if _, ok := p.stages[dep]; !ok {
				return nil, errors.Newf(errors.CodePipeline, op,
					"stage %q depends on unknown stage %q", name, dep)
			}
			indeg[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for _, name := range p.order {
		if indeg[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	depth := make(map[string]int, len(p.stages))
	ordered := 0
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		ordered++
		next := dependents[n]
		sort.Strings(next)
		for _, m := range next {
			if d := depth[n] + 1; d > depth[m] {
				depth[m] = d
			}
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
		sort.Strings(ready)
	}
	if ordered != len(p.stages) {
		var stuck []string
		for name, d := range indeg {
			if d > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, errors.Newf(errors.CodePipeline, op, "dependency cycle involving %v", stuck)
	}
	return depth, nil
}
