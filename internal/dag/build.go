package dag

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/registry"
)

// BuildOptions carries launcher-level settings that synthesized steps
// need but job files do not declare.
type BuildOptions struct {
	// ModulesRoot is the directory environment modules resolve against
	// in local mode.
	ModulesRoot string
}

// BuildJob constructs a complete, validated dependency graph for one job:
// the synthesized environment-preparation chain (env modules, env
// exports, workdir, venv), any user-supplied extra steps, and the final
// program-invocation node that depends on all of them. The exec node can
// therefore never run unless every setup step succeeded.
func BuildJob(ctx context.Context, job *config.Job, r *registry.Registry, opts BuildOptions) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("BuildJob: starting graph construction.", "job", job.Name)

	graph := &Graph{Nodes: make(map[string]*Node)}

	steps, execStep, err := synthesizePipeline(ctx, job, opts)
	if err != nil {
		return nil, err
	}
	steps = append(steps, execStep)

	// First pass: create all nodes and check the step types exist.
	for _, s := range steps {
		if _, ok := r.Handler(s.Type); !ok {
			return nil, fmt.Errorf("unknown step type '%s' for step %q", s.Type, s.Name)
		}
		n := &Node{ID: nodeID(s), Name: s.Name, Step: s}
		if err := graph.addNode(n); err != nil {
			return nil, err
		}
	}
	graph.ExecID = nodeID(execStep)
	logger.Debug("BuildJob: node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: link dependencies.
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if err := graph.addEdge(dep, nodeID(s)); err != nil {
				return nil, err
			}
		}
	}
	logger.Debug("BuildJob: node linking complete.")

	// Third pass: initialize counters.
	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("BuildJob: graph construction successful.")

	return graph, nil
}

// nodeID produces the canonical node ID for a step.
func nodeID(s *config.Step) string {
	return fmt.Sprintf("step.%s.%s", s.Type, s.Name)
}

// synthesizePipeline converts a job into its ordered setup steps plus the
// terminal exec step. Synthesized steps form a linear chain; user steps
// without explicit depends_on are anchored after the environment
// preparation and before the exec node.
func synthesizePipeline(ctx context.Context, job *config.Job, opts BuildOptions) ([]*config.Step, *config.Step, error) {
	logger := ctxlog.FromContext(ctx)
	var steps []*config.Step
	var prevID string

	appendStep := func(s *config.Step) {
		if prevID != "" {
			s.DependsOn = append(s.DependsOn, prevID)
		}
		steps = append(steps, s)
		prevID = nodeID(s)
	}

	seenModules := make(map[string]bool)
	for _, mod := range job.EnvModules {
		if seenModules[mod] {
			logger.Warn("Duplicate environment module in job, loading once.", "module", mod)
			continue
		}
		seenModules[mod] = true
		appendStep(&config.Step{
			Type: config.StepEnvModule,
			Name: mod,
			Args: map[string]cty.Value{
				"name": cty.StringVal(mod),
				"root": cty.StringVal(opts.ModulesRoot),
			},
		})
	}

	if len(job.Env) > 0 {
		vars := make(map[string]cty.Value, len(job.Env))
		for k, v := range job.Env {
			vars[k] = cty.StringVal(v)
		}
		appendStep(&config.Step{
			Type: config.StepEnvExport,
			Name: job.Name,
			Args: map[string]cty.Value{"vars": cty.MapVal(vars)},
		})
	}

	appendStep(&config.Step{
		Type: config.StepWorkdir,
		Name: job.Name,
		Args: map[string]cty.Value{"path": cty.StringVal(job.Workdir)},
	})

	if job.Venv != "" {
		appendStep(&config.Step{
			Type: config.StepVenv,
			Name: job.Name,
			Args: map[string]cty.Value{"path": cty.StringVal(job.Venv)},
		})
	}

	anchorID := prevID
	for _, s := range job.Steps {
		user := &config.Step{Type: s.Type, Name: s.Name, Args: s.Args, DependsOn: s.DependsOn}
		if len(user.DependsOn) == 0 && anchorID != "" {
			user.DependsOn = []string{anchorID}
		}
		steps = append(steps, user)
	}

	execStep, err := synthesizeExecStep(job)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range steps {
		execStep.DependsOn = append(execStep.DependsOn, nodeID(s))
	}

	return steps, execStep, nil
}

// synthesizeExecStep builds the terminal node invoking the external
// program with its fixed, opaque argument list.
func synthesizeExecStep(job *config.Job) (*config.Step, error) {
	argVals := make([]cty.Value, 0, len(job.Run.Args))
	for _, a := range job.Run.Args {
		argVals = append(argVals, cty.StringVal(a))
	}
	argsList := cty.ListValEmpty(cty.String)
	if len(argVals) > 0 {
		argsList = cty.ListVal(argVals)
	}

	var walltimeSec, memoryMB int64
	if job.Resources != nil {
		d, err := job.Resources.WalltimeDuration()
		if err != nil {
			return nil, err
		}
		walltimeSec = int64(d.Seconds())
		memoryMB = int64(job.Resources.MemoryMB)
	}

	return &config.Step{
		Type: config.StepExec,
		Name: job.Name,
		Args: map[string]cty.Value{
			"program":      cty.StringVal(job.Run.Program),
			"args":         argsList,
			"walltime_sec": cty.NumberIntVal(walltimeSec),
			"memory_mb":    cty.NumberIntVal(memoryMB),
		},
	}, nil
}
