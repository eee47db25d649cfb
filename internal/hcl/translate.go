package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/schema"
)

// translateJob converts the HCL-specific job schema into the agnostic
// model and validates everything that can be checked without a registry.
func (l *Loader) translateJob(s *schema.Job) (*config.Job, error) {
	job := &config.Job{
		Name:       s.Name,
		Workdir:    s.Workdir,
		Venv:       s.Venv,
		EnvModules: s.EnvModules,
		Env:        s.Env,
	}

	if s.Run == nil {
		return nil, fmt.Errorf("missing required run block")
	}
	if s.Run.Program == "" {
		return nil, fmt.Errorf("run block must name a program")
	}
	job.Run = &config.Run{Program: s.Run.Program, Args: s.Run.Args}

	if s.Resources != nil {
		res, err := l.translateResources(s.Resources)
		if err != nil {
			return nil, err
		}
		job.Resources = res
	}

	if s.Notify != nil {
		n, err := l.translateNotify(s.Notify)
		if err != nil {
			return nil, err
		}
		job.Notify = n
	}

	for _, st := range s.Steps {
		step, err := l.translateStep(st)
		if err != nil {
			return nil, err
		}
		job.Steps = append(job.Steps, step)
	}

	return job, nil
}

// translateResources validates and converts a resources block.
func (l *Loader) translateResources(s *schema.Resources) (*config.Resources, error) {
	if s.MemoryMB < 0 || s.CPUs < 0 || s.GPUs < 0 {
		return nil, fmt.Errorf("resource requests cannot be negative")
	}
	res := &config.Resources{
		MemoryMB:  s.MemoryMB,
		CPUs:      s.CPUs,
		GPUs:      s.GPUs,
		Walltime:  s.Walltime,
		Partition: s.Partition,
	}
	if _, err := res.WalltimeDuration(); err != nil {
		return nil, err
	}
	return res, nil
}

// translateNotify validates and converts a notify block.
func (l *Loader) translateNotify(s *schema.Notify) (*config.Notify, error) {
	for _, trigger := range s.On {
		switch trigger {
		case config.TriggerEnd, config.TriggerFail, config.TriggerTimeout:
		default:
			return nil, fmt.Errorf("unknown notify trigger %q, expected one of end, fail, timeout", trigger)
		}
	}
	return &config.Notify{Email: s.Email, Webhook: s.Webhook, On: s.On}, nil
}

// translateStep converts a user step block, evaluating its argument
// expressions. Job files are static configuration, so expressions are
// evaluated with no variables in scope.
func (l *Loader) translateStep(s *schema.Step) (*config.Step, error) {
	step := &config.Step{
		Type:      s.Type,
		Name:      s.Name,
		DependsOn: s.DependsOn,
	}

	if s.Arguments != nil && s.Arguments.Body != nil {
		attrs, diags := s.Arguments.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid arguments for step %s.%s: %s", s.Type, s.Name, diags.Error())
		}
		step.Args = make(map[string]cty.Value, len(attrs))
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate argument %q for step %s.%s: %s", name, s.Type, s.Name, diags.Error())
			}
			step.Args[name] = val
		}
	}

	return step, nil
}
