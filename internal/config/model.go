package config

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of everything
// loaded from the user's job files.
type Model struct {
	Jobs []*Job
}

// Job is the format-agnostic representation of a `job` block: scheduler
// resource requests, the environment preparation sequence, and exactly
// one external program invocation.
type Job struct {
	Name       string
	Workdir    string
	Venv       string
	EnvModules []string
	Env        map[string]string
	Resources  *Resources
	Notify     *Notify
	Run        *Run
	Steps      []*Step
}

// Resources are declarative requests made to a batch scheduler. In local
// mode the launcher enforces what it can (walltime, memory ceiling); in
// sbatch mode they become directives for the scheduler to enforce.
type Resources struct {
	MemoryMB  int
	CPUs      int
	GPUs      int
	Walltime  string
	Partition string
}

// WalltimeDuration parses the HH:MM:SS walltime into a time.Duration.
// An empty walltime returns zero, meaning no limit.
func (r *Resources) WalltimeDuration() (time.Duration, error) {
	if r == nil || r.Walltime == "" {
		return 0, nil
	}
	var h, m, s int
	if _, err := fmt.Sscanf(r.Walltime, "%d:%d:%d", &h, &m, &s); err != nil {
		return 0, fmt.Errorf("invalid walltime %q, expected HH:MM:SS: %w", r.Walltime, err)
	}
	if h < 0 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid walltime %q, expected HH:MM:SS", r.Walltime)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, nil
}

// Notify declares who to notify and on which terminal states.
type Notify struct {
	Email   string
	Webhook string
	On      []string
}

// Notification triggers accepted in a notify block's `on` list.
const (
	TriggerEnd     = "end"
	TriggerFail    = "fail"
	TriggerTimeout = "timeout"
)

// Built-in step types synthesized into every job's pipeline. The
// packages under steps/ register handlers for these.
const (
	StepEnvModule = "env_module"
	StepEnvExport = "env_export"
	StepWorkdir   = "workdir"
	StepVenv      = "venv"
	StepExec      = "exec"
)

// Run holds the single external program invocation. The argument list is
// opaque to the launcher: never validated, transformed, or reordered.
type Run struct {
	Program string
	Args    []string
}

// Step is the format-agnostic representation of an extra user-supplied
// setup step from a job file.
type Step struct {
	Type      string
	Name      string
	Args      map[string]cty.Value
	DependsOn []string
}

// StepDefinition declares a step type's argument contract. Unlike the
// job files themselves, definitions live in Go: the launcher ships a
// fixed set of step types.
type StepDefinition struct {
	Type        string
	Description string
	Inputs      map[string]*InputDefinition
}

// InputDefinition defines a single input argument for a step type.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}
