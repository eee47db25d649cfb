// Package schema holds the gohcl-tagged structures that mirror the HCL
// surface of a job file. The hcl package translates these into the
// format-agnostic model in the config package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// JobFile represents the top-level structure of a user's job file.
type JobFile struct {
	Jobs []*Job   `hcl:"job,block"`
	Body hcl.Body `hcl:",remain"`
}

// Job represents a `job` block: one external program invocation plus the
// scheduler directives and environment preparation it needs.
type Job struct {
	Name       string            `hcl:"name,label"`
	Workdir    string            `hcl:"workdir"`
	Venv       string            `hcl:"venv,optional"`
	EnvModules []string          `hcl:"env_modules,optional"`
	Env        map[string]string `hcl:"env,optional"`
	Resources  *Resources        `hcl:"resources,block"`
	Notify     *Notify           `hcl:"notify,block"`
	Run        *Run              `hcl:"run,block"`
	Steps      []*Step           `hcl:"step,block"`
}

// Resources represents the `resources` block of scheduler requests.
type Resources struct {
	MemoryMB  int    `hcl:"memory_mb,optional"`
	CPUs      int    `hcl:"cpus,optional"`
	GPUs      int    `hcl:"gpus,optional"`
	Walltime  string `hcl:"walltime,optional"`
	Partition string `hcl:"partition,optional"`
}

// Notify represents the `notify` block: who to notify and on which
// terminal states.
type Notify struct {
	Email   string   `hcl:"email,optional"`
	Webhook string   `hcl:"webhook,optional"`
	On      []string `hcl:"on,optional"`
}

// Run represents the `run` block: the program and its fixed argument list.
type Run struct {
	Program string   `hcl:"program"`
	Args    []string `hcl:"args,optional"`
}

// StepArgs represents the content of the 'arguments' block within a step.
type StepArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Step represents an extra user-supplied `step` block in a job file.
type Step struct {
	Type      string    `hcl:"step_type,label"`
	Name      string    `hcl:"instance_name,label"`
	Arguments *StepArgs `hcl:"arguments,block"`
	DependsOn []string  `hcl:"depends_on,optional"`
}
