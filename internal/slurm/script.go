// Package slurm renders jobs as sbatch submission scripts and hands them
// to a Slurm controller. Rendering is deterministic: the same job always
// produces byte-identical output, so scripts can be reviewed and
// version-controlled before submission.
package slurm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/gridlaunch/internal/config"
)

// mailTypes maps notification triggers to Slurm's --mail-type values.
var mailTypes = map[string]string{
	config.TriggerEnd:     "END",
	config.TriggerFail:    "FAIL",
	config.TriggerTimeout: "TIME_LIMIT",
}

// Render produces the sbatch script for a job. The script carries the
// scheduler directives first, then reproduces the same setup sequence
// local mode executes, and ends with the single program invocation.
func Render(job *config.Job) (string, error) {
	if job.Run == nil || job.Run.Program == "" {
		return "", fmt.Errorf("job %q has no program to run", job.Name)
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "#SBATCH --job-name=%s\n", job.Name)

	if r := job.Resources; r != nil {
		if r.MemoryMB > 0 {
			fmt.Fprintf(&b, "#SBATCH --mem=%dM\n", r.MemoryMB)
		}
		if r.CPUs > 0 {
			fmt.Fprintf(&b, "#SBATCH --cpus-per-task=%d\n", r.CPUs)
		}
		if r.GPUs > 0 {
			fmt.Fprintf(&b, "#SBATCH --gres=gpu:%d\n", r.GPUs)
		}
		if r.Walltime != "" {
			fmt.Fprintf(&b, "#SBATCH --time=%s\n", r.Walltime)
		}
		if r.Partition != "" {
			fmt.Fprintf(&b, "#SBATCH --partition=%s\n", r.Partition)
		}
	}

	if n := job.Notify; n != nil && n.Email != "" && len(n.On) > 0 {
		types := make([]string, 0, len(n.On))
		for _, trigger := range n.On {
			if mt, ok := mailTypes[trigger]; ok {
				types = append(types, mt)
			}
		}
		if len(types) > 0 {
			fmt.Fprintf(&b, "#SBATCH --mail-user=%s\n", n.Email)
			fmt.Fprintf(&b, "#SBATCH --mail-type=%s\n", strings.Join(types, ","))
		}
	}

	b.WriteString("\n")
	for _, mod := range job.EnvModules {
		fmt.Fprintf(&b, "module load %s\n", mod)
	}

	if len(job.Env) > 0 {
		keys := make([]string, 0, len(job.Env))
		for k := range job.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "export %s=%s\n", k, shellQuote(job.Env[k]))
		}
	}

	fmt.Fprintf(&b, "cd %s\n", shellQuote(job.Workdir))
	if job.Venv != "" {
		fmt.Fprintf(&b, "source %s\n", shellQuote(job.Venv+"/bin/activate"))
	}

	b.WriteString("\n")
	line := make([]string, 0, len(job.Run.Args)+1)
	line = append(line, shellQuote(job.Run.Program))
	for _, arg := range job.Run.Args {
		line = append(line, shellQuote(arg))
	}
	b.WriteString(strings.Join(line, " "))
	b.WriteString("\n")

	return b.String(), nil
}

// shellQuote makes a string safe to splice into the script. Plain words
// pass through unchanged so the common case stays readable.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$`&|;<>()*?[]#~%{}") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
