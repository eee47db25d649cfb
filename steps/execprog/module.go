// Package execprog implements the 'exec' step: the single external
// program invocation a job exists for. The launcher starts the program
// with its fixed argument list, blocks until it exits, and reports the
// exit code without interpreting it. There is no retry and no output
// post-processing.
package execprog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/launch"
	"github.com/vk/gridlaunch/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the exec step. Args are opaque: they
// are forwarded to the program verbatim and in order.
type Input struct {
	Program     string   `glcl:"program"`
	Args        []string `glcl:"args"`
	WalltimeSec int64    `glcl:"walltime_sec"`
	MemoryMB    int64    `glcl:"memory_mb"`
}

// Deps declares the step's dependency on the shared launch environment.
type Deps struct {
	Env *launch.Environment
}

// Output is the terminal result of the program invocation.
type Output struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// OnRunExec is the handler for the 'exec' step.
func OnRunExec(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	runCtx := ctx
	if input.WalltimeSec > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(input.WalltimeSec)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, input.Program, input.Args...)
	cmd.Dir = deps.Env.Dir()
	cmd.Env = deps.Env.Snapshot()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start program %q: %w", input.Program, err)
	}
	logger.Info("▶️ Program started.", "program", input.Program, "args", input.Args, "pid", cmd.Process.Pid)

	if input.MemoryMB > 0 {
		if err := applyMemoryLimit(cmd.Process.Pid, input.MemoryMB); err != nil {
			logger.Warn("Could not apply memory ceiling to program.", "memory_mb", input.MemoryMB, "error", err)
		}
	}

	waitErr := cmd.Wait()
	out := &Output{Duration: time.Since(start)}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		out.TimedOut = true
		out.ExitCode = -1
		logger.Error("⏰ Program exceeded its walltime and was killed.", "walltime_sec", input.WalltimeSec)
		return out, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			logger.Info("🏁 Program finished.", "exit_code", out.ExitCode, "duration", out.Duration)
			return out, nil
		}
		return nil, fmt.Errorf("program %q did not run: %w", input.Program, waitErr)
	}

	logger.Info("🏁 Program finished.", "exit_code", 0, "duration", out.Duration)
	return out, nil
}

// Register registers the step definition and handler with the launcher.
func (m *Module) Register(r *registry.Registry) {
	emptyArgs := cty.ListValEmpty(cty.String)
	zero := cty.NumberIntVal(0)
	r.RegisterStep(&config.StepDefinition{
		Type:        config.StepExec,
		Description: "Invoke the external program with its fixed argument list.",
		Inputs: map[string]*config.InputDefinition{
			"program":      {Name: "program", Type: cty.String},
			"args":         {Name: "args", Type: cty.List(cty.String), Default: &emptyArgs, Optional: true},
			"walltime_sec": {Name: "walltime_sec", Type: cty.Number, Default: &zero, Optional: true},
			"memory_mb":    {Name: "memory_mb", Type: cty.Number, Default: &zero, Optional: true},
		},
	}, &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunExec,
	})
}
