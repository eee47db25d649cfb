// Package venv implements the 'venv' step: activating an isolated Python
// runtime environment for the external program. Activation mirrors what
// bin/activate does to a shell: set VIRTUAL_ENV, put bin first on PATH,
// and drop PYTHONHOME so the venv's interpreter shadows any system one.
package venv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/launch"
	"github.com/vk/gridlaunch/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the venv step.
type Input struct {
	Path string `glcl:"path"`
}

// Deps declares the step's dependency on the shared launch environment.
type Deps struct {
	Env *launch.Environment
}

// Output reports the activated environment root.
type Output struct {
	VirtualEnv string
}

// OnRunVenv is the handler for the 'venv' step. A venv without its
// bin/activate script is treated as absent: the run must halt here,
// before the external program is ever invoked.
func OnRunVenv(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	activate := filepath.Join(input.Path, "bin", "activate")
	if _, err := os.Stat(activate); err != nil {
		return nil, fmt.Errorf("virtual environment %q cannot be activated: %w", input.Path, err)
	}

	deps.Env.Set("VIRTUAL_ENV", input.Path)
	deps.Env.Prepend("PATH", filepath.Join(input.Path, "bin"), string(os.PathListSeparator))
	deps.Env.Unset("PYTHONHOME")

	logger.Info("Virtual environment activated.", "venv", input.Path)
	return &Output{VirtualEnv: input.Path}, nil
}

// Register registers the step definition and handler with the launcher.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(&config.StepDefinition{
		Type:        config.StepVenv,
		Description: "Activate an isolated runtime environment.",
		Inputs: map[string]*config.InputDefinition{
			"path": {Name: "path", Type: cty.String},
		},
	}, &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunVenv,
	})
}
