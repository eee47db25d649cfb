// Package workdir implements the 'workdir' step: selecting the fixed
// working directory the external program will be started in. The
// directory must already exist; the launcher never creates it.
package workdir

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

// Input defines the arguments for the workdir step.
type Input struct {
	Path string `glcl:"path"`
}

// Deps declares the step's dependency on the shared launch environment.
type Deps struct {
	Env *launch.Environment
}

// Output reports the resolved directory.
type Output struct {
	Dir string
}

// OnRunWorkdir is the handler for the 'workdir' step.
func OnRunWorkdir(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	if !filepath.IsAbs(input.Path) {
		return nil, fmt.Errorf("workdir must be an absolute path, got %q", input.Path)
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return nil, fmt.Errorf("workdir %q does not exist: %w", input.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workdir %q is not a directory", input.Path)
	}

	deps.Env.SetDir(input.Path)
	logger.Info("Working directory selected.", "dir", input.Path)
	return &Output{Dir: input.Path}, nil
}

// Register registers the step definition and handler with the launcher.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(&config.StepDefinition{
		Type:        config.StepWorkdir,
		Description: "Select the working directory for the external program.",
		Inputs: map[string]*config.InputDefinition{
			"path": {Name: "path", Type: cty.String},
		},
	}, &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunWorkdir,
	})
}
