// Package envmodule implements the 'env_module' step: loading a named
// software stack into the environment being prepared for the external
// program. A module named NAME resolves to <root>/NAME; loading prepends
// its bin and lib directories to PATH and LD_LIBRARY_PATH.
package envmodule

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

// Input defines the arguments for the env_module step.
type Input struct {
	Name string `glcl:"name"`
	Root string `glcl:"root"`
}

// Deps declares the step's dependency on the shared launch environment.
type Deps struct {
	Env *launch.Environment
}

// Output reports where the module was resolved.
type Output struct {
	Dir string
}

// OnRunEnvModule is the handler for the 'env_module' step.
func OnRunEnvModule(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	if input.Root == "" {
		return nil, fmt.Errorf("no modules root configured, cannot load module %q", input.Name)
	}

	dir := filepath.Join(input.Root, input.Name)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("environment module %q not found under %s: %w", input.Name, input.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("environment module %q is not a directory: %s", input.Name, dir)
	}

	if binDir := filepath.Join(dir, "bin"); dirExists(binDir) {
		deps.Env.Prepend("PATH", binDir, string(os.PathListSeparator))
	}
	if libDir := filepath.Join(dir, "lib"); dirExists(libDir) {
		deps.Env.Prepend("LD_LIBRARY_PATH", libDir, string(os.PathListSeparator))
	}

	logger.Info("Loaded environment module.", "module", input.Name, "dir", dir)
	return &Output{Dir: dir}, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Register registers the step definition and handler with the launcher.
func (m *Module) Register(r *registry.Registry) {
	emptyRoot := cty.StringVal("")
	r.RegisterStep(&config.StepDefinition{
		Type:        config.StepEnvModule,
		Description: "Load a named environment module into the launch environment.",
		Inputs: map[string]*config.InputDefinition{
			"name": {Name: "name", Type: cty.String},
			"root": {Name: "root", Type: cty.String, Default: &emptyRoot, Optional: true},
		},
	}, &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunEnvModule,
	})
}
