// Package envexport implements the 'env_export' step: setting extra
// variables in the launch environment.
package envexport

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/launch"
	"github.com/vk/gridlaunch/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the env_export step.
type Input struct {
	Vars map[string]string `glcl:"vars"`
}

// Deps declares the step's dependency on the shared launch environment.
type Deps struct {
	Env *launch.Environment
}

// Output lists the variable names that were set.
type Output struct {
	Keys []string
}

// OnRunEnvExport is the handler for the 'env_export' step.
func OnRunEnvExport(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	keys := make([]string, 0, len(input.Vars))
	for k, v := range input.Vars {
		deps.Env.Set(k, v)
		keys = append(keys, k)
	}

	logger.Info("Exported environment variables.", "count", len(keys))
	return &Output{Keys: keys}, nil
}

// Register registers the step definition and handler with the launcher.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(&config.StepDefinition{
		Type:        config.StepEnvExport,
		Description: "Set extra variables in the launch environment.",
		Inputs: map[string]*config.InputDefinition{
			"vars": {Name: "vars", Type: cty.Map(cty.String)},
		},
	}, &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunEnvExport,
	})
}
