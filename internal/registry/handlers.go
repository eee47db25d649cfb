package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/gridlaunch/internal/config"
)

// RegisteredStep holds the compiled Go parts of a step type: constructors
// for its input and dependency structs plus the handler function, which
// must have the shape func(ctx, *Deps, *Input) (*Output, error).
type RegisteredStep struct {
	NewInput func() any
	NewDeps  func() any
	Fn       any
}

// RegisterStep registers a step type's definition and Go handler. A
// duplicate registration is a programmer error and panics.
func (r *Registry) RegisterStep(def *config.StepDefinition, handler *RegisteredStep) {
	if _, exists := r.HandlerRegistry[def.Type]; exists {
		panic(fmt.Sprintf("step type '%s' already registered", def.Type))
	}
	slog.Debug("Registering step handler.", "type", def.Type)
	r.HandlerRegistry[def.Type] = handler
	r.DefinitionRegistry[def.Type] = def
}
