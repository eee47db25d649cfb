package registry

import (
	"github.com/vk/gridlaunch/internal/config"
)

// Module is the interface every built-in step package implements to be
// registered with the launcher.
type Module interface {
	Register(r *Registry)
}

// Registry holds the step definitions and their Go handlers for a single
// application instance.
type Registry struct {
	HandlerRegistry    map[string]*RegisteredStep
	DefinitionRegistry map[string]*config.StepDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:    make(map[string]*RegisteredStep),
		DefinitionRegistry: make(map[string]*config.StepDefinition),
	}
}

// Definition returns the declared argument contract for a step type.
func (r *Registry) Definition(stepType string) (*config.StepDefinition, bool) {
	def, ok := r.DefinitionRegistry[stepType]
	return def, ok
}

// Handler returns the registered Go handler for a step type.
func (r *Registry) Handler(stepType string) (*RegisteredStep, bool) {
	h, ok := r.HandlerRegistry[stepType]
	return h, ok
}
