package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridlaunch/internal/config"
)

type goodInput struct {
	Path string `glcl:"path"`
}

func goodDefinition() *config.StepDefinition {
	return &config.StepDefinition{
		Type: "venv",
		Inputs: map[string]*config.InputDefinition{
			"path": {Name: "path", Type: cty.String},
		},
	}
}

func TestRegisterStepAndLookup(t *testing.T) {
	r := New()
	r.RegisterStep(goodDefinition(), &RegisteredStep{
		NewInput: func() any { return new(goodInput) },
	})

	_, ok := r.Handler("venv")
	assert.True(t, ok)
	def, ok := r.Definition("venv")
	require.True(t, ok)
	assert.Equal(t, "venv", def.Type)
}

func TestRegisterStepPanicsOnDuplicate(t *testing.T) {
	r := New()
	r.RegisterStep(goodDefinition(), &RegisteredStep{})
	assert.Panics(t, func() {
		r.RegisterStep(goodDefinition(), &RegisteredStep{})
	})
}

func TestValidatePassesOnParity(t *testing.T) {
	r := New()
	r.RegisterStep(goodDefinition(), &RegisteredStep{
		NewInput: func() any { return new(goodInput) },
	})
	assert.NoError(t, r.Validate(context.Background()))
}

func TestValidateCatchesUndeclaredStructField(t *testing.T) {
	type widerInput struct {
		Path  string `glcl:"path"`
		Extra string `glcl:"extra"`
	}

	r := New()
	r.RegisterStep(goodDefinition(), &RegisteredStep{
		NewInput: func() any { return new(widerInput) },
	})

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared in the definition")
}

func TestValidateCatchesMissingStructField(t *testing.T) {
	type emptyInput struct{}

	r := New()
	r.RegisterStep(goodDefinition(), &RegisteredStep{
		NewInput: func() any { return new(emptyInput) },
	})

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in Go struct")
}

func TestValidateCatchesTypeMismatch(t *testing.T) {
	type numberInput struct {
		Path int `glcl:"path"`
	}

	r := New()
	r.RegisterStep(goodDefinition(), &RegisteredStep{
		NewInput: func() any { return new(numberInput) },
	})

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")
}

func TestValidateAllowsHandlerWithoutInputs(t *testing.T) {
	r := New()
	r.RegisterStep(&config.StepDefinition{Type: "noop"}, &RegisteredStep{})
	assert.NoError(t, r.Validate(context.Background()))
}
