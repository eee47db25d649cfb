package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads job files from the given paths and translates them into
	// the format-agnostic model, returning a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the interface for a format-specific data binding
// implementation. It bridges raw step arguments and the Go input structs
// used by step handlers.
type Converter interface {
	// DecodeArgs populates a step handler's input struct from evaluated
	// argument values, applying declared defaults and required checks.
	DecodeArgs(
		ctx context.Context,
		inputStruct any,
		args map[string]cty.Value,
		defs map[string]*InputDefinition,
	) error
}
