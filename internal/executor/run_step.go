package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/dag"
	"github.com/vk/gridlaunch/internal/launch"
)

var environmentType = reflect.TypeOf((*launch.Environment)(nil))

// runStepNode decodes a node's arguments, injects its dependencies, and
// calls the registered handler via reflection.
func (e *Executor) runStepNode(ctx context.Context, n *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("step", n.ID)
	logger.Info("▶️ Starting step")

	handler, ok := e.registry.Handler(n.Step.Type)
	if !ok {
		return fmt.Errorf("unknown step type '%s'", n.Step.Type)
	}
	def, _ := e.registry.Definition(n.Step.Type)

	var inputStruct any
	if handler.NewInput != nil {
		inputStruct = handler.NewInput()
		if err := e.converter.DecodeArgs(ctx, inputStruct, n.Step.Args, def.Inputs); err != nil {
			return fmt.Errorf("failed to decode arguments for step %s: %w", n.ID, err)
		}
	}

	depsStruct := e.buildDepsStruct(handler.NewDeps)

	logger.Debug("Calling step handler.", "type", n.Step.Type)
	handlerFunc := reflect.ValueOf(handler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(depsStruct)}

	if inputStruct == nil {
		callArgs = append(callArgs, reflect.Zero(handlerFunc.Type().In(2)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	results := handlerFunc.Call(callArgs)
	if errResult := results[1].Interface(); errResult != nil {
		return errResult.(error)
	}
	n.Output = results[0].Interface()

	logger.Info("✅ Finished step")
	return nil
}

// buildDepsStruct constructs a handler's dependency struct, injecting the
// run's shared launch environment into any *launch.Environment field.
func (e *Executor) buildDepsStruct(newDeps func() any) any {
	if newDeps == nil {
		return &struct{}{}
	}
	deps := newDeps()

	depsVal := reflect.ValueOf(deps).Elem()
	for i := 0; i < depsVal.NumField(); i++ {
		field := depsVal.Field(i)
		if field.CanSet() && field.Type() == environmentType {
			field.Set(reflect.ValueOf(e.env))
		}
	}
	return deps
}
