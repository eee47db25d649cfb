package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/gridlaunch/internal/ctxlog"
)

// Validate performs a strict parity check between step definitions and
// their Go handlers. It checks both the presence of inputs and the
// compatibility of their types, so a drifting handler struct is caught
// at startup instead of mid-run.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for stepType, def := range r.DefinitionRegistry {
		handler := r.HandlerRegistry[stepType]

		if handler.NewInput == nil {
			if len(def.Inputs) > 0 {
				errs = append(errs, fmt.Sprintf("step '%s': definition declares inputs, but Go handler has no input struct", stepType))
			}
			continue
		}

		inputType := reflect.TypeOf(handler.NewInput()).Elem()

		goInputs := make(map[string]reflect.StructField)
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := field.Tag.Get("glcl")
			tagName := strings.Split(tag, ",")[0]
			if tagName != "" && tagName != "-" {
				goInputs[tagName] = field
			}
		}

		// Presence mismatches in either direction.
		for name := range goInputs {
			if _, ok := def.Inputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("step '%s': Go struct has field for input '%s' which is not declared in the definition", stepType, name))
			}
		}
		for name := range def.Inputs {
			if _, ok := goInputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("step '%s': definition declares input '%s' which is not found in Go struct", stepType, name))
			}
		}

		// Type mismatches.
		for name, inputDef := range def.Inputs {
			goField, ok := goInputs[name]
			if !ok {
				continue
			}

			if inputDef.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Step input declared with dynamic type, static type checking disabled.", "step", stepType, "input", name)
				continue
			}

			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("step '%s', input '%s': could not imply cty type from Go field type %s: %v", stepType, name, goField.Type, err))
				continue
			}

			if !inputDef.Type.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("step '%s', input '%s': type mismatch, definition requires '%s' but Go field '%s' provides '%s'",
					stepType, name, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
