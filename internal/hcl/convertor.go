package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter
// interface. Step handler structs declare their wiring with `glcl` tags.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeArgs applies evaluated argument values and declared defaults to
// the provided Go struct using reflection.
func (c *Converter) DecodeArgs(
	ctx context.Context,
	inputStruct any,
	args map[string]cty.Value,
	defs map[string]*config.InputDefinition,
) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting step argument decoding.")

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		lookupName := field.Name
		if tag := field.Tag.Get("glcl"); tag != "" {
			lookupName = strings.Split(tag, ",")[0]
		}

		inputDef, defExists := defs[lookupName]
		if !defExists {
			continue
		}

		targetPtr := fieldVal.Addr().Interface()

		if val, provided := args[lookupName]; provided {
			if err := c.decode(val, targetPtr); err != nil {
				return fmt.Errorf("failed to decode argument %q: %w", lookupName, err)
			}
			continue
		}

		if inputDef.Default == nil && !inputDef.Optional {
			return fmt.Errorf("missing required argument %q", lookupName)
		}
		if inputDef.Default != nil {
			if err := c.decode(*inputDef.Default, targetPtr); err != nil {
				return fmt.Errorf("failed to apply default for %q: %w", lookupName, err)
			}
		}
	}

	logger.Debug("Finished step argument decoding successfully.")
	return nil
}

// decode converts a cty.Value into the Go value behind the pointer,
// applying implicit cty conversions where needed.
func (c *Converter) decode(val cty.Value, goVal any) error {
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	return gocty.FromCtyValue(convertedVal, goVal)
}
