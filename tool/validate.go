package tool

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError reports the first argument that does not match a Schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Validate checks args against schema. Extra arguments are allowed.
func Validate(schema Schema, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(validationSchema(schema)), gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validate arguments: %w", err)
	}
	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	field := first.Field()
	if first.Type() == "required" {
		if p, ok := first.Details()["property"].(string); ok {
			field = p
		}
	}
	return &ValidationError{Field: field, Value: first.Value(), Message: first.Description()}
}

// validationSchema leaves out an empty required list, which draft-04 rejects.
func validationSchema(s Schema) map[string]any {
	m := s.Map()
	if len(s.Required) == 0 {
		delete(m, "required")
	}
	return m
}

// ApplyDefaults fills absent optional arguments with their declared defaults.
func ApplyDefaults(schema Schema, args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	for name, prop := range schema.Properties {
		if _, ok := args[name]; !ok && prop.Default != nil {
			args[name] = prop.Default
		}
	}
	return args
}
