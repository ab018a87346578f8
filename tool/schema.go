package tool

import "strings"

// Property describes one parameter of a tool.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Schema is the JSON-schema object describing a tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// IsRequired reports whether name is listed in Required.
func (s Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Map renders the schema as a generic map, the shape provider SDKs accept.
func (s Schema) Map() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": s.PropertiesMap(),
		"required":   append([]string{}, s.Required...),
	}
}

// PropertiesMap renders only the properties object.
func (s Schema) PropertiesMap() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		m := map[string]any{"type": p.Type}
		if p.Description != "" {
			m["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			m["enum"] = append([]string{}, p.Enum...)
		}
		if p.Default != nil {
			m["default"] = p.Default
		}
		props[name] = m
	}
	return props
}

// NormalizeType maps a declared type name onto a JSON-schema primitive.
// Empty and unrecognized names degrade to "string".
func NormalizeType(typ string) string {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "string", "str", "text":
		return "string"
	case "integer", "int", "int32", "int64", "uint":
		return "integer"
	case "number", "float", "float32", "float64", "double", "decimal":
		return "number"
	case "boolean", "bool":
		return "boolean"
	case "array", "list", "slice", "tuple":
		return "array"
	case "object", "dict", "map":
		return "object"
	default:
		return "string"
	}
}

type paramConfig struct {
	optional bool
	def      any
	enum     []string
}

// ParamOption customizes a parameter declared on a Builder.
type ParamOption func(*paramConfig)

// Optional keeps the parameter out of the required list.
func Optional() ParamOption { return func(c *paramConfig) { c.optional = true } }

// Default records a default value; parameters with a default are optional.
func Default(v any) ParamOption {
	return func(c *paramConfig) {
		c.optional = true
		c.def = v
	}
}

// Enum restricts the accepted values.
func Enum(values ...string) ParamOption { return func(c *paramConfig) { c.enum = values } }

// Builder declares a Schema parameter by parameter. Parameters are required
// unless declared Optional or with a Default.
//
//	schema := tool.NewSchema().
//		String("item_id", "The item to refund").
//		String("reason", "Why the refund is requested", tool.Default("NOT SPECIFIED")).
//		Build()
type Builder struct {
	props    map[string]Property
	required []string
}

// NewSchema starts an empty object schema.
func NewSchema() *Builder {
	return &Builder{props: map[string]Property{}}
}

// Param declares a parameter of the given type name (see NormalizeType).
func (b *Builder) Param(name, typ, description string, opts ...ParamOption) *Builder {
	var cfg paramConfig
	for _, fn := range opts {
		fn(&cfg)
	}
	if _, exists := b.props[name]; exists {
		b.dropRequired(name)
	}
	b.props[name] = Property{
		Type:        NormalizeType(typ),
		Description: description,
		Enum:        cfg.enum,
		Default:     cfg.def,
	}
	if !cfg.optional {
		b.required = append(b.required, name)
	}
	return b
}

// String declares a string parameter.
func (b *Builder) String(name, description string, opts ...ParamOption) *Builder {
	return b.Param(name, "string", description, opts...)
}

// Integer declares an integer parameter.
func (b *Builder) Integer(name, description string, opts ...ParamOption) *Builder {
	return b.Param(name, "integer", description, opts...)
}

// Number declares a number parameter.
func (b *Builder) Number(name, description string, opts ...ParamOption) *Builder {
	return b.Param(name, "number", description, opts...)
}

// Boolean declares a boolean parameter.
func (b *Builder) Boolean(name, description string, opts ...ParamOption) *Builder {
	return b.Param(name, "boolean", description, opts...)
}

func (b *Builder) dropRequired(name string) {
	out := b.required[:0]
	for _, r := range b.required {
		if r != name {
			out = append(out, r)
		}
	}
	b.required = out
}

// Build returns the finished schema. Required is never nil.
func (b *Builder) Build() Schema {
	props := make(map[string]Property, len(b.props))
	for k, v := range b.props {
		props[k] = v
	}
	return Schema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{}, b.required...),
	}
}
