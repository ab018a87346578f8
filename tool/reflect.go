package tool

import (
	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{
	ExpandedStruct:            true,
	DoNotReference:            true,
	AllowAdditionalProperties: true,
}

// SchemaFor derives a Schema from an argument container struct. Fields tagged
// `json:",omitempty"` or carrying a `jsonschema:"default=..."` value are
// optional; descriptions come from `jsonschema:"description=..."`.
//
//	type refundArgs struct {
//		ItemID string `json:"item_id" jsonschema:"description=The item to refund"`
//		Reason string `json:"reason,omitempty" jsonschema:"default=NOT SPECIFIED"`
//	}
//	schema := tool.SchemaFor(refundArgs{})
func SchemaFor(v any) Schema {
	return fromJSONSchema(reflector.Reflect(v))
}

func fromJSONSchema(js *jsonschema.Schema) Schema {
	b := NewSchema()
	if js == nil || js.Properties == nil {
		return b.Build()
	}

	required := map[string]bool{}
	for _, r := range js.Required {
		required[r] = true
	}

	for pair := js.Properties.Oldest(); pair != nil; pair = pair.Next() {
		name, prop := pair.Key, pair.Value
		var opts []ParamOption
		if prop.Default != nil {
			opts = append(opts, Default(prop.Default))
		} else if !required[name] {
			opts = append(opts, Optional())
		}
		if len(prop.Enum) > 0 {
			values := make([]string, 0, len(prop.Enum))
			for _, e := range prop.Enum {
				if s, ok := e.(string); ok {
					values = append(values, s)
				}
			}
			if len(values) > 0 {
				opts = append(opts, Enum(values...))
			}
		}
		b.Param(name, prop.Type, prop.Description, opts...)
	}
	return b.Build()
}
