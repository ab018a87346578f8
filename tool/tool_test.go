package tool

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Builder --------------------

func TestBuilder_DefaultsAreOptional(t *testing.T) {
	schema := NewSchema().
		String("item_id", "The item to refund").
		String("reason", "Why the refund is requested", Default("NOT SPECIFIED")).
		Build()

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"item_id"}, schema.Required)
	assert.True(t, schema.IsRequired("item_id"))
	assert.False(t, schema.IsRequired("reason"))
	assert.Equal(t, "NOT SPECIFIED", schema.Properties["reason"].Default)
}

func TestBuilder_EmptySchemaHasEmptyRequired(t *testing.T) {
	raw, err := json.Marshal(NewDefinition("apply_discount", "", Schema{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "apply_discount",
		"description": "",
		"parameters": {"type": "object", "properties": {}, "required": []}
	}`, string(raw))
}

func TestBuilder_RedeclareReplacesRequiredness(t *testing.T) {
	schema := NewSchema().
		Integer("year", "Vintage").
		Integer("year", "Vintage", Optional()).
		Build()
	assert.Empty(t, schema.Required)
	assert.Equal(t, "integer", schema.Properties["year"].Type)
}

func TestNormalizeType(t *testing.T) {
	cases := map[string]string{
		"":        "string",
		"str":     "string",
		"int":     "integer",
		"float":   "number",
		"bool":    "boolean",
		"list":    "array",
		"dict":    "object",
		"Decimal": "number",
		"Wine":    "string",
		"complex": "string",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeType(in), in)
	}
}

func TestSchemaMap(t *testing.T) {
	m := NewSchema().
		String("country", "Country filter", Optional(), Enum("France", "Italy")).
		Build().
		Map()

	props := m["properties"].(map[string]any)
	country := props["country"].(map[string]any)
	assert.Equal(t, "string", country["type"])
	assert.Equal(t, []string{"France", "Italy"}, country["enum"])
	assert.Equal(t, []string{}, m["required"])
}

// -------------------- Reflection --------------------

type refundArgs struct {
	ItemID string  `json:"item_id" jsonschema:"description=The item to refund"`
	Reason string  `json:"reason,omitempty" jsonschema:"default=NOT SPECIFIED"`
	Amount float64 `json:"amount,omitempty"`
	Count  int     `json:"count"`
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(refundArgs{})

	assert.ElementsMatch(t, []string{"item_id", "count"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["item_id"].Type)
	assert.Equal(t, "The item to refund", schema.Properties["item_id"].Description)
	assert.Equal(t, "number", schema.Properties["amount"].Type)
	assert.Equal(t, "integer", schema.Properties["count"].Type)
	assert.Equal(t, "NOT SPECIFIED", schema.Properties["reason"].Default)
}

// -------------------- Validation --------------------

func TestValidate(t *testing.T) {
	schema := NewSchema().
		String("item_id", "").
		Integer("qty", "", Optional()).
		String("mode", "", Optional(), Enum("full", "partial")).
		Build()

	assert.NoError(t, Validate(schema, map[string]any{"item_id": "item_1", "qty": float64(2)}))
	assert.NoError(t, Validate(schema, map[string]any{"item_id": "item_1", "extra": true}))

	err := Validate(schema, map[string]any{})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "item_id", vErr.Field)

	err = Validate(schema, map[string]any{"item_id": "x", "qty": 1.5})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "qty", vErr.Field)

	err = Validate(schema, map[string]any{"item_id": "x", "mode": "half"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "mode", vErr.Field)
	assert.Equal(t, "half", vErr.Value)

	assert.NoError(t, Validate(NewSchema().Build(), nil))
}

func TestValidate_TypeMismatch(t *testing.T) {
	schema := NewSchema().String("item_id", "").Boolean("gift", "", Optional()).Build()

	err := Validate(schema, map[string]any{"item_id": 42})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "item_id", vErr.Field)
	assert.Contains(t, vErr.Message, "string")

	err = Validate(schema, map[string]any{"item_id": "item_1", "gift": "yes"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "gift", vErr.Field)
}

func TestApplyDefaults(t *testing.T) {
	schema := NewSchema().
		String("item_id", "").
		String("reason", "", Default("NOT SPECIFIED")).
		Build()

	args := ApplyDefaults(schema, map[string]any{"item_id": "item_9"})
	assert.Equal(t, "NOT SPECIFIED", args["reason"])

	args = ApplyDefaults(schema, map[string]any{"item_id": "item_9", "reason": "too expensive"})
	assert.Equal(t, "too expensive", args["reason"])

	assert.NotNil(t, ApplyDefaults(schema, nil))
}

func TestError(t *testing.T) {
	err := NewError("process_refund", "boom", CodeExecution)
	assert.Equal(t, "tool error [EXECUTION_ERROR] in process_refund: boom", err.Error())
	assert.Equal(t, "tool error in x: y", (&Error{Tool: "x", Message: "y"}).Error())
}
