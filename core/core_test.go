package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, RoleSystem, SystemMessage("be brief").Role)
	assert.Equal(t, RoleUser, UserMessage("hi").Role)

	am := AssistantMessage("", ToolCall{ID: "c1", Name: "transfer_to_refunds", Arguments: "{}"})
	assert.Equal(t, RoleAssistant, am.Role)
	assert.False(t, am.IsEmpty())
	assert.True(t, AssistantMessage("").IsEmpty())

	tr := ToolResultMessage("c1", "apply_discount", "Applied discount of 11%")
	assert.Equal(t, RoleTool, tr.Role)
	assert.Equal(t, "c1", tr.ToolCallID)
}

func TestMessageJSON(t *testing.T) {
	raw, err := json.Marshal(UserMessage("I want a refund"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"I want a refund"}`, string(raw))

	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":"ok","tool_calls":[{"name":"x","arguments":"{}"}]}`), &m))
	assert.True(t, m.Role.Valid())
	assert.Len(t, m.ToolCalls, 1)
	assert.False(t, Role("robot").Valid())
}

func TestVariables(t *testing.T) {
	v := Variables{"user_id": 7, "name": "Ada", "nil": nil}
	assert.Equal(t, "7", v.String("user_id"))
	assert.Equal(t, "Ada", v.String("name"))
	assert.Equal(t, "", v.String("nil"))
	assert.Equal(t, "", v.String("missing"))

	c := v.Clone()
	c["extra"] = true
	_, ok := v["extra"]
	assert.False(t, ok)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
