package core

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNoContent is returned when a turn produced neither text nor tool usage.
var ErrNoContent = errors.New("no content received")

// Role identifies the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall is a model request to invoke a named tool. Arguments holds the raw
// JSON object text exactly as the provider produced it.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation transcript.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// SystemMessage builds a system message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// UserMessage builds a user message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// AssistantMessage builds an assistant message.
func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResultMessage builds the tool message answering callID.
func ToolResultMessage(callID, name, text string) Message {
	return Message{Role: RoleTool, Content: text, ToolCallID: callID, Name: name}
}

// IsEmpty reports whether the message carries neither text nor tool calls.
func (m Message) IsEmpty() bool { return m.Content == "" && len(m.ToolCalls) == 0 }

// NewID returns a new random identifier.
func NewID() string { return uuid.NewString() }
