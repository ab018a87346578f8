package model

import (
	"context"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/tool"
)

// Request is one completion request. Messages already contain the system
// message; providers must not synthesize their own.
type Request struct {
	Model       string            `json:"model"`
	Messages    []core.Message    `json:"messages"`
	Tools       []tool.Definition `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   int64             `json:"max_tokens,omitempty"`
}

// SystemPrompt returns the concatenated text of all system messages.
func (r Request) SystemPrompt() string {
	var out string
	for _, m := range r.Messages {
		if m.Role != core.RoleSystem || m.Content == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}

// Usage reports token consumption when the provider returns it.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Response is a complete (non-streamed) assistant answer.
type Response struct {
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "groq", "openai", "anthropic", "google", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the runner to drive generation.
type Model interface {
	// Generate performs one request and returns the assistant message.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Stream performs one streamed request. The returned Stream must be
	// drained or closed by the caller.
	Stream(ctx context.Context, req Request) (Stream, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 { return &v }
