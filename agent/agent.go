package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/tool"
)

// ToolChoice is the tool-selection policy sent with each request.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// Options configures an Agent instance.
type Options struct {
	Model       string
	Instruction Instruction
	Tools       []*Tool
	ToolChoice  ToolChoice
}

// Agent is a named configuration of model identifier, instructions and tools.
type Agent struct {
	name        string
	model       string
	instruction Instruction
	toolChoice  ToolChoice

	mu    sync.RWMutex
	tools []*Tool
}

// New creates an agent. The tool choice defaults to auto.
func New(name string, optFns ...func(o *Options)) *Agent {
	opts := Options{ToolChoice: ToolChoiceAuto}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{
		name:        name,
		model:       opts.Model,
		instruction: opts.Instruction,
		toolChoice:  opts.ToolChoice,
		tools:       append([]*Tool(nil), opts.Tools...),
	}
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Model returns the model identifier, empty to use the provider default.
func (a *Agent) Model() string { return a.model }

// Instruction returns the agent instructions.
func (a *Agent) Instruction() Instruction { return a.instruction }

// SystemPrompt resolves the instructions against vars.
func (a *Agent) SystemPrompt(ctx context.Context, vars core.Variables) (string, error) {
	text, err := a.instruction.Resolve(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("resolve instructions of %s: %w", a.name, err)
	}
	return text, nil
}

// AddTools appends tools after construction. Tools whose name is already
// registered are skipped so wiring stays idempotent.
func (a *Agent) AddTools(tools ...*Tool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range tools {
		if a.findLocked(t.Name()) == nil {
			a.tools = append(a.tools, t)
		}
	}
}

// Tools returns a snapshot of the registered tools in declaration order.
func (a *Agent) Tools() []*Tool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Tool(nil), a.tools...)
}

// Tool looks a tool up by name.
func (a *Agent) Tool(name string) (*Tool, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t := a.findLocked(name)
	return t, t != nil
}

func (a *Agent) findLocked(name string) *Tool {
	for _, t := range a.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Definitions returns the tool schemas advertised to the model.
func (a *Agent) Definitions() []tool.Definition {
	tools := a.Tools()
	defs := make([]tool.Definition, len(tools))
	for i, t := range tools {
		defs[i] = t.Definition()
	}
	return defs
}

// EffectiveToolChoice returns the policy to send, or "" when the agent has
// no tools and the field must be omitted.
func (a *Agent) EffectiveToolChoice() ToolChoice {
	if len(a.Tools()) == 0 {
		return ""
	}
	if a.toolChoice == "" {
		return ToolChoiceAuto
	}
	return a.toolChoice
}
