package router

import (
	"context"

	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/core"
)

// Hook names the point in a turn at which callbacks run.
type Hook string

const (
	// HookBeforeTool runs before a tool call is dispatched. An error rejects
	// the call; the error text becomes the tool result.
	HookBeforeTool Hook = "before_tool"
	// HookAfterTool runs after a tool call produced a usage, failed or not.
	HookAfterTool Hook = "after_tool"
	// HookHandoff runs when a tool hands the conversation to another agent.
	HookHandoff Hook = "handoff"
)

// Event carries what a callback may inspect. Usage is empty for
// HookBeforeTool.
type Event struct {
	Hook  Hook
	Agent string
	Call  core.ToolCall
	Usage assembler.ToolUsage
	Err   error
}

// Callback observes a turn. Errors returned from HookAfterTool and
// HookHandoff callbacks are logged and otherwise ignored.
type Callback func(ctx context.Context, ev *Event) error

// Callbacks is a registry of callbacks per hook, run in registration order.
// Register everything before the router serves turns.
type Callbacks struct {
	byHook map[Hook][]Callback
}

// NewCallbacks returns an empty registry.
func NewCallbacks() *Callbacks {
	return &Callbacks{byHook: make(map[Hook][]Callback)}
}

// On registers fn for h.
func (c *Callbacks) On(h Hook, fn Callback) *Callbacks {
	c.byHook[h] = append(c.byHook[h], fn)
	return c
}

// Len reports how many callbacks are registered for h.
func (c *Callbacks) Len(h Hook) int {
	if c == nil {
		return 0
	}
	return len(c.byHook[h])
}

// run stops at the first failing callback. A nil registry is a no-op.
func (c *Callbacks) run(ctx context.Context, ev *Event) error {
	if c == nil {
		return nil
	}
	for _, fn := range c.byHook[ev.Hook] {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
