package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/tool"
)

// Outcome is the result of invoking a Tool: either a TextResult or a Handoff.
// The set is closed; switch on the concrete type.
type Outcome interface {
	isOutcome()
}

// TextResult is a domain-level tool result returned to the caller.
type TextResult struct {
	Text string
}

// Handoff transfers the conversation to Agent for the next turn.
type Handoff struct {
	Agent *Agent
}

func (TextResult) isOutcome() {}
func (Handoff) isOutcome()    {}

// Text is shorthand for a TextResult outcome.
func Text(s string) Outcome { return TextResult{Text: s} }

// Call carries the validated arguments of one tool invocation.
type Call struct {
	ID   string
	Args map[string]any
	Vars core.Variables
}

// StringArg returns args[name] as a string, or "" when absent.
func (c Call) StringArg(name string) string {
	if v, ok := c.Args[name].(string); ok {
		return v
	}
	return ""
}

// Handler implements a tool.
type Handler func(ctx context.Context, call Call) (Outcome, error)

// Tool binds a declared schema to its implementation.
type Tool struct {
	definition tool.Definition
	handler    Handler
}

// NewTool constructs a Tool from an explicit schema and handler.
//
//	refund := agent.NewTool("process_refund", "Refund an item.",
//		tool.NewSchema().
//			String("item_id", "Item id of the form item_...").
//			String("reason", "Refund reason", tool.Default("NOT SPECIFIED")).
//			Build(),
//		func(ctx context.Context, c agent.Call) (agent.Outcome, error) {
//			return agent.Text("Success!"), nil
//		})
func NewTool(name, description string, params tool.Schema, h Handler) *Tool {
	return &Tool{definition: tool.NewDefinition(name, description, params), handler: h}
}

// NewTextTool wraps a handler that always produces text.
func NewTextTool(name, description string, params tool.Schema, fn func(ctx context.Context, call Call) (string, error)) *Tool {
	return NewTool(name, description, params, func(ctx context.Context, call Call) (Outcome, error) {
		s, err := fn(ctx, call)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	})
}

// Name returns the tool name advertised to models.
func (t *Tool) Name() string { return t.definition.Name }

// Definition returns the schema object attached to model requests.
func (t *Tool) Definition() tool.Definition { return t.definition }

// Invoke applies defaults, validates the arguments and runs the handler.
// Failures are reported as *tool.Error with VALIDATION_ERROR or
// EXECUTION_ERROR codes; a *tool.Error returned by the handler is forwarded.
func (t *Tool) Invoke(ctx context.Context, call Call) (Outcome, error) {
	call.Args = tool.ApplyDefaults(t.definition.Parameters, call.Args)

	if err := tool.Validate(t.definition.Parameters, call.Args); err != nil {
		return nil, &tool.Error{
			Tool:    t.Name(),
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    tool.CodeValidation,
			Details: err,
		}
	}

	out, err := t.handler(ctx, call)
	if err != nil {
		var toolErr *tool.Error
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		return nil, &tool.Error{Tool: t.Name(), Message: err.Error(), Code: tool.CodeExecution}
	}
	if out == nil {
		out = Text("")
	}
	return out, nil
}
