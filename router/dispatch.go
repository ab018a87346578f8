package router

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/tool"
)

// Dispatch executes one tool call on behalf of a. Arguments are decoded from
// JSON (empty means no arguments) and validated by the tool. A panicking
// handler is recovered into an execution error.
func Dispatch(ctx context.Context, logger logging.Logger, a *agent.Agent, call core.ToolCall, vars core.Variables) (outcome agent.Outcome, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("router.tool.panic", "agent", a.Name(), "tool", call.Name, "recover", r, "stack", string(debug.Stack()))
			outcome, err = nil, tool.NewError(call.Name, fmt.Sprintf("panic: %v", r), tool.CodeExecution)
		}
		logger.Info(
			"router.tool.executed",
			"agent", a.Name(),
			"tool", call.Name,
			"tool_call_id", call.ID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err != nil,
		)
	}()

	t, ok := a.Tool(call.Name)
	if !ok {
		return nil, tool.NewError(call.Name, "tool not found on "+a.Name(), tool.CodeNotFound)
	}

	args, err := decodeArgs(call.Arguments)
	if err != nil {
		return nil, tool.NewError(call.Name, err.Error(), tool.CodeValidation)
	}

	return t.Invoke(ctx, agent.Call{ID: call.ID, Args: args, Vars: vars})
}

func decodeArgs(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
