package app

import (
	"context"

	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/router"
)

// auditCallbacks records every tool call the agents make, including
// handoffs, so refunds and discounts can be traced per agent.
func auditCallbacks(logger logging.Logger) *router.Callbacks {
	return router.NewCallbacks().On(router.HookAfterTool, func(_ context.Context, ev *router.Event) error {
		logger.Info("audit.tool_call",
			"agent", ev.Agent,
			"tool", ev.Call.Name,
			"call_id", ev.Call.ID,
			"handoff", ev.Usage.Handoff,
			"failed", ev.Err != nil,
		)
		return nil
	})
}
