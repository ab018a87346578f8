package agent

import (
	"context"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/hupe1980/winemesh/tool"
)

// TransferBackToTriage is the name of the reciprocal tool installed on peers.
const TransferBackToTriage = "transfer_back_to_triage"

const transferBackDescription = "Call this function if a user is asking about a topic that is not handled by the current agent."

// HandoffToolName derives the transfer tool name for target, e.g.
// "Refunds Agent" becomes "transfer_to_refunds".
func HandoffToolName(target *Agent) string {
	name := strings.TrimSpace(target.Name())
	if trimmed := strings.TrimSuffix(name, " Agent"); trimmed != "" {
		name = trimmed
	}
	return "transfer_to_" + strcase.ToSnake(name)
}

// NewHandoffTool builds a zero-argument tool that hands the conversation to target.
func NewHandoffTool(name, description string, target *Agent) *Tool {
	if description == "" {
		description = "Transfer the conversation to the " + target.Name() + "."
	}
	return NewTool(name, description, tool.NewSchema().Build(), func(context.Context, Call) (Outcome, error) {
		return Handoff{Agent: target}, nil
	})
}

// WireTriage gives triage one transfer tool per peer and gives every peer a
// transfer_back_to_triage tool. Calling it twice is harmless.
func WireTriage(triage *Agent, peers ...*Agent) {
	back := NewHandoffTool(TransferBackToTriage, transferBackDescription, triage)
	for _, p := range peers {
		if p == triage {
			continue
		}
		triage.AddTools(NewHandoffTool(HandoffToolName(p), "", p))
		p.AddTools(back)
	}
}
