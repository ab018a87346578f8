package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/tool"
	"github.com/hupe1980/winemesh/wine"
)

// Agent names.
const (
	TriageAgent    = "Triage Agent"
	SommelierAgent = "Sommelier Agent"
	SalesAgent     = "Sales Agent"
	RefundsAgent   = "Refunds Agent"
)

// Context variable keys.
const (
	VarCollection = "wine_collection"
	VarWines      = "wines"
	VarUsername   = "username"
)

const (
	triageInstructions = "Determine which agent is best suited to handle the user's request, and transfer the conversation to that agent."

	sommelierInstructions = `You are a friendly sommelier for {{default "the user" .username}}.
Recommend wines, pairings and drinking windows. Prefer bottles the user already owns.
{{if .wine_collection}}The user's cellar:
{{.wine_collection}}{{else}}The user's cellar is unknown; ask about their taste instead.{{end}}`

	salesInstructions = "Be super enthusiastic about selling wine."

	refundsInstructions = "Help the user with a refund. If the reason is that it was too expensive, offer the user a refund code. If they insist, then process the refund."
)

// Agents builds the triage agent and its peers, all on modelName. Handoff
// tools are wired by the router.
func Agents(modelName string, logger logging.Logger) (*agent.Agent, []*agent.Agent) {
	triage := agent.New(TriageAgent, func(o *agent.Options) {
		o.Model = modelName
		o.Instruction = agent.NewInstructionFromText(triageInstructions)
	})

	sommelier := agent.New(SommelierAgent, func(o *agent.Options) {
		o.Model = modelName
		o.Instruction = agent.NewInstructionFromText(sommelierInstructions)
		o.Tools = []*agent.Tool{listWinesTool()}
	})

	discount := applyDiscountTool(logger)

	sales := agent.New(SalesAgent, func(o *agent.Options) {
		o.Model = modelName
		o.Instruction = agent.NewInstructionFromText(salesInstructions)
		o.Tools = []*agent.Tool{discount}
	})

	refunds := agent.New(RefundsAgent, func(o *agent.Options) {
		o.Model = modelName
		o.Instruction = agent.NewInstructionFromText(refundsInstructions)
		o.Tools = []*agent.Tool{processRefundTool(logger), discount}
	})

	return triage, []*agent.Agent{sommelier, sales, refunds}
}

type refundArgs struct {
	ItemID string `json:"item_id" jsonschema_description:"The id of the item to refund, of the form item_..."`
	Reason string `json:"reason,omitempty" jsonschema:"default=NOT SPECIFIED" jsonschema_description:"Why the item is refunded"`
}

type listWinesArgs struct {
	Country string `json:"country,omitempty" jsonschema_description:"Only wines from this country"`
	Grape   string `json:"grape,omitempty" jsonschema_description:"Only wines containing this grape"`
}

func processRefundTool(logger logging.Logger) *agent.Tool {
	return agent.NewTextTool(
		"process_refund",
		"Refund an item. Make sure you have the item_id of the form item_... Ask for user confirmation before processing the refund.",
		tool.SchemaFor(refundArgs{}),
		func(_ context.Context, c agent.Call) (string, error) {
			logger.Info("chat.refund.processed", "item_id", c.StringArg("item_id"), "reason", c.StringArg("reason"))
			return "Success!", nil
		},
	)
}

func applyDiscountTool(logger logging.Logger) *agent.Tool {
	return agent.NewTextTool(
		"apply_discount",
		"Apply a discount to the user's cart.",
		tool.NewSchema().Build(),
		func(context.Context, agent.Call) (string, error) {
			logger.Info("chat.discount.applied", "percent", 11)
			return "Applied discount of 11%", nil
		},
	)
}

func listWinesTool() *agent.Tool {
	return agent.NewTextTool(
		"list_wines",
		"List the wines in the user's cellar, optionally filtered by country and grape.",
		tool.SchemaFor(listWinesArgs{}),
		func(_ context.Context, c agent.Call) (string, error) {
			wines, _ := c.Vars[VarWines].([]wine.Record)
			return listWines(wines, c.StringArg("country"), c.StringArg("grape")), nil
		},
	)
}

func listWines(wines []wine.Record, country, grape string) string {
	var b strings.Builder
	for _, w := range wines {
		if country != "" && !strings.EqualFold(w.Country, country) {
			continue
		}
		if grape != "" && !strings.Contains(strings.ToLower(w.Grapes), strings.ToLower(grape)) {
			continue
		}
		fmt.Fprintf(&b, "- %s, %s %d (%s, %s): %d bottle(s)\n", w.Name, w.Producer, w.Year, w.Region, w.Country, w.Quantity)
	}
	if b.Len() == 0 {
		return "No matching wines in the cellar."
	}
	return b.String()
}
