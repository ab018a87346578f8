package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/internal/testutil"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/runner"
	"github.com/hupe1980/winemesh/tool"
)

const (
	triageInstructions  = "Determine which agent is best suited to handle the user's request, and transfer the conversation to that agent."
	refundsInstructions = "Help the user with a refund. If the reason is that it was too expensive, offer the user a refund code."
)

type fixture struct {
	model   *model.MockModel
	router  *Router
	logger  *testutil.RecordingLogger
	refunds *agent.Agent
}

func newFixture(t *testing.T, scripts ...model.Script) *fixture {
	t.Helper()
	m := model.NewMockModel("mock", scripts...)
	logger := &testutil.RecordingLogger{}

	triage := agent.New("Triage Agent", func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText(triageInstructions)
	})
	refunds := agent.New("Refunds Agent", func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText(refundsInstructions)
		o.Tools = []*agent.Tool{
			agent.NewTextTool("process_refund", "Refund an item.",
				tool.NewSchema().
					String("item_id", "The item id").
					String("reason", "Why", tool.Default("NOT SPECIFIED")).
					Build(),
				func(_ context.Context, c agent.Call) (string, error) {
					return "Refunded " + c.StringArg("item_id") + " (" + c.StringArg("reason") + ")", nil
				}),
			agent.NewTextTool("explode", "Panics.", tool.NewSchema().Build(),
				func(context.Context, agent.Call) (string, error) { panic("kaboom") }),
		}
	})
	sales := agent.New("Sales Agent", func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText("Be super enthusiastic about selling wine.")
	})

	r := New(runner.New(m), triage, []*agent.Agent{sales, refunds}, func(o *Options) { o.Logger = logger })
	return &fixture{model: m, router: r, logger: logger, refunds: refunds}
}

func TestTurn_HandoffToRefunds(t *testing.T) {
	f := newFixture(t,
		testutil.NewEventBuilder().
			Text("One moment, ").
			Call("transfer_to_refunds", "").
			Text("this must not appear").
			Boundary().
			Script(),
		model.Script{Message: core.AssistantMessage("Which item would you like refunded?")},
	)
	msgs := []core.Message{core.UserMessage("I want a refund")}

	res, err := f.router.Turn(context.Background(), TurnInput{Messages: msgs, Stream: true})
	require.NoError(t, err)

	assert.True(t, res.HandedOff)
	assert.Equal(t, "Refunds Agent", res.Agent)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "One moment, ", res.Chunks[0].Text)
	assert.Equal(t, "Using transfer_to_refunds...", res.Chunks[1].Text)
	assert.Equal(t, "Refunds Agent", res.Chunks[1].Tool.Handoff)
	assert.NotContains(t, res.Text(), "must not appear")

	first, _ := f.model.LastRequest()
	assert.Equal(t, triageInstructions, first.Messages[0].Content)
	assert.Len(t, f.model.Requests(), 1, "the model is called once per turn")

	next, err := f.router.Turn(context.Background(), TurnInput{Agent: res.Agent, Messages: msgs})
	require.NoError(t, err)
	assert.False(t, next.HandedOff)
	assert.Equal(t, "Refunds Agent", next.Agent)
	assert.Equal(t, "Which item would you like refunded?", next.Text())

	second, _ := f.model.LastRequest()
	assert.Equal(t, refundsInstructions, second.Messages[0].Content)

	var names []string
	for _, d := range second.Tools {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, agent.TransferBackToTriage)
}

func TestTurn_TextToolResultIsAttached(t *testing.T) {
	f := newFixture(t, testutil.NewEventBuilder().
		Call("process_refund", `{"item_id":"item_42"}`).
		Text("Done!").
		Boundary().
		Script())

	res, err := f.router.Turn(context.Background(), TurnInput{Agent: "Refunds Agent", Stream: true})
	require.NoError(t, err)

	require.Len(t, res.Chunks, 2)
	require.NotNil(t, res.Chunks[0].Tool)
	assert.Equal(t, "Refunded item_42 (NOT SPECIFIED)", res.Chunks[0].Tool.Result)
	assert.Equal(t, "Done!", res.Chunks[1].Text)
	assert.False(t, res.HandedOff)

	rec, ok := f.logger.Find("router.tool.executed")
	require.True(t, ok)
	assert.Equal(t, "process_refund", rec.Attrs["tool"])
	assert.Contains(t, rec.Attrs, "duration_ms")
}

func TestTurn_ToolFailuresDoNotAbortTurn(t *testing.T) {
	f := newFixture(t, testutil.NewEventBuilder().
		Call("process_refund", `{}`).
		Call("explode", `{}`).
		Call("unknown_tool", `{}`).
		Call("process_refund", `not json`).
		Script())

	res, err := f.router.Turn(context.Background(), TurnInput{Agent: "Refunds Agent", Stream: true})
	require.NoError(t, err)

	usages := assembler.Tools(res.Chunks)
	require.Len(t, usages, 4)
	assert.Contains(t, usages[0].Result, tool.CodeValidation)
	assert.Contains(t, usages[1].Result, "kaboom")
	assert.Contains(t, usages[2].Result, tool.CodeNotFound)
	assert.Contains(t, usages[3].Result, "invalid arguments")

	_, ok := f.logger.Find("router.tool.panic")
	assert.True(t, ok)
}

func TestTurn_NonStreamingToolCall(t *testing.T) {
	f := newFixture(t, model.Script{Message: core.AssistantMessage("",
		core.ToolCall{ID: "c1", Name: "transfer_to_sales", Arguments: "{}"})})

	res, err := f.router.Turn(context.Background(), TurnInput{Messages: []core.Message{core.UserMessage("buy wine")}})
	require.NoError(t, err)
	assert.True(t, res.HandedOff)
	assert.Equal(t, "Sales Agent", res.Agent)
	assert.Equal(t, "Using transfer_to_sales...", res.Text())
}

func TestTurn_TransferBackToTriage(t *testing.T) {
	f := newFixture(t, testutil.NewEventBuilder().Call(agent.TransferBackToTriage, "{}").Script())

	res, err := f.router.Turn(context.Background(), TurnInput{Agent: "Refunds Agent", Stream: true})
	require.NoError(t, err)
	assert.True(t, res.HandedOff)
	assert.Equal(t, "Triage Agent", res.Agent)
}

func TestTurn_UnknownAgentStartsAtTriage(t *testing.T) {
	f := newFixture(t)

	res, err := f.router.Turn(context.Background(), TurnInput{Agent: "Nobody", Messages: []core.Message{core.UserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "Triage Agent", res.Agent)
	assert.Equal(t, "Mock response to: hi", res.Text())
}

func TestTurn_NoContent(t *testing.T) {
	f := newFixture(t, testutil.NewEventBuilder().Boundary().Script())

	_, err := f.router.Turn(context.Background(), TurnInput{Stream: true})
	assert.ErrorIs(t, err, core.ErrNoContent)
}

func TestTurn_IdempotentOnDeterministicBackend(t *testing.T) {
	script := testutil.NewEventBuilder().Text("Try a ", "Barolo.").Boundary().Script()
	f := newFixture(t, script, script)
	in := TurnInput{Messages: []core.Message{core.UserMessage("red?")}, Stream: true}

	a, err := f.router.Turn(context.Background(), in)
	require.NoError(t, err)
	b, err := f.router.Turn(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, a.Chunks, b.Chunks)
	reqs := f.model.Requests()
	assert.Equal(t, reqs[0], reqs[1])
}

func TestNew_WiresTriage(t *testing.T) {
	f := newFixture(t)

	_, ok := f.router.Triage().Tool("transfer_to_refunds")
	assert.True(t, ok)
	_, ok = f.router.Triage().Tool("transfer_to_sales")
	assert.True(t, ok)
	_, ok = f.refunds.Tool(agent.TransferBackToTriage)
	assert.True(t, ok)
}
