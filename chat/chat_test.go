package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/internal/testutil"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/wine"
)

type fakeCellar struct {
	records []wine.Record
	err     error
	calls   int
}

func (f *fakeCellar) Collection(context.Context, int64) ([]wine.Record, error) {
	f.calls++
	return f.records, f.err
}

var cellar = []wine.Record{
	{Username: "anna", Name: "Barolo Cannubi", Producer: "Brezza", Grapes: "Nebbiolo", Country: "Italy", Region: "Piedmont", Year: 2016, Quantity: 3, Price: decimal.NewFromInt(62)},
	{Username: "anna", Name: "Rioja Reserva", Producer: "Muga", Grapes: "Tempranillo", Country: "Spain", Region: "Rioja", Year: 2017, Quantity: 1, Price: decimal.NewFromInt(25)},
}

func TestReply_TriageHandsOffToRefunds(t *testing.T) {
	m := model.NewMockModel("mock",
		testutil.NewEventBuilder().Call("transfer_to_refunds", "{}").Script(),
		testutil.NewEventBuilder().Text("Which item?").Boundary().Script(),
	)
	svc := New(m)

	resp, err := svc.Reply(context.Background(), Request{Message: "I want a refund"})
	require.NoError(t, err)
	assert.Equal(t, RefundsAgent, resp.Agent)
	assert.True(t, resp.HandedOff)
	assert.Equal(t, "Using transfer_to_refunds...", resp.Response)

	req, _ := m.LastRequest()
	assert.Equal(t, "llama-3.1-70b-versatile", req.Model)
	assert.Equal(t, triageInstructions, req.Messages[0].Content)

	resp, err = svc.Reply(context.Background(), Request{Message: "the wine glass", Agent: resp.Agent})
	require.NoError(t, err)
	assert.Equal(t, "Which item?", resp.Response)

	req, _ = m.LastRequest()
	assert.Equal(t, refundsInstructions, req.Messages[0].Content)
}

func TestReply_SommelierSeesCellar(t *testing.T) {
	m := model.NewMockModel("mock",
		testutil.NewEventBuilder().Call("list_wines", `{"country":"italy"}`).Text("Open the Barolo.").Boundary().Script(),
	)
	store := &fakeCellar{records: cellar}
	svc := New(m, func(o *Options) { o.Collections = store })

	resp, err := svc.Reply(context.Background(), Request{Message: "what should I open tonight?", UserID: 1, Agent: SommelierAgent})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	req, _ := m.LastRequest()
	sys := req.Messages[0].Content
	assert.Contains(t, sys, "sommelier for anna")
	assert.Contains(t, sys, "The collection holds 4 bottles across 2 wines.")

	tools := assembler.Tools(resp.Chunks)
	require.Len(t, tools, 1)
	assert.Contains(t, tools[0].Result, "Barolo Cannubi")
	assert.NotContains(t, tools[0].Result, "Rioja")
	assert.Equal(t, "Using list_wines...Open the Barolo.", resp.Response)
}

func TestReply_CollectionFailureIsNotFatal(t *testing.T) {
	store := &fakeCellar{err: errors.New("db down")}
	svc := New(model.NewMockModel("mock"), func(o *Options) { o.Collections = store })

	resp, err := svc.Reply(context.Background(), Request{Message: "hi", UserID: 1, Agent: SommelierAgent})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", resp.Response)
}

func TestReply_History(t *testing.T) {
	m := model.NewMockModel("mock")
	svc := New(m)

	_, err := svc.Reply(context.Background(), Request{
		Message: "and a white?",
		History: []core.Message{core.UserMessage("a red?"), core.AssistantMessage("Barolo.")},
	})
	require.NoError(t, err)

	req, _ := m.LastRequest()
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "and a white?", req.Messages[3].Content)
}

func TestReply_Errors(t *testing.T) {
	svc := New(model.NewMockModel("mock", testutil.NewEventBuilder().Boundary().Script()))

	_, err := svc.Reply(context.Background(), Request{Message: "  "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Reply(context.Background(), Request{Message: "hello"})
	assert.ErrorIs(t, err, core.ErrNoContent)
}

func TestReplyStream(t *testing.T) {
	m := model.NewMockModel("mock", testutil.NewEventBuilder().Text("Sal", "ute!").Boundary().Text("Cheers").Script())
	var got []string

	resp, err := New(m).ReplyStream(context.Background(), Request{Message: "hi", Agent: SalesAgent}, func(c assembler.Chunk) error {
		got = append(got, c.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, SalesAgent, resp.Agent)
	assert.Equal(t, []string{"Salute!", "Cheers"}, got)
}

func TestRefundTools(t *testing.T) {
	m := model.NewMockModel("mock", testutil.NewEventBuilder().
		Call("process_refund", `{"item_id":"item_9"}`).
		Call("apply_discount", "").
		Script())

	resp, err := New(m).Reply(context.Background(), Request{Message: "refund item_9", Agent: RefundsAgent})
	require.NoError(t, err)

	tools := assembler.Tools(resp.Chunks)
	require.Len(t, tools, 2)
	assert.Equal(t, "Success!", tools[0].Result)
	assert.Equal(t, "Applied discount of 11%", tools[1].Result)
}

func TestToolSchemas(t *testing.T) {
	_, peers := Agents("m", logging.NoOpLogger{})
	var refunds, sommelier *agent.Agent
	for _, p := range peers {
		switch p.Name() {
		case RefundsAgent:
			refunds = p
		case SommelierAgent:
			sommelier = p
		}
	}
	require.NotNil(t, refunds)
	require.NotNil(t, sommelier)

	refund, ok := refunds.Tool("process_refund")
	require.True(t, ok)
	params := refund.Definition().Parameters
	assert.Equal(t, []string{"item_id"}, params.Required)
	assert.Equal(t, "NOT SPECIFIED", params.Properties["reason"].Default)
	assert.Contains(t, params.Properties["item_id"].Description, "of the form item_")

	list, ok := sommelier.Tool("list_wines")
	require.True(t, ok)
	params = list.Definition().Parameters
	assert.Empty(t, params.Required)
	assert.Equal(t, "string", params.Properties["country"].Type)
	assert.Equal(t, "string", params.Properties["grape"].Type)
}

func TestListWines(t *testing.T) {
	assert.Contains(t, listWines(cellar, "", "tempranillo"), "Rioja Reserva")
	assert.Equal(t, "No matching wines in the cellar.", listWines(cellar, "France", ""))
	assert.Equal(t, "No matching wines in the cellar.", listWines(nil, "", ""))
}
