package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/tool"
)

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [
					{"text": "Let me look."},
					{"functionCall": {"name": "list_wines", "args": {"country": "Italy"}}}
				]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 3}
		}`)
	}))
	t.Cleanup(srv.Close)

	m, err := NewModel(context.Background(), func(o *Options) {
		o.APIKey = "test-key"
		o.BaseURL = srv.URL
	})
	require.NoError(t, err)

	resp, err := m.Generate(context.Background(), model.Request{
		Messages: []core.Message{core.SystemMessage("You are a sommelier."), core.UserMessage("italian reds?")},
		Tools: []tool.Definition{
			tool.NewDefinition("list_wines", "List wines.", tool.NewSchema().String("country", "Country", tool.Optional()).Build()),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Let me look.", resp.Message.Content)
	require.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "list_wines", resp.Message.ToolCalls[0].Name)
	assert.JSONEq(t, `{"country":"Italy"}`, resp.Message.ToolCalls[0].Arguments)
	assert.NotEmpty(t, resp.Message.ToolCalls[0].ID)
	assert.Equal(t, "STOP", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(7), resp.Usage.InputTokens)

	assert.Contains(t, body, "systemInstruction")
	assert.Contains(t, body, "tools")
}

func TestConvertMessages(t *testing.T) {
	contents := convertMessages([]core.Message{
		core.SystemMessage("sys"),
		core.UserMessage("refund item_1"),
		core.AssistantMessage("", core.ToolCall{ID: "c1", Name: "process_refund", Arguments: `{"item_id":"item_1"}`}),
		core.ToolResultMessage("c1", "process_refund", "Success!"),
	})

	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "item_1", contents[1].Parts[0].FunctionCall.Args["item_id"])
	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "Success!", contents[2].Parts[0].FunctionResponse.Response["output"])
}

func TestConvertSchemaAndToolChoice(t *testing.T) {
	s := convertSchema(tool.NewSchema().
		String("item_id", "The item").
		Integer("qty", "Quantity", tool.Optional()).
		Build())

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, genai.TypeString, s.Properties["item_id"].Type)
	assert.Equal(t, genai.TypeInteger, s.Properties["qty"].Type)
	assert.Equal(t, []string{"item_id"}, s.Required)

	assert.Equal(t, genai.FunctionCallingConfigModeAny, convertToolChoice("required").FunctionCallingConfig.Mode)
	assert.Equal(t, genai.FunctionCallingConfigModeNone, convertToolChoice("none").FunctionCallingConfig.Mode)
	assert.Equal(t, genai.FunctionCallingConfigModeAuto, convertToolChoice("").FunctionCallingConfig.Mode)
}

func pulled(resps []*genai.GenerateContentResponse, err error) (func() (*genai.GenerateContentResponse, error, bool), *bool) {
	stopped := false
	i := 0
	next := func() (*genai.GenerateContentResponse, error, bool) {
		if stopped {
			return nil, nil, false
		}
		if i < len(resps) {
			i++
			return resps[i-1], nil, true
		}
		if err != nil {
			e := err
			err = nil
			return nil, e, true
		}
		return nil, nil, false
	}
	return next, &stopped
}

func TestContentStream(t *testing.T) {
	next, stopped := pulled([]*genai.GenerateContentResponse{
		{Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("Hel", genai.RoleModel)}}},
		{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "lo"},
				{FunctionCall: &genai.FunctionCall{Name: "transfer_to_sales"}},
			}},
			FinishReason: genai.FinishReasonStop,
		}}},
	}, nil)
	s := &contentStream{next: next, stop: func() { *stopped = true }}

	events, err := model.Collect(s)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "Hel", events[0].Content)
	assert.Equal(t, "lo", events[1].Content)
	require.Equal(t, model.EventToolCall, events[2].Kind)
	assert.Equal(t, "transfer_to_sales", events[2].ToolCall.Name)
	assert.Equal(t, "{}", events[2].ToolCall.Arguments)
	assert.Equal(t, model.EventTurnBoundary, events[3].Kind)
	assert.True(t, *stopped)
}

func TestContentStream_Error(t *testing.T) {
	boom := errors.New("reset")
	next, stopped := pulled(nil, boom)
	s := &contentStream{next: next, stop: func() { *stopped = true }}

	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), boom)
	assert.NoError(t, s.Close())
}
