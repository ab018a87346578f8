// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including streaming + function/tool calling). The same
// adapter serves any OpenAI-compatible endpoint; NewGroqModel points it at Groq.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
)

// GroqBaseURL is the OpenAI-compatible endpoint of Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

// Options configure the OpenAI model adapter.
type Options struct {
	APIKey              string
	BaseURL             string
	Provider            string
	Model               string
	Temperature         *float64
	MaxCompletionTokens int64
	RequestOptions      []option.RequestOption
}

// Model wraps the Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new model using the official client. Without an APIKey
// the client falls back to the OPENAI_API_KEY environment variable.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	reqOpts := append([]option.RequestOption(nil), opts.RequestOptions...)
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewGroqModel creates a model talking to Groq's OpenAI-compatible API.
func NewGroqModel(apiKey string, optFns ...func(o *Options)) *Model {
	return NewModel(append([]func(o *Options){func(o *Options) {
		o.APIKey = apiKey
		o.BaseURL = GroqBaseURL
		o.Provider = "groq"
		o.Model = "llama-3.1-70b-versatile"
	}}, optFns...)...)
}

// NewModelFromClient creates a new model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Provider:            "openai",
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 4096,
	}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("%s api error: %w", m.opts.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s api error: no choices returned", m.opts.Provider)
	}

	ch0 := resp.Choices[0]
	msg := core.AssistantMessage(ch0.Message.Content)
	for _, tc := range ch0.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &model.Response{
		Message:      msg,
		FinishReason: ch0.FinishReason,
		Usage: &model.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Stream implements model.Model.
func (m *Model) Stream(ctx context.Context, req model.Request) (model.Stream, error) {
	raw := m.client.Chat.Completions.NewStreaming(ctx, m.buildParams(req))
	if err := raw.Err(); err != nil {
		return nil, fmt.Errorf("%s streaming error: %w", m.opts.Provider, err)
	}
	return &chatStream{raw: raw, provider: m.opts.Provider, calls: map[int64]*aggCall{}}, nil
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: m.opts.Provider, SupportsTools: true}
}

// buildMessages converts the normalized transcript into chat messages.
func buildMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			am := &openai.ChatCompletionAssistantMessageParam{Role: "assistant"}
			if msg.Content != "" {
				am.Content.OfString = openai.String(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				am.ToolCalls = append(am.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: am})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// buildParams assembles the request parameters including tool definitions.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	modelName := req.Model
	if modelName == "" {
		modelName = m.opts.Model
	}
	params := openai.ChatCompletionNewParams{
		Messages: buildMessages(req.Messages),
		Model:    modelName,
	}

	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = req.Temperature
	}
	if temperature != nil {
		params.Temperature = openai.Float(*temperature)
	}
	maxTokens := m.opts.MaxCompletionTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(maxTokens)
	}

	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openai.String(tdef.Description),
				Parameters:  tdef.Parameters.Map(),
			},
		}
	}
	params.Tools = tools
	if req.ToolChoice != "" {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(req.ToolChoice)}
	}
	return params
}

// aggCall aggregates partial tool call streaming deltas (id, name, arguments).
type aggCall struct {
	id, name string
	args     strings.Builder
	emitted  bool
}

func (a *aggCall) decodable() bool {
	return a.name != "" && a.args.Len() > 0 && json.Valid([]byte(a.args.String()))
}

func (a *aggCall) toolCall() core.ToolCall {
	args := a.args.String()
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	id := a.id
	if id == "" {
		id = core.NewID()
	}
	return core.ToolCall{ID: id, Name: a.name, Arguments: args}
}

// chatStream adapts the SDK's SSE stream to model.Stream. Each call to the
// underlying Next is one network read; its decoded events are queued.
type chatStream struct {
	raw      *ssestream.Stream[openai.ChatCompletionChunk]
	provider string
	queue    model.Queue
	calls    map[int64]*aggCall
	order    []int64
	cur      model.StreamEvent
	done     bool
	err      error
}

func (s *chatStream) Next() bool {
	for {
		if ev, ok := s.queue.Pop(); ok {
			s.cur = ev
			return true
		}
		if s.done {
			return false
		}
		if !s.raw.Next() {
			s.done = true
			if err := s.raw.Err(); err != nil {
				s.err = fmt.Errorf("%s streaming error: %w", s.provider, err)
				continue
			}
			s.flushCalls()
			continue
		}
		s.consume(s.raw.Current())
	}
}

func (s *chatStream) consume(chunk openai.ChatCompletionChunk) {
	for _, ch := range chunk.Choices {
		if ch.Index != 0 {
			continue
		}
		if ch.Delta.Content != "" {
			s.queue.Push(model.ContentEvent(ch.Delta.Content))
		}
		for _, tc := range ch.Delta.ToolCalls {
			ac, ok := s.calls[tc.Index]
			if !ok {
				ac = &aggCall{}
				s.calls[tc.Index] = ac
				s.order = append(s.order, tc.Index)
			}
			if tc.ID != "" {
				ac.id = tc.ID
			}
			if tc.Function.Name != "" {
				ac.name = tc.Function.Name
			}
			ac.args.WriteString(tc.Function.Arguments)
			if !ac.emitted && ac.decodable() {
				ac.emitted = true
				s.queue.Push(model.ToolCallEvent(ac.toolCall()))
			}
		}
		if ch.FinishReason != "" {
			s.flushCalls()
			s.queue.Push(model.BoundaryEvent())
		}
	}
}

// flushCalls emits calls whose arguments never became valid JSON and starts
// a fresh aggregation for the next message segment.
func (s *chatStream) flushCalls() {
	for _, idx := range s.order {
		ac := s.calls[idx]
		if !ac.emitted && ac.name != "" {
			ac.emitted = true
			s.queue.Push(model.ToolCallEvent(ac.toolCall()))
		}
	}
	s.calls = map[int64]*aggCall{}
	s.order = nil
}

func (s *chatStream) Event() model.StreamEvent { return s.cur }

func (s *chatStream) Err() error { return s.err }

func (s *chatStream) Close() error {
	s.done = true
	s.queue = model.Queue{}
	return s.raw.Close()
}
