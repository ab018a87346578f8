// Package anthropic adapts the Anthropic Messages API to model.Model. System
// messages are lifted into the request's system blocks; tool calls map to
// tool_use content blocks.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
)

// Options configure the Anthropic model adapter.
type Options struct {
	APIKey         string
	Model          string
	Temperature    *float64
	MaxTokens      int64
	RequestOptions []option.RequestOption
}

// Model implements model.Model for Anthropic.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel constructs an Anthropic model. Without an APIKey the client falls
// back to the ANTHROPIC_API_KEY environment variable.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	reqOpts := append([]option.RequestOption(nil), opts.RequestOptions...)
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{Model: "claude-3-5-haiku-latest", MaxTokens: 1024}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	resp, err := m.client.Messages.New(ctx, m.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	msg := core.AssistantMessage("")
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			msg.Content += block.Text
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	return &model.Response{
		Message:      msg,
		FinishReason: string(resp.StopReason),
		Usage: &model.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// Stream implements model.Model.
func (m *Model) Stream(ctx context.Context, req model.Request) (model.Stream, error) {
	raw := m.client.Messages.NewStreaming(ctx, m.buildParams(req))
	if err := raw.Err(); err != nil {
		return nil, fmt.Errorf("anthropic streaming error: %w", err)
	}
	return &messageStream{raw: raw, emitted: map[int]bool{}}, nil
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "anthropic", SupportsTools: true}
}

func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	modelName := req.Model
	if modelName == "" {
		modelName = m.opts.Model
	}
	maxTokens := m.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	msgs, system := convertMessages(req.Messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}

	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = req.Temperature
	}
	if temperature != nil {
		params.Temperature = anthropic.Float(*temperature)
	}

	if len(req.Tools) == 0 {
		return params
	}
	for _, def := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: def.Parameters.PropertiesMap(),
				Required:   def.Parameters.Required,
			},
		}})
	}
	switch req.ToolChoice {
	case "none":
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	case "required":
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	case "auto":
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
	return params
}

func convertMessages(msgs []core.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var out []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			// empty text blocks are rejected by the API
			if msg.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			}
		case core.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input any
				if err := json.Unmarshal([]byte(tc.Arguments), &input); err != nil || input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant, Content: blocks})
			}
		case core.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)))
		default:
			if msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
	}
	return out, system
}

// messageStream adapts the SDK's event stream to model.Stream. Tool calls are
// taken from the accumulated message once their content block closes.
type messageStream struct {
	raw     *ssestream.Stream[anthropic.MessageStreamEventUnion]
	acc     anthropic.Message
	emitted map[int]bool
	queue   model.Queue
	cur     model.StreamEvent
	done    bool
	err     error
}

func (s *messageStream) Next() bool {
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
				s.err = fmt.Errorf("anthropic streaming error: %w", err)
			}
			continue
		}
		s.consume(s.raw.Current())
	}
}

func (s *messageStream) consume(event anthropic.MessageStreamEventUnion) {
	s.acc.Accumulate(event)

	switch event.Type {
	case "content_block_delta":
		delta := event.AsContentBlockDelta()
		if textDelta := delta.Delta.AsTextDelta(); textDelta.Type == "text_delta" && textDelta.Text != "" {
			s.queue.Push(model.ContentEvent(textDelta.Text))
		}
	case "content_block_stop":
		for i, block := range s.acc.Content {
			if block.Type != "tool_use" || s.emitted[i] {
				continue
			}
			s.emitted[i] = true
			args := string(block.Input)
			if args == "" {
				args = "{}"
			}
			s.queue.Push(model.ToolCallEvent(core.ToolCall{ID: block.ID, Name: block.Name, Arguments: args}))
		}
	case "message_stop":
		s.queue.Push(model.BoundaryEvent())
	}
}

func (s *messageStream) Event() model.StreamEvent { return s.cur }

func (s *messageStream) Err() error { return s.err }

func (s *messageStream) Close() error {
	s.done = true
	s.queue = model.Queue{}
	return s.raw.Close()
}
