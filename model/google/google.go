// Package google adapts the Gemini API (google.golang.org/genai) to
// model.Model. The SDK's range-over-func stream is pulled one response at a
// time so it satisfies the forward-only model.Stream contract.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/tool"
)

// Options configure the Gemini model adapter.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	MaxTokens   int32
}

// Model implements model.Model for Gemini.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini API backed model.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{Model: "gemini-2.0-flash", MaxTokens: 1024}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	name, contents, config := m.buildRequest(req)
	resp, err := m.client.Models.GenerateContent(ctx, name, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	msg := core.AssistantMessage("")
	finish := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		msg.Content, msg.ToolCalls = splitParts(resp.Candidates[0].Content.Parts)
		finish = string(resp.Candidates[0].FinishReason)
	}

	out := &model.Response{Message: msg, FinishReason: finish}
	if resp.UsageMetadata != nil {
		out.Usage = &model.Usage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

// Stream implements model.Model.
func (m *Model) Stream(ctx context.Context, req model.Request) (model.Stream, error) {
	name, contents, config := m.buildRequest(req)
	next, stop := iter.Pull2(m.client.Models.GenerateContentStream(ctx, name, contents, config))
	return &contentStream{next: next, stop: stop}, nil
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "google", SupportsTools: true}
}

func (m *Model) buildRequest(req model.Request) (string, []*genai.Content, *genai.GenerateContentConfig) {
	name := req.Model
	if name == "" {
		name = m.opts.Model
	}

	config := &genai.GenerateContentConfig{MaxOutputTokens: m.opts.MaxTokens}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = req.Temperature
	}
	if temperature != nil {
		t := float32(*temperature)
		config.Temperature = &t
	}

	if sys := req.SystemPrompt(); sys != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: sys}}}
	}
	if len(req.Tools) > 0 {
		config.Tools = convertTools(req.Tools)
		config.ToolConfig = convertToolChoice(req.ToolChoice)
	}
	return name, convertMessages(req.Messages), config
}

func convertMessages(msgs []core.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
		case core.RoleTool:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.Name,
					Response: map[string]any{"output": msg.Content},
				},
			}}})
		default:
			if msg.Content != "" {
				contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
			}
		}
	}
	return contents
}

func convertTools(defs []tool.Definition) []*genai.Tool {
	funcs := make([]*genai.FunctionDeclaration, len(defs))
	for i, def := range defs {
		funcs[i] = &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  convertSchema(def.Parameters),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: funcs}}
}

func convertSchema(s tool.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s.Properties)),
		Required:   append([]string{}, s.Required...),
	}
	for name, p := range s.Properties {
		out.Properties[name] = &genai.Schema{
			Type:        genaiType(p.Type),
			Description: p.Description,
			Enum:        p.Enum,
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func convertToolChoice(choice string) *genai.ToolConfig {
	mode := genai.FunctionCallingConfigModeAuto
	switch choice {
	case "none":
		mode = genai.FunctionCallingConfigModeNone
	case "required":
		mode = genai.FunctionCallingConfigModeAny
	}
	return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode}}
}

// splitParts separates text from function calls. Gemini may omit call ids,
// so one is generated when missing.
func splitParts(parts []*genai.Part) (string, []core.ToolCall) {
	var text string
	var calls []core.ToolCall
	for _, part := range parts {
		if part == nil {
			continue
		}
		text += part.Text
		if fc := part.FunctionCall; fc != nil {
			args := []byte("{}")
			if len(fc.Args) > 0 {
				if b, err := json.Marshal(fc.Args); err == nil {
					args = b
				}
			}
			id := fc.ID
			if id == "" {
				id = core.NewID()
			}
			calls = append(calls, core.ToolCall{ID: id, Name: fc.Name, Arguments: string(args)})
		}
	}
	return text, calls
}

// contentStream pulls one GenerateContentResponse per Next call that runs
// out of buffered events.
type contentStream struct {
	next  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	queue model.Queue
	cur   model.StreamEvent
	done  bool
	err   error
}

func (s *contentStream) Next() bool {
	for {
		if ev, ok := s.queue.Pop(); ok {
			s.cur = ev
			return true
		}
		if s.done {
			return false
		}
		resp, err, ok := s.next()
		switch {
		case !ok:
			s.finish()
		case err != nil:
			s.err = fmt.Errorf("gemini streaming error: %w", err)
			s.finish()
		default:
			s.consume(resp)
		}
	}
}

func (s *contentStream) consume(resp *genai.GenerateContentResponse) {
	if resp == nil || len(resp.Candidates) == 0 {
		return
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			text, calls := splitParts([]*genai.Part{part})
			if text != "" {
				s.queue.Push(model.ContentEvent(text))
			}
			for _, tc := range calls {
				s.queue.Push(model.ToolCallEvent(tc))
			}
		}
	}
	if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonUnspecified {
		s.queue.Push(model.BoundaryEvent())
	}
}

func (s *contentStream) finish() {
	s.done = true
	s.stop()
}

func (s *contentStream) Event() model.StreamEvent { return s.cur }

func (s *contentStream) Err() error { return s.err }

func (s *contentStream) Close() error {
	s.queue = model.Queue{}
	if !s.done {
		s.finish()
	}
	return nil
}
