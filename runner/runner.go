package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Temperature is sent with every request when set.
	Temperature *float64
	// MaxTokens caps the completion length when positive.
	MaxTokens int64
	// Logger receives request outcomes.
	Logger logging.Logger
}

// Runner sends one completion request per turn on behalf of an agent.
// It is safe for concurrent use as long as the underlying model is.
type Runner struct {
	model       model.Model
	temperature *float64
	maxTokens   int64
	logger      logging.Logger
}

// New constructs a Runner around m.
func New(m model.Model, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{
		model:       m,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      opts.Logger,
	}
}

// Model returns the underlying provider.
func (r *Runner) Model() model.Model { return r.model }

// BuildRequest assembles the provider request for one turn. The system
// message is always first, even for an empty transcript. Any system messages
// already present in messages are dropped in favor of the agent's.
func (r *Runner) BuildRequest(ctx context.Context, a *agent.Agent, messages []core.Message, vars core.Variables) (model.Request, error) {
	prompt, err := a.SystemPrompt(ctx, vars)
	if err != nil {
		return model.Request{}, err
	}

	msgs := make([]core.Message, 0, len(messages)+1)
	msgs = append(msgs, core.SystemMessage(prompt))
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			continue
		}
		msgs = append(msgs, m)
	}

	req := model.Request{
		Model:       a.Model(),
		Messages:    msgs,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	}
	if defs := a.Definitions(); len(defs) > 0 {
		req.Tools = defs
		req.ToolChoice = string(a.EffectiveToolChoice())
	}
	return req, nil
}

// Run performs a non-streaming completion and returns the assistant message
// unmodified. Tool calls are returned, not executed.
func (r *Runner) Run(ctx context.Context, a *agent.Agent, messages []core.Message, vars core.Variables) (*model.Response, error) {
	req, err := r.BuildRequest(ctx, a, messages, vars)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.model.Generate(ctx, req)
	r.logCall(a, req, start, err)
	if err != nil {
		return nil, fmt.Errorf("completion for %s: %w", a.Name(), err)
	}
	if resp == nil || resp.Message.IsEmpty() {
		return nil, core.ErrNoContent
	}
	return resp, nil
}

// RunStream performs a streamed completion. The caller owns the returned
// stream and must drain or close it.
func (r *Runner) RunStream(ctx context.Context, a *agent.Agent, messages []core.Message, vars core.Variables) (model.Stream, error) {
	req, err := r.BuildRequest(ctx, a, messages, vars)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stream, err := r.model.Stream(ctx, req)
	r.logCall(a, req, start, err)
	if err != nil {
		return nil, fmt.Errorf("streaming completion for %s: %w", a.Name(), err)
	}
	return stream, nil
}

func (r *Runner) logCall(a *agent.Agent, req model.Request, start time.Time, err error) {
	info := r.model.Info()
	name := req.Model
	if name == "" {
		name = info.Name
	}
	logging.LogModelCall(r.logger, info.Provider, name, time.Since(start), err, "agent", a.Name())
}
