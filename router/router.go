package router

import (
	"context"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/runner"
)

// Options configure a Router.
type Options struct {
	Assembler *assembler.Assembler
	Callbacks *Callbacks
	Logger    logging.Logger
}

// Router resolves the active agent and runs single turns.
type Router struct {
	runner    *runner.Runner
	triage    *agent.Agent
	agents    map[string]*agent.Agent
	assembler *assembler.Assembler
	callbacks *Callbacks
	logger    logging.Logger
}

// New creates a Router and wires triage with peers.
func New(r *runner.Runner, triage *agent.Agent, peers []*agent.Agent, optFns ...func(o *Options)) *Router {
	opts := Options{
		Assembler: assembler.New(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	agent.WireTriage(triage, peers...)

	agents := map[string]*agent.Agent{triage.Name(): triage}
	for _, p := range peers {
		agents[p.Name()] = p
	}

	return &Router{
		runner:    r,
		triage:    triage,
		agents:    agents,
		assembler: opts.Assembler,
		callbacks: opts.Callbacks,
		logger:    opts.Logger,
	}
}

// Triage returns the entry agent.
func (r *Router) Triage() *agent.Agent { return r.triage }

// Agent resolves name, falling back to triage for empty or unknown names.
func (r *Router) Agent(name string) *agent.Agent {
	if a, ok := r.agents[name]; ok {
		return a
	}
	return r.triage
}

// TurnInput is one user turn.
type TurnInput struct {
	// Agent names the active agent returned by the previous turn.
	Agent    string
	Messages []core.Message
	Vars     core.Variables
	// Stream selects the streamed completion path.
	Stream bool
}

// TurnResult is the outcome of one turn.
type TurnResult struct {
	Chunks []assembler.Chunk
	// Agent is the active agent for the next turn.
	Agent     string
	HandedOff bool
}

// Text returns the concatenated chunk text.
func (t *TurnResult) Text() string { return assembler.Join(t.Chunks) }

// Turn runs one turn and collects its chunks.
func (r *Router) Turn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	var chunks []assembler.Chunk
	res, err := r.TurnStream(ctx, in, func(c assembler.Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	if res != nil {
		res.Chunks = chunks
	}
	return res, err
}

// TurnStream runs one turn and hands each chunk to emit as soon as it is
// assembled. The returned result carries no chunks.
func (r *Router) TurnStream(ctx context.Context, in TurnInput, emit func(assembler.Chunk) error) (*TurnResult, error) {
	active := r.Agent(in.Agent)
	res := &TurnResult{Agent: active.Name()}

	var (
		stream model.Stream
		err    error
	)
	if in.Stream {
		stream, err = r.runner.RunStream(ctx, active, in.Messages, in.Vars)
	} else {
		var resp *model.Response
		resp, err = r.runner.Run(ctx, active, in.Messages, in.Vars)
		if err == nil {
			stream = model.NewSliceStream(model.MessageEvents(resp.Message), nil)
		}
	}
	if err != nil {
		return res, err
	}

	emitted := 0
	onTool := func(call core.ToolCall) (assembler.ToolUsage, error) {
		usage, handoff := r.useTool(ctx, active, call, in.Vars)
		if handoff == nil {
			return usage, nil
		}
		res.Agent = handoff.Name()
		res.HandedOff = true
		return usage, assembler.ErrStop
	}

	err = r.assembler.Run(stream, onTool, func(c assembler.Chunk) error {
		emitted++
		return emit(c)
	})
	if err != nil {
		r.logger.Error("router.turn.failed", "agent", active.Name(), "error", err)
		return res, err
	}
	if emitted == 0 {
		return res, core.ErrNoContent
	}
	return res, nil
}

// useTool dispatches one call and reports the handoff target, if any.
func (r *Router) useTool(ctx context.Context, active *agent.Agent, call core.ToolCall, vars core.Variables) (assembler.ToolUsage, *agent.Agent) {
	ev := &Event{Hook: HookBeforeTool, Agent: active.Name(), Call: call}
	if err := r.callbacks.run(ctx, ev); err != nil {
		r.logger.Warn("router.tool.rejected", "agent", active.Name(), "tool", call.Name, "error", err)
		return assembler.ToolUsage{Result: err.Error()}, nil
	}

	var (
		usage  assembler.ToolUsage
		target *agent.Agent
	)
	outcome, err := Dispatch(ctx, r.logger, active, call, vars)
	if err != nil {
		r.logger.Warn("router.tool.failed", "agent", active.Name(), "tool", call.Name, "error", err)
		usage.Result = err.Error()
	} else {
		switch o := outcome.(type) {
		case agent.Handoff:
			target = o.Agent
			usage.Handoff = o.Agent.Name()
			r.logger.Info("router.handoff", "from", active.Name(), "to", o.Agent.Name())
		case agent.TextResult:
			usage.Result = o.Text
		}
	}

	r.notify(ctx, &Event{Hook: HookAfterTool, Agent: active.Name(), Call: call, Usage: usage, Err: err})
	if target != nil {
		r.notify(ctx, &Event{Hook: HookHandoff, Agent: active.Name(), Call: call, Usage: usage})
	}
	return usage, target
}

func (r *Router) notify(ctx context.Context, ev *Event) {
	if err := r.callbacks.run(ctx, ev); err != nil {
		r.logger.Warn("router.callback.failed", "hook", string(ev.Hook), "agent", ev.Agent, "error", err)
	}
}
