// Package chat is the wine assistant: a triage agent that routes users to a
// sommelier, sales or refunds agent, with the user's cellar injected as
// context.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/router"
	"github.com/hupe1980/winemesh/runner"
	"github.com/hupe1980/winemesh/wine"
)

// ErrEmptyMessage is returned when the user message is blank.
var ErrEmptyMessage = errors.New("message is required")

// CollectionSource loads a user's wines.
type CollectionSource interface {
	Collection(ctx context.Context, userID int64) ([]wine.Record, error)
}

// Request is one user message.
type Request struct {
	Message string         `json:"message"`
	UserID  int64          `json:"user_id"`
	Agent   string         `json:"agent,omitempty"`
	History []core.Message `json:"history,omitempty"`
}

// Response is the assistant's answer for one turn.
type Response struct {
	Response  string            `json:"response"`
	Chunks    []assembler.Chunk `json:"chunks,omitempty"`
	Agent     string            `json:"agent"`
	HandedOff bool              `json:"handed_off"`
}

// Options configure a Service.
type Options struct {
	Model       string
	Collections CollectionSource
	Assembler   *assembler.Assembler
	Callbacks   *router.Callbacks
	Logger      logging.Logger
}

// Service answers chat messages.
type Service struct {
	router      *router.Router
	collections CollectionSource
	logger      logging.Logger
}

// New creates a Service on top of m.
func New(m model.Model, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:     "llama-3.1-70b-versatile",
		Assembler: assembler.New(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	triage, peers := Agents(opts.Model, opts.Logger)
	r := runner.New(m, func(o *runner.Options) { o.Logger = opts.Logger })

	return &Service{
		router: router.New(r, triage, peers, func(o *router.Options) {
			o.Assembler = opts.Assembler
			o.Callbacks = opts.Callbacks
			o.Logger = opts.Logger
		}),
		collections: opts.Collections,
		logger:      opts.Logger,
	}
}

// Router exposes the underlying router.
func (s *Service) Router() *router.Router { return s.router }

// Reply runs one turn and returns the joined answer.
func (s *Service) Reply(ctx context.Context, req Request) (*Response, error) {
	var chunks []assembler.Chunk
	resp, err := s.ReplyStream(ctx, req, func(c assembler.Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.Chunks = chunks
	resp.Response = assembler.Join(chunks)
	return resp, nil
}

// ReplyStream runs one turn and passes chunks to emit as they are assembled.
func (s *Service) ReplyStream(ctx context.Context, req Request, emit func(assembler.Chunk) error) (*Response, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}

	messages := make([]core.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, core.UserMessage(msg))

	res, err := s.router.TurnStream(ctx, router.TurnInput{
		Agent:    req.Agent,
		Messages: messages,
		Vars:     s.variables(ctx, req.UserID),
		Stream:   true,
	}, emit)
	if err != nil {
		return nil, err
	}
	return &Response{Agent: res.Agent, HandedOff: res.HandedOff}, nil
}

func (s *Service) variables(ctx context.Context, userID int64) core.Variables {
	vars := core.Variables{}
	if s.collections == nil || userID <= 0 {
		return vars
	}

	records, err := s.collections.Collection(ctx, userID)
	if err != nil {
		s.logger.Warn("chat.collection.failed", "user_id", userID, "error", err)
		return vars
	}
	stats, err := wine.Analyze(records)
	if err != nil {
		return vars
	}

	vars[VarCollection] = stats.Context()
	vars[VarWines] = records
	vars[VarUsername] = records[0].Username
	return vars
}
