// Package summary writes short tasting summaries for a single wine.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/winemesh/agent"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/runner"
)

var (
	// ErrNoResponse is returned when the model answers with no text.
	ErrNoResponse = errors.New("no response received from AI service")
	// ErrMissingWine is returned when the wine name is blank.
	ErrMissingWine = errors.New("wine name is required")
)

const systemPrompt = `You are a knowledgeable wine expert. Provide concise, engaging 2-3 sentence summaries of wines.
Focus on the wine's key characteristics, notable features, and what makes it special. Keep responses brief but informative.`

// Options configure a Summarizer.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	Logger      logging.Logger
}

// Summarizer produces wine summaries.
type Summarizer struct {
	runner *runner.Runner
	agent  *agent.Agent
	logger logging.Logger
}

// New creates a Summarizer on top of m.
func New(m model.Model, optFns ...func(o *Options)) *Summarizer {
	opts := Options{
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.7,
		MaxTokens:   200,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Summarizer{
		runner: runner.New(m, func(o *runner.Options) {
			o.Temperature = model.Float(opts.Temperature)
			o.MaxTokens = opts.MaxTokens
			o.Logger = opts.Logger
		}),
		agent: agent.New("Summary Agent", func(o *agent.Options) {
			o.Model = opts.Model
			o.Instruction = agent.NewInstructionFromText(systemPrompt)
		}),
		logger: opts.Logger,
	}
}

// Summarize returns a 2-3 sentence summary of the wine name from producer.
func (s *Summarizer) Summarize(ctx context.Context, name, producer string) (string, error) {
	name, producer = strings.TrimSpace(name), strings.TrimSpace(producer)
	if name == "" {
		return "", ErrMissingWine
	}

	s.logger.Info("summary.generate", "wine", name, "producer", producer)

	prompt := fmt.Sprintf("Please provide a brief summary of %s from %s.", name, producer)
	resp, err := s.runner.Run(ctx, s.agent, []core.Message{core.UserMessage(prompt)}, nil)
	if errors.Is(err, core.ErrNoContent) {
		return "", ErrNoResponse
	}
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", ErrNoResponse
	}
	return text, nil
}
