// Package sqlgen turns natural-language questions about the wine database
// into PostgreSQL queries.
package sqlgen

import (
	"context"
	"encoding/json"
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
	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrUnparseable is returned when the answer has neither JSON nor
	// numbered sections.
	ErrUnparseable = errors.New("could not parse response format")
)

const systemPrompt = "You are a SQL expert who generates precise PostgreSQL queries."

const promptTemplate = `Given this database schema:

%s

Generate a PostgreSQL query to answer this question: %s

Provide:
1. The SQL query
2. A brief explanation of how the query works

Format the response as JSON with 'query' and 'explanation' fields.`

// Result is a generated query.
type Result struct {
	Status      string `json:"status"`
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
	RawResponse string `json:"raw_response"`
}

// Options configure a Generator.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	Tables      []Table
	Logger      logging.Logger
}

// Generator asks the model for SQL.
type Generator struct {
	runner *runner.Runner
	agent  *agent.Agent
	schema string
	logger logging.Logger
}

// New creates a Generator on top of m.
func New(m model.Model, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:       "mixtral-8x7b-32768",
		Temperature: 0.1,
		MaxTokens:   1000,
		Tables:      Tables,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Generator{
		runner: runner.New(m, func(o *runner.Options) {
			o.Temperature = model.Float(opts.Temperature)
			o.MaxTokens = opts.MaxTokens
			o.Logger = opts.Logger
		}),
		agent: agent.New("SQL Agent", func(o *agent.Options) {
			o.Model = opts.Model
			o.Instruction = agent.NewInstructionFromText(systemPrompt)
		}),
		schema: DescribeSchema(opts.Tables, Relationships),
		logger: opts.Logger,
	}
}

// Generate produces a query answering question.
func (g *Generator) Generate(ctx context.Context, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	prompt := fmt.Sprintf(promptTemplate, g.schema, question)
	resp, err := g.runner.Run(ctx, g.agent, []core.Message{core.UserMessage(prompt)}, nil)
	if err != nil {
		g.logger.Error("sqlgen.failed", "error", err)
		return nil, fmt.Errorf("generate sql: %w", err)
	}

	raw := resp.Message.Content
	query, explanation, err := Parse(raw)
	if err != nil {
		g.logger.Warn("sqlgen.unparseable", "raw_response", raw)
		return nil, fmt.Errorf("generate sql: %w", err)
	}
	return &Result{Status: "success", SQL: query, Explanation: explanation, RawResponse: raw}, nil
}

// Parse extracts the query and explanation from a model answer. JSON with
// "query" and "explanation" fields is preferred, optionally wrapped in a
// code fence; otherwise the answer is split at "2." into a "1." query
// section and an explanation.
func Parse(raw string) (string, string, error) {
	var out struct {
		Query       string `json:"query"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(unfence(raw)), &out); err == nil {
		return out.Query, out.Explanation, nil
	}

	query, explanation, ok := strings.Cut(raw, "2.")
	if !ok {
		return "", "", ErrUnparseable
	}
	query = strings.TrimSpace(strings.Replace(query, "1.", "", 1))
	return query, strings.TrimSpace(explanation), nil
}

func unfence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
