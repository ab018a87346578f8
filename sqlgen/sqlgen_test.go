package sqlgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
)

func TestGenerate(t *testing.T) {
	raw := `{"query": "SELECT country, SUM(quantity) FROM wine_table GROUP BY country;", "explanation": "Sums bottles per country."}`
	m := model.NewMockModel("mock", model.Script{Message: core.AssistantMessage(raw)})

	res, err := New(m).Generate(context.Background(), "How many bottles per country?")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "SELECT country, SUM(quantity) FROM wine_table GROUP BY country;", res.SQL)
	assert.Equal(t, "Sums bottles per country.", res.Explanation)
	assert.Equal(t, raw, res.RawResponse)

	req, _ := m.LastRequest()
	assert.Equal(t, "mixtral-8x7b-32768", req.Model)
	assert.Equal(t, 0.1, *req.Temperature)
	assert.Equal(t, int64(1000), req.MaxTokens)
	assert.Equal(t, systemPrompt, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "wine_notes (Stores tasting notes for wines):")
	assert.Contains(t, req.Messages[1].Content, "question: How many bottles per country?")
}

func TestGenerate_Errors(t *testing.T) {
	_, err := New(model.NewMockModel("mock")).Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	m := model.NewMockModel("mock", model.Script{Message: core.AssistantMessage("I cannot help with that.")})
	_, err = New(m).Generate(context.Background(), "drop everything")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		query       string
		explanation string
	}{
		{
			name:        "json",
			raw:         `{"query":"SELECT 1","explanation":"one"}`,
			query:       "SELECT 1",
			explanation: "one",
		},
		{
			name:        "fenced json",
			raw:         "```json\n{\"query\":\"SELECT 2\",\"explanation\":\"two\"}\n```",
			query:       "SELECT 2",
			explanation: "two",
		},
		{
			name:        "numbered",
			raw:         "1. SELECT name FROM wine_table;\n2. Lists all wine names.",
			query:       "SELECT name FROM wine_table;",
			explanation: "Lists all wine names.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, e, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.query, q)
			assert.Equal(t, tt.explanation, e)
		})
	}
}

func TestDescribeSchema(t *testing.T) {
	out := DescribeSchema(Tables, Relationships)
	assert.Contains(t, out, "Database Schema:\n\nwine_users (Stores user account information):\n- id: SERIAL PRIMARY KEY\n")
	assert.Contains(t, out, "- wine_table to wine_aisummaries: one-to-many via wine_id\n")
}
