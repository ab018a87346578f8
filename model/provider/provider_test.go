package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		cfg      Config
		provider string
	}{
		{Config{APIKey: "k"}, "groq"},
		{Config{Name: "OpenAI", APIKey: "k"}, "openai"},
		{Config{Name: "anthropic", APIKey: "k"}, "anthropic"},
		{Config{Name: "google", APIKey: "k"}, "google"},
		{Config{Name: "mock"}, "mock"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			m, err := New(ctx, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, m.Info().Provider)
		})
	}
}

func TestNew_ModelOverride(t *testing.T) {
	m, err := New(context.Background(), Config{Name: Groq, APIKey: "k", Model: "llama-3.1-8b-instant"})
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", m.Info().Name)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Config{Name: Groq})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = New(context.Background(), Config{Name: "bedrock", APIKey: "k"})
	assert.ErrorContains(t, err, "unknown model provider")
}
