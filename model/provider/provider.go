// Package provider builds a model.Model for a configured provider name.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/model/anthropic"
	"github.com/hupe1980/winemesh/model/google"
	"github.com/hupe1980/winemesh/model/openai"
)

// ErrMissingAPIKey is returned when the selected provider has no credentials.
var ErrMissingAPIKey = errors.New("missing api key")

// Names of the supported providers.
const (
	Groq      = "groq"
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Google    = "google"
	Mock      = "mock"
)

// Config selects and parameterizes a provider.
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	// Model overrides the provider's default model identifier.
	Model string
}

// New returns the model.Model for cfg.Name.
func New(ctx context.Context, cfg Config) (model.Model, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = Groq
	}
	if name != Mock && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingAPIKey)
	}

	switch name {
	case Groq:
		return openai.NewGroqModel(cfg.APIKey, func(o *openai.Options) {
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case OpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case Anthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case Google:
		return google.NewModel(ctx, func(o *google.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
	case Mock:
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Name)
	}
}
