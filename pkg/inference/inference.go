package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Inferencer runs a single system+user chat completion.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}

// Provider names accepted by New.
const (
	OpenAI   = "openai"
	Grok     = "grok"
	Kimi     = "kimi"
	Moonshot = "moonshot"
	Gemini   = "gemini"
)

// KeyName returns the credential name used by a provider.
func KeyName(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case Grok:
		return "grok-4-fast-reasoning"
	case Kimi:
		return "kimi-for-coding"
	case Moonshot:
		return "kimi-k2-5"
	case Gemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o"
	}
}

// New builds the inferencer for provider. baseURL overrides the provider's
// endpoint for OpenAI-compatible providers.
func New(provider, apiKey, model, baseURL string, opts ...option.RequestOption) (Inferencer, error) {
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	switch provider {
	case OpenAI, "":
		return NewOpenAIInferencer(apiKey, model, opts...), nil
	case Grok:
		return NewGrokInferencer(apiKey, model, opts...), nil
	case Kimi:
		return NewKimiInferencer(apiKey, model, opts...), nil
	case Moonshot:
		return NewMoonshotInferencer(apiKey, model, opts...), nil
	case Gemini:
		return NewGeminiInferencer(apiKey, model, baseURL)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
