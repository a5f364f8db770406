package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK. It
// also serves OpenAI-compatible APIs through a different base URL.
type OpenAIInferencer struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAIInferencer creates a new inferencer instance using OpenAI client.
func NewOpenAIInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	return newCompatible("openai", "", apiKey, cmp.Or(model, DefaultModel(OpenAI)), opts...)
}

// NewGrokInferencer creates an inferencer for the xAI OpenAI-compatible API.
func NewGrokInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	return newCompatible("grok", "https://api.x.ai/v1", apiKey, cmp.Or(model, DefaultModel(Grok)), opts...)
}

// NewKimiInferencer creates an inferencer for the Kimi coding API.
func NewKimiInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	return newCompatible("kimi", "https://api.kimi.com/coding/v1", apiKey, cmp.Or(model, DefaultModel(Kimi)), opts...)
}

// NewMoonshotInferencer creates an inferencer for the Moonshot AI API.
func NewMoonshotInferencer(apiKey string, model string, opts ...option.RequestOption) *OpenAIInferencer {
	return newCompatible("moonshot", "https://api.moonshot.ai/v1", apiKey, cmp.Or(model, DefaultModel(Moonshot)), opts...)
}

func newCompatible(name, baseURL, apiKey, model string, opts ...option.RequestOption) *OpenAIInferencer {
	base := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	// caller options go last so a configured base URL wins
	client := openai.NewClient(append(base, opts...)...)
	return &OpenAIInferencer{
		client: &client,
		name:   name,
		model:  model,
	}
}

func (o *OpenAIInferencer) Model() string { return o.model }

// Infer sends text to the chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)
	p.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: system},
				},
			}},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role: "user",
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.Opt[string]{Value: user},
				},
			},
		},
	}

	p.MaxCompletionTokens = openai.Int(cmp.Or(p.MaxCompletionTokens.Value, 4096))
	p.Temperature = openai.Float(cmp.Or(p.Temperature.Value, 0.3))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s inference error: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}
