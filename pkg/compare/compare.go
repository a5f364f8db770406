package compare

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"clifton/pkg/inference"
	"clifton/pkg/prompts"
	"clifton/pkg/schema"
	"clifton/pkg/strengths"
	"clifton/pkg/utils"
)

const (
	Temperature = 0.7
	MaxTokens   = 800
)

// Secrets resolves credentials by name.
type Secrets interface {
	Lookup(key string) (string, error)
}

// Options selects the model provider and request strategy.
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	// Concurrent issues the three requests in parallel.
	Concurrent bool
	// Structured asks for all three sections in one JSON request.
	Structured bool
}

// Result is a finished comparison of two profiles.
type Result struct {
	ID        string            `json:"id"`
	Person1   strengths.Profile `json:"person1"`
	Person2   strengths.Profile `json:"person2"`
	CreatedAt time.Time         `json:"created_at"`
	schema.Comparison
}

type Client struct {
	secrets Secrets
	opts    Options
	// newInferencer is replaced in tests.
	newInferencer func(apiKey string) (inference.Inferencer, error)
}

func New(secrets Secrets, opts Options) *Client {
	opts.Provider = cmp.Or(opts.Provider, inference.OpenAI)
	opts.Model = cmp.Or(opts.Model, inference.DefaultModel(opts.Provider))
	c := &Client{secrets: secrets, opts: opts}
	c.newInferencer = func(apiKey string) (inference.Inferencer, error) {
		return inference.New(opts.Provider, apiKey, opts.Model, opts.BaseURL)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.opts.Model }

// Compare asks the model about conflicts, collaboration and communication
// between a and b. The credential is resolved before any request is made.
func (c *Client) Compare(ctx context.Context, a, b strengths.Profile) (*Result, error) {
	keyName := inference.KeyName(c.opts.Provider)
	apiKey, err := c.secrets.Lookup(keyName)
	if err != nil {
		return nil, &ConfigError{Key: keyName, Err: err}
	}
	inf, err := c.newInferencer(apiKey)
	if err != nil {
		return nil, &ConfigError{Key: keyName, Err: err}
	}

	p := prompts.Build(a, b)
	logPromptSize(p)

	start := time.Now()
	var sections schema.Comparison
	if c.opts.Structured {
		sections, err = c.askStructured(ctx, inf, p)
	} else {
		sections, err = c.ask(ctx, inf, p)
	}
	if err != nil {
		log.Error("comparison failed", "person1", a.Name, "person2", b.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrComparison, err)
	}

	res := &Result{
		ID:         ksuid.New().String(),
		Person1:    a,
		Person2:    b,
		CreatedAt:  time.Now().UTC(),
		Comparison: sections,
	}
	log.Info("comparison complete", "id", res.ID, "person1", a.Name, "person2", b.Name, "took", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (c *Client) params() *openai.ChatCompletionNewParams {
	return &openai.ChatCompletionNewParams{
		Model:               c.opts.Model,
		Temperature:         openai.Float(Temperature),
		MaxCompletionTokens: openai.Int(MaxTokens),
	}
}

func (c *Client) ask(ctx context.Context, inf inference.Inferencer, p prompts.Prompts) (schema.Comparison, error) {
	questions := p.All()
	var answers [3]string
	var errs [3]error

	if c.opts.Concurrent {
		var wg sync.WaitGroup
		for i, q := range questions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				answers[i], errs[i] = inf.Infer(ctx, c.params(), prompts.System, q)
			}()
		}
		wg.Wait()
	} else {
		for i, q := range questions {
			answers[i], errs[i] = inf.Infer(ctx, c.params(), prompts.System, q)
			if errs[i] != nil {
				break
			}
		}
	}

	for _, err := range errs {
		if err != nil {
			return schema.Comparison{}, err
		}
	}
	return schema.Comparison{
		Conflicts:     answers[0],
		Collaboration: answers[1],
		Communication: answers[2],
	}, nil
}

func (c *Client) askStructured(ctx context.Context, inf inference.Inferencer, p prompts.Prompts) (schema.Comparison, error) {
	params := c.params()
	// one answer carries all three sections
	params.MaxCompletionTokens = openai.Int(MaxTokens * 3)
	params.ResponseFormat = schema.ComparisonResponseFormat()

	out, err := inf.Infer(ctx, params, prompts.System, prompts.Combined(p))
	if err != nil {
		return schema.Comparison{}, err
	}

	var sections schema.Comparison
	if err := json.Unmarshal([]byte(utils.CleanJSON(out)), &sections); err != nil {
		log.Debug("unparseable structured comparison", "output", utils.LimitStr(out, 200))
		return schema.Comparison{}, fmt.Errorf("parse structured comparison: %w", err)
	}
	if !sections.Complete() {
		return schema.Comparison{}, errors.New("structured comparison is missing sections")
	}
	return sections, nil
}

func logPromptSize(p prompts.Prompts) {
	if log.GetLevel() > log.DebugLevel {
		return
	}
	all := p.All()
	n, err := utils.CountTokens(strings.Join(all[:], "\n"))
	if err != nil {
		log.Debug("token estimate unavailable", "error", err)
		return
	}
	log.Debug("comparison prompts built", "tokens", n)
}
