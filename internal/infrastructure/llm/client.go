// Package llm wraps the language-model backend behind a minimal
// text-completion interface. The backend is an opaque collaborator; the
// service only cares that a system/user prompt pair yields text.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

// Client is the text-completion capability used on cache misses.
type Client interface {
	// Complete returns the raw model output for a system/user prompt pair.
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAIClient struct {
	api     *openai.Client
	model   string
	timeout timeoutFn
	log     logger.Logger
}

type timeoutFn func(ctx context.Context) (context.Context, context.CancelFunc)

// NewClient creates the OpenAI-compatible client. Every call carries an
// explicit bounded timeout so a stalled upstream cannot pin a handler to
// the platform's default request timeout.
func NewClient(cfg *config.UpstreamConfig, log logger.Logger) Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout()
	return &openAIClient{
		api:   openai.NewClientWithConfig(apiConfig),
		model: cfg.Model,
		timeout: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, timeout)
		},
		log: log.WithComponent("llm"),
	}
}

func (c *openAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := c.timeout(ctx)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		c.log.Error(ctx, "completion call failed", err, logger.String("model", c.model))
		// Transport failures are ours to own, not a malformed-output case.
		return "", errors.ErrServer("Model request failed.").WithCause(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.ErrUpstreamMalformed("Model returned no choices.")
	}
	return resp.Choices[0].Message.Content, nil
}
