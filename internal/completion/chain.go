// Package completion runs LLM prompts through a list of Claude models in
// preference order. Rate limits and overload responses retry on the same
// model; missing models and hard errors fall through to the next one. The
// enrichment pipeline treats completions as best-effort, so a fully failed
// chain yields "" rather than an error.
package completion

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/resilience"
	"github.com/sells-group/sourcing-cli/pkg/anthropic"
)

// Completer produces a completion for a prompt, or "" when no model answered.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) string
}

// Chain tries each model in order until one answers.
type Chain struct {
	client anthropic.Client
	models []string
}

// NewChain builds a model-fallback chain. A nil client produces a chain
// whose completions are always "", which keeps extraction callers simple
// when no API key is configured.
func NewChain(client anthropic.Client, models []string) *Chain {
	return &Chain{client: client, models: models}
}

func (c *Chain) Complete(ctx context.Context, prompt string, maxTokens int) string {
	if c.client == nil || len(c.models) == 0 {
		return ""
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	for i, model := range c.models {
		text, err := c.completeModel(ctx, model, prompt, maxTokens)
		if err == nil {
			if i > 0 {
				zap.L().Info("completion used fallback model", zap.String("model", model))
			}
			return strings.TrimSpace(text)
		}
		if ctx.Err() != nil {
			return ""
		}
		if anthropic.StatusCode(err) == http.StatusNotFound {
			zap.L().Warn("completion model not found, skipping",
				zap.String("model", model))
			continue
		}
		zap.L().Warn("completion model failed",
			zap.String("model", model), zap.Error(err))
	}
	return ""
}

// completeModel calls one model, retrying rate limits and overloads in place.
func (c *Chain) completeModel(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	cfg := resilience.CompletionRetryConfig()
	cfg.ShouldRetry = func(err error) bool {
		code := anthropic.StatusCode(err)
		return code == http.StatusTooManyRequests || code == 529
	}
	cfg.OnRetry = resilience.RetryLogger("anthropic", "create message")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     model,
			MaxTokens: int64(maxTokens),
			Prompt:    prompt,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}
