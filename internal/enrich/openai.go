// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// OpenAICaller implements ModelCaller against the chat-completions API of
// OpenAI or any OpenAI-compatible gateway (via BaseURL). The underlying
// client is stateless, so one caller is shared by all paper goroutines.
type OpenAICaller struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAICaller builds a caller from the enrichment configuration.
func NewOpenAICaller(cfg types.EnrichmentConfig) (*OpenAICaller, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model API key missing: set enrichment.api_key or .secrets/openai-api-key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model identifier missing: set enrichment.model")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAICaller{model: cfg.Model, opts: opts}, nil
}

// Complete sends the message sequence and returns the first choice's text.
func (c *OpenAICaller) Complete(ctx context.Context, msgs []Message) (string, error) {
	client := openai.NewClient(c.opts...)

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: params,
	})
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
