package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 4096

type anthropicCompleter struct {
	client anthropic.Client
	model  string
}

func newAnthropicCompleter(opts Options, httpClient *http.Client) *anthropicCompleter {
	reqOpts := []aoption.RequestOption{
		aoption.WithAPIKey(opts.APIKey),
		aoption.WithHTTPClient(httpClient),
		aoption.WithMaxRetries(0),
	}
	if opts.Endpoint != "" {
		reqOpts = append(reqOpts, aoption.WithBaseURL(opts.Endpoint))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, aoption.WithRequestTimeout(opts.Timeout))
	}
	return &anthropicCompleter{
		client: anthropic.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

func (c *anthropicCompleter) Complete(ctx context.Context, req Request) (string, error) {
	system, rest := splitSystem(req.Messages)

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, m := range rest {
		if m.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	maxTokens := int64(defaultAnthropicMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyCompletion
}
