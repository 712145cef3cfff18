package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// openaiCompleter talks to Azure OpenAI deployments or any OpenAI compatible
// chat completions endpoint.
type openaiCompleter struct {
	client openai.Client
	model  string
}

func newOpenAICompleter(opts Options, httpClient *http.Client, isAzure bool) *openaiCompleter {
	reqOpts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	if isAzure {
		apiVersion := opts.APIVersion
		if apiVersion == "" {
			apiVersion = DefaultAzureAPIVersion
		}
		reqOpts = append(reqOpts,
			azure.WithEndpoint(opts.Endpoint, apiVersion),
			azure.WithAPIKey(opts.APIKey),
		)
	} else {
		baseURL := opts.Endpoint
		if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
			baseURL = baseURL + "/"
		}
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
		if baseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
		}
	}

	return &openaiCompleter{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

func (c *openaiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			return choice.Message.Content, nil
		}
	}
	return "", ErrEmptyCompletion
}
