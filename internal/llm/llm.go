// Package llm wraps the chat-completion providers used for card summaries and
// query extraction behind a single Completer interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    Role
	Content string
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Request is a single completion request.
type Request struct {
	Messages []Message
	// Temperature is always sent; callers choose it explicitly.
	Temperature float64
	// MaxTokens caps the completion length when positive.
	MaxTokens int
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

// Completer produces the first text segment of a chat completion.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrEmptyCompletion is returned when a provider responds without any text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// Provider types.
const (
	TypeAzure     = "azure"
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
	TypeGemini    = "gemini"
)

// DefaultAzureAPIVersion is used when no api version is configured for azure.
const DefaultAzureAPIVersion = "2024-10-21"

// PatchRequest describes modifications applied to every outgoing provider request.
type PatchRequest struct {
	JSONPatch      []map[string]any
	IncludeHeaders map[string]string
}

// Options configures a provider client.
type Options struct {
	// Type is one of azure, openai, anthropic or gemini. Empty means azure.
	Type       string
	Endpoint   string
	APIKey     string
	Model      string
	APIVersion string
	Timeout    time.Duration
	// PatchRequest is optional.
	PatchRequest *PatchRequest
	// HTTPClient overrides the client used for provider calls. Its transport
	// is wrapped when PatchRequest is set.
	HTTPClient *http.Client
}

// New builds a Completer for the configured provider type.
func New(ctx context.Context, opts Options) (Completer, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	httpClient, err := buildHTTPClient(opts)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(opts.Type) {
	case "", TypeAzure:
		return newOpenAICompleter(opts, httpClient, true), nil
	case TypeOpenAI:
		return newOpenAICompleter(opts, httpClient, false), nil
	case TypeAnthropic:
		return newAnthropicCompleter(opts, httpClient), nil
	case TypeGemini:
		return newGeminiCompleter(ctx, opts, httpClient)
	default:
		return nil, fmt.Errorf("unsupported provider type %q", opts.Type)
	}
}

func buildHTTPClient(opts Options) (*http.Client, error) {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	if opts.Timeout > 0 && client.Timeout == 0 {
		client.Timeout = opts.Timeout
	}

	if opts.PatchRequest != nil {
		rt, err := BuildPatchTransport(client.Transport, opts.PatchRequest)
		if err != nil {
			return nil, err
		}
		client.Transport = rt
	}
	return &client, nil
}

// splitSystem separates system messages from the conversation for providers
// that take the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	var rest []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
