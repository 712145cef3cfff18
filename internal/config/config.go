package config

import (
	"log/slog"
	"time"

	"github.com/spachava753/mtgmcp/internal/llm"
)

// RawConfig is the configuration file as written by the user
type RawConfig struct {
	// Summarizer is the chat model that writes card summaries
	Summarizer ModelConfig `yaml:"summarizer" json:"summarizer" jsonschema:"description=Chat model used to summarize found cards"`

	// DeckAI is the chat model that turns requests into card queries.
	// Unset fields fall back to the summarizer settings.
	DeckAI *ModelConfig `yaml:"deckai,omitempty" json:"deckai,omitempty" jsonschema:"description=Chat model used to translate requests into card queries; defaults to the summarizer"`

	Search  SearchConfig `yaml:"search,omitempty" json:"search,omitempty"`
	Log     LogConfig    `yaml:"log,omitempty" json:"log,omitempty"`
	Prompts PromptConfig `yaml:"prompts,omitempty" json:"prompts,omitempty"`

	// Version for future compatibility
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// ModelConfig configures one chat model endpoint
type ModelConfig struct {
	Type       string `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=azure openai anthropic gemini" jsonschema:"enum=azure,enum=openai,enum=anthropic,enum=gemini,description=Provider type; defaults to azure"`
	Endpoint   string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url" jsonschema:"description=Provider endpoint URL"`
	APIKey     string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"description=API key; prefer api_key_env"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty" json:"api_key_env,omitempty" jsonschema:"description=Environment variable holding the API key"`
	Deployment string `yaml:"deployment,omitempty" json:"deployment,omitempty" jsonschema:"description=Azure deployment or model name"`
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty" jsonschema:"description=Azure OpenAI API version"`
	Timeout    string `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Request timeout as a Go duration"`
	MaxTokens  int    `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" validate:"gte=0"`

	// PatchRequest modifies every outgoing provider request
	PatchRequest *PatchRequestConfig `yaml:"patchRequest,omitempty" json:"patchRequest,omitempty"`
}

// PatchRequestConfig holds configuration for patching HTTP requests
type PatchRequestConfig struct {
	JSONPatch      []map[string]interface{} `json:"jsonPatch,omitempty" yaml:"jsonPatch,omitempty"`
	IncludeHeaders map[string]string        `json:"includeHeaders,omitempty" yaml:"includeHeaders,omitempty"`
}

// SearchConfig configures the card API
type SearchConfig struct {
	CardAPIURL string `yaml:"card_api_url,omitempty" json:"card_api_url,omitempty" validate:"omitempty,url"`
	PageSize   int    `yaml:"page_size,omitempty" json:"page_size,omitempty" validate:"gte=0,lte=100"`
	Timeout    string `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Deadline for the whole card search as a Go duration"`
}

// LogConfig configures diagnostics
type LogConfig struct {
	// Path of the tool call log; defaults to mcp-tool-calls.log next to the server
	Path  string `yaml:"path,omitempty" json:"path,omitempty"`
	Level string `yaml:"level,omitempty" json:"level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// PromptConfig overrides the summarizer prompt templates
type PromptConfig struct {
	System string `yaml:"system,omitempty" json:"system,omitempty" jsonschema:"description=Go template for the system prompt"`
	User   string `yaml:"user,omitempty" json:"user,omitempty" jsonschema:"description=Go template for the user prompt; has .Query .Cards .CardsJSON and .Count"`
}

// Config is the effective runtime configuration
type Config struct {
	Summarizer llm.Options
	DeckAI     llm.Options
	// SummaryMaxTokens caps summaries when positive
	SummaryMaxTokens int

	CardAPIURL       string
	PageSize         int
	SearchTimeout    time.Duration
	SummarizeTimeout time.Duration

	LogPath  string
	LogLevel slog.Level

	SystemPrompt string
	UserPrompt   string
}
