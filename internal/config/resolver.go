package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spachava753/mtgmcp/internal/cardapi"
	"github.com/spachava753/mtgmcp/internal/llm"
)

// DefaultTimeout bounds external calls when no timeout is configured
const DefaultTimeout = 60 * time.Second

// DefaultDeployment is used when no deployment or model is configured
const DefaultDeployment = "gpt-4o"

// Resolve applies environment overrides to raw, validates it and returns the
// effective configuration.
func Resolve(raw *RawConfig, lookup LookupEnv) (*Config, error) {
	if raw == nil {
		raw = &RawConfig{}
	}
	raw.applyEnvOverrides(lookup)

	if err := raw.Validate(); err != nil {
		return nil, err
	}

	summarizer, err := resolveModel("summarizer", raw.Summarizer, lookup)
	if err != nil {
		return nil, err
	}

	deckSrc := raw.Summarizer
	if raw.DeckAI != nil {
		deckSrc = raw.DeckAI.withDefaults(raw.Summarizer)
	}
	deckAI, err := resolveModel("deckai", deckSrc, lookup)
	if err != nil {
		return nil, err
	}

	searchTimeout, err := parseTimeout(raw.Search.Timeout)
	if err != nil {
		return nil, err
	}
	summarizeTimeout, err := parseTimeout(raw.Summarizer.Timeout)
	if err != nil {
		return nil, err
	}

	cardAPIURL := raw.Search.CardAPIURL
	if cardAPIURL == "" {
		cardAPIURL = cardapi.DefaultBaseURL
	}
	pageSize := raw.Search.PageSize
	if pageSize == 0 {
		pageSize = cardapi.DefaultPageSize
	}

	return &Config{
		Summarizer:       summarizer,
		DeckAI:           deckAI,
		SummaryMaxTokens: raw.Summarizer.MaxTokens,
		CardAPIURL:       strings.TrimRight(cardAPIURL, "/"),
		PageSize:         pageSize,
		SearchTimeout:    searchTimeout,
		SummarizeTimeout: summarizeTimeout,
		LogPath:          raw.Log.Path,
		LogLevel:         parseLevel(raw.Log.Level),
		SystemPrompt:     raw.Prompts.System,
		UserPrompt:       raw.Prompts.User,
	}, nil
}

func resolveModel(name string, m ModelConfig, lookup LookupEnv) (llm.Options, error) {
	apiKey := m.resolveAPIKey(lookup)
	if err := validateCredentials(name, m, apiKey); err != nil {
		return llm.Options{}, err
	}

	timeout, err := parseTimeout(m.Timeout)
	if err != nil {
		return llm.Options{}, err
	}

	deployment := m.Deployment
	if deployment == "" {
		deployment = DefaultDeployment
	}

	opts := llm.Options{
		Type:       m.Type,
		Endpoint:   m.Endpoint,
		APIKey:     apiKey,
		Model:      deployment,
		APIVersion: m.APIVersion,
		Timeout:    timeout,
	}
	if opts.Type == "" {
		opts.Type = llm.TypeAzure
	}
	if m.PatchRequest != nil {
		opts.PatchRequest = &llm.PatchRequest{
			JSONPatch:      m.PatchRequest.JSONPatch,
			IncludeHeaders: m.PatchRequest.IncludeHeaders,
		}
	}
	return opts, nil
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout value %q: %w", value, err)
	}
	return d, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
