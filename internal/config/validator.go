package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrMissingCredentials is returned when the summarizer endpoint or API key
// is not configured. The server cannot start without them.
var ErrMissingCredentials = errors.New("missing model endpoint or API key")

// Validate checks if the configuration is valid.
func (c *RawConfig) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"summarizer.timeout": c.Summarizer.Timeout,
		"search.timeout":     c.Search.Timeout,
	}
	if c.DeckAI != nil {
		durations["deckai.timeout"] = c.DeckAI.Timeout
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", field, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s value %q: must be positive", field, value)
		}
	}
	return nil
}

// validateCredentials reports which part of a model endpoint is missing.
func validateCredentials(name string, m ModelConfig, apiKey string) error {
	if m.Endpoint == "" && providerType(m.Type) == "azure" {
		return fmt.Errorf("%w: %s.endpoint is not set (or set $%s)", ErrMissingCredentials, name, EnvAzureEndpoint)
	}
	if apiKey == "" {
		if providerType(m.Type) != "azure" {
			return fmt.Errorf("%w: %s.api_key is not set (or name a variable in %s.api_key_env)", ErrMissingCredentials, name, name)
		}
		return fmt.Errorf("%w: %s.api_key is not set (or set $%s)", ErrMissingCredentials, name, EnvAzureAPIKey)
	}
	return nil
}
