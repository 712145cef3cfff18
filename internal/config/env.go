package config

import "github.com/spachava753/mtgmcp/internal/llm"

// Environment variables that override the configuration file.
const (
	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvAzureDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvCardAPIURL      = "MTG_CARD_API_URL"
)

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// applyEnvOverrides replaces file values with non-empty environment values.
func (c *RawConfig) applyEnvOverrides(lookup LookupEnv) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Summarizer.Endpoint, EnvAzureEndpoint)
	set(&c.Summarizer.APIKey, EnvAzureAPIKey)
	set(&c.Summarizer.Deployment, EnvAzureDeployment)
	set(&c.Search.CardAPIURL, EnvCardAPIURL)
}

// resolveAPIKey returns the inline key, or the value of api_key_env.
func (m ModelConfig) resolveAPIKey(lookup LookupEnv) string {
	if m.APIKey != "" {
		return m.APIKey
	}
	if m.APIKeyEnv != "" {
		if v, ok := lookup(m.APIKeyEnv); ok {
			return v
		}
	}
	return ""
}

// withDefaults fills unset fields of m from base. Connection details are
// only taken from base when both resolve to the same provider type.
func (m ModelConfig) withDefaults(base ModelConfig) ModelConfig {
	if m.Type == "" {
		m.Type = base.Type
	}
	if m.Timeout == "" {
		m.Timeout = base.Timeout
	}
	if providerType(m.Type) != providerType(base.Type) {
		return m
	}

	if m.Endpoint == "" {
		m.Endpoint = base.Endpoint
	}
	if m.APIKey == "" && m.APIKeyEnv == "" {
		m.APIKey = base.APIKey
		m.APIKeyEnv = base.APIKeyEnv
	}
	if m.Deployment == "" {
		m.Deployment = base.Deployment
	}
	if m.APIVersion == "" {
		m.APIVersion = base.APIVersion
	}
	if m.PatchRequest == nil {
		m.PatchRequest = base.PatchRequest
	}
	return m
}

// providerType resolves the empty type to azure.
func providerType(t string) string {
	if t == "" {
		return llm.TypeAzure
	}
	return t
}
