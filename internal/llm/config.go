package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// EnvPrefix prefixes every environment variable ConfigFromEnv reads.
const EnvPrefix = "STUDYTRACK_"

// Config selects and configures a provider.
type Config struct {
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig holds credentials and model for one provider. BaseURL is
// only honoured by OpenAI-compatible providers.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures exponential backoff.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultConfig returns the defaults: Anthropic Haiku, three attempts and
// a 60 second budget per call.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// section returns the ProviderConfig for name, or nil.
func (c *Config) section(name string) *ProviderConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	default:
		return nil
	}
}

// ConfigFromEnv overlays STUDYTRACK_LLM_PROVIDER and the per-provider
// STUDYTRACK_<NAME>_API_KEY, _MODEL and _BASE_URL variables on the
// defaults. When no provider is named and no prefixed key is set, the
// conventional unprefixed keys are probed.
func ConfigFromEnv() Config {
	return configFromLookup(os.LookupEnv)
}

var envNames = map[string]string{
	ProviderAnthropic:  "ANTHROPIC",
	ProviderOpenAI:     "OPENAI",
	ProviderGemini:     "GEMINI",
	ProviderOpenRouter: "OPENROUTER",
}

func configFromLookup(lookup func(string) (string, bool)) Config {
	cfg := DefaultConfig()
	get := func(name string) string {
		v, _ := lookup(name)
		return v
	}

	anyKey := false
	for provider, env := range envNames {
		sec := cfg.section(provider)
		if v := get(EnvPrefix + env + "_API_KEY"); v != "" {
			sec.APIKey = v
			anyKey = true
		}
		if v := get(EnvPrefix + env + "_MODEL"); v != "" {
			sec.Model = v
		}
		if v := get(EnvPrefix + env + "_BASE_URL"); v != "" {
			sec.BaseURL = v
		}
	}

	if p := get(EnvPrefix + "LLM_PROVIDER"); p != "" {
		cfg.Provider = p
		return cfg
	}
	if anyKey {
		for _, p := range []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter} {
			if cfg.section(p).APIKey != "" {
				cfg.Provider = p
				break
			}
		}
		return cfg
	}

	// Conventional keys in priority order.
	for _, p := range []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter} {
		if v := get(envNames[p] + "_API_KEY"); v != "" {
			cfg.Provider = p
			cfg.section(p).APIKey = v
			break
		}
	}
	return cfg
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	sec := c.section(c.Provider)
	if sec == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if sec.APIKey == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider", EnvPrefix, envNames[c.Provider], c.Provider)
	}
	return nil
}

// Model returns the configured model name for the selected provider.
func (c Config) Model() string {
	if sec := c.section(c.Provider); sec != nil {
		return sec.Model
	}
	return c.Provider
}

// resolveModel maps a short model name to a provider model ID. Unknown
// names pass through unchanged.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
