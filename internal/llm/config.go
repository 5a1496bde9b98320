package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects one backend.
type Config struct {
	// Provider is "anthropic", "openai", "gemini", "openrouter" or "mock".
	Provider string
	APIKey   string

	// Model is a friendly alias or a backend model ID. Empty picks the
	// backend's default.
	Model string

	// BaseURL overrides the backend endpoint. openrouter sets it by default.
	BaseURL string

	Retry RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// RetryConfig configures backoff for temporary failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// backend describes what each provider name needs.
type backend struct {
	keyEnv       string
	defaultModel string
	baseURL      string
}

var backends = map[string]backend{
	"anthropic":  {keyEnv: "ANTHROPIC_API_KEY", defaultModel: "claude-haiku"},
	"openai":     {keyEnv: "OPENAI_API_KEY", defaultModel: "gpt-4o-mini"},
	"gemini":     {keyEnv: "GEMINI_API_KEY", defaultModel: "gemini-flash"},
	"openrouter": {keyEnv: "OPENROUTER_API_KEY", defaultModel: "google/gemini-2.0-flash-001", baseURL: "https://openrouter.ai/api/v1"},
	"mock":       {defaultModel: "mock"},
}

// discoveryOrder is the order standard key variables are checked in.
var discoveryOrder = []string{"gemini", "openai", "anthropic", "openrouter"}

// DefaultRetry allows three attempts over roughly ten seconds.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2,
	}
}

// ForProvider returns a Config for name with its defaults filled in. The
// API key is read from the backend's standard variable.
func ForProvider(name string) Config {
	b := backends[name]
	return Config{
		Provider: name,
		APIKey:   os.Getenv(b.keyEnv),
		Model:    b.defaultModel,
		BaseURL:  b.baseURL,
		Retry:    DefaultRetry(),
		Timeout:  30 * time.Second,
	}
}

// ConfigFromEnv reads FAULTDRILL_LLM_PROVIDER, FAULTDRILL_LLM_API_KEY,
// FAULTDRILL_LLM_MODEL and FAULTDRILL_LLM_BASE_URL. ok is false when no
// provider is named.
func ConfigFromEnv() (Config, bool) {
	name := os.Getenv("FAULTDRILL_LLM_PROVIDER")
	if name == "" {
		return Config{}, false
	}
	cfg := ForProvider(name)
	if k := os.Getenv("FAULTDRILL_LLM_API_KEY"); k != "" {
		cfg.APIKey = k
	}
	if m := os.Getenv("FAULTDRILL_LLM_MODEL"); m != "" {
		cfg.Model = m
	}
	if u := os.Getenv("FAULTDRILL_LLM_BASE_URL"); u != "" {
		cfg.BaseURL = u
	}
	return cfg, true
}

// DiscoverConfig picks the first backend whose standard API key variable
// is set, trying Gemini, OpenAI, Anthropic then OpenRouter.
func DiscoverConfig() (Config, bool) {
	for _, name := range discoveryOrder {
		if os.Getenv(backends[name].keyEnv) != "" {
			return ForProvider(name), true
		}
	}
	return Config{}, false
}

// Validate checks the provider name and that a key is present.
func (c Config) Validate() error {
	b, ok := backends[c.Provider]
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if b.keyEnv != "" && c.APIKey == "" {
		return fmt.Errorf("%s provider needs an API key (FAULTDRILL_LLM_API_KEY or %s)", c.Provider, b.keyEnv)
	}
	return nil
}
