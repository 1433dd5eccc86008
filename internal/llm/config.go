// Package llm provides the completion capability used by the tailoring
// pipeline and its provider implementations.
package llm

import (
	"strings"

	"github.com/jonathan/portfolio-backoffice/internal/config"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is the OpenAI chat completions API, or any compatible endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic messages API
	ProviderAnthropic Provider = "anthropic"
)

// Config holds the model selection for a single completion client.
type Config struct {
	Provider    Provider
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string
	APIKey      string
	JSONMode    bool
}

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-3-7-sonnet-latest",
}

// FromSettings converts the application LLM settings into a client Config.
func FromSettings(s config.LLMConfig) Config {
	return Config{
		Provider:    Provider(strings.ToLower(s.Provider)),
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		BaseURL:     s.BaseURL,
		APIKey:      s.APIKey,
		JSONMode:    s.JSONMode,
	}
}

// ModelName returns the configured model, or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModels[c.Provider]
}
