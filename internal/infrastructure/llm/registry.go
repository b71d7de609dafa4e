package llm

import (
	"fmt"
	"strings"
)

// Supported provider names
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultGeminiModel is used when no model is configured for Gemini
const DefaultGeminiModel = "gemini-2.0-flash"

// NewProvider builds the provider named by cfg.Name
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case ProviderGemini, "":
		cfg.Name = ProviderGemini
		if cfg.BaseURL == "" {
			cfg.BaseURL = GeminiBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultGeminiModel
		}
		return NewOpenAIProvider(cfg)
	case ProviderOpenAI:
		cfg.Name = ProviderOpenAI
		return NewOpenAIProvider(cfg)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Name)
	}
}
