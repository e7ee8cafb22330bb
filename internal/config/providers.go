package config

import (
	"fmt"
	"strings"
)

// Provider identifiers as stored in the ai_api_keys.provider column
const (
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// ProviderConfig describes one AI vendor: its display metadata, the models
// the UI can offer, and the rotation defaults applied to its keys.
type ProviderConfig struct {
	Name                string   `json:"name"`
	DisplayName         string   `json:"display_name"`
	DefaultModel        string   `json:"default_model"`
	Models              []string `json:"models"`
	DefaultDailyLimit   int64    `json:"default_daily_limit"`
	RateLimitResetHours int      `json:"rate_limit_reset_hours"`
	DocsURL             string   `json:"docs_url"`
}

// ProviderOrder is the fallback order used when a preferred provider has no
// usable key. Groq first: its free tier makes it the cheapest default.
var ProviderOrder = []string{ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

// GetProviderConfigs returns the static catalog of supported AI providers
func GetProviderConfigs() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		ProviderOpenAI: {
			Name:         ProviderOpenAI,
			DisplayName:  "OpenAI",
			DefaultModel: "gpt-4o-mini",
			Models: []string{
				"gpt-4o-mini",
				"gpt-4o",
				"gpt-4-turbo",
				"gpt-3.5-turbo",
			},
			DefaultDailyLimit:   200,
			RateLimitResetHours: 1,
			DocsURL:             "https://platform.openai.com/api-keys",
		},
		ProviderGroq: {
			Name:         ProviderGroq,
			DisplayName:  "Groq",
			DefaultModel: "llama-3.1-8b-instant",
			Models: []string{
				"llama-3.1-8b-instant",
				"llama-3.3-70b-versatile",
				"mixtral-8x7b-32768",
				"gemma2-9b-it",
			},
			DefaultDailyLimit:   100,
			RateLimitResetHours: 24,
			DocsURL:             "https://console.groq.com/keys",
		},
		ProviderAnthropic: {
			Name:         ProviderAnthropic,
			DisplayName:  "Anthropic",
			DefaultModel: "claude-3-5-haiku-20241022",
			Models: []string{
				"claude-3-5-haiku-20241022",
				"claude-3-5-sonnet-20241022",
				"claude-3-opus-20240229",
			},
			DefaultDailyLimit:   200,
			RateLimitResetHours: 1,
			DocsURL:             "https://console.anthropic.com/settings/keys",
		},
		ProviderGoogle: {
			Name:         ProviderGoogle,
			DisplayName:  "Google Gemini",
			DefaultModel: "gemini-1.5-flash",
			Models: []string{
				"gemini-1.5-flash",
				"gemini-1.5-pro",
				"gemini-2.0-flash",
			},
			DefaultDailyLimit:   1500,
			RateLimitResetHours: 24,
			DocsURL:             "https://aistudio.google.com/app/apikey",
		},
	}
}

// GetProviderConfig returns the configuration for a specific provider
func GetProviderConfig(provider string) (ProviderConfig, error) {
	cfg, exists := GetProviderConfigs()[strings.ToLower(provider)]
	if !exists {
		return ProviderConfig{}, fmt.Errorf("provider '%s' is not supported", provider)
	}
	return cfg, nil
}

// IsProviderSupported checks if a provider is supported
func IsProviderSupported(provider string) bool {
	_, exists := GetProviderConfigs()[strings.ToLower(provider)]
	return exists
}

// GetSupportedProviders returns the list of supported providers in fallback order
func GetSupportedProviders() []string {
	return ProviderOrder
}

// DefaultModelFor returns the model to use for a key when the key itself does
// not pin one.
func DefaultModelFor(provider string) string {
	if cfg, err := GetProviderConfig(provider); err == nil {
		return cfg.DefaultModel
	}
	return ""
}
