package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderCatalog(t *testing.T) {
	configs := GetProviderConfigs()
	require.Len(t, configs, 4)

	for _, provider := range []string{ProviderOpenAI, ProviderGroq, ProviderAnthropic, ProviderGoogle} {
		cfg, err := GetProviderConfig(provider)
		require.NoError(t, err)
		assert.Equal(t, provider, cfg.Name)
		assert.NotEmpty(t, cfg.DefaultModel)
		assert.Contains(t, cfg.Models, cfg.DefaultModel)
		assert.Greater(t, cfg.RateLimitResetHours, 0)
	}
}

func TestGetProviderConfigUnknown(t *testing.T) {
	_, err := GetProviderConfig("mistral")
	assert.Error(t, err)
}

func TestIsProviderSupported(t *testing.T) {
	assert.True(t, IsProviderSupported(ProviderGroq))
	assert.True(t, IsProviderSupported("GROQ"), "provider matching is case-insensitive")
	assert.False(t, IsProviderSupported("mistral"))
	assert.False(t, IsProviderSupported(""))
}

func TestProviderOrderCoversCatalog(t *testing.T) {
	assert.ElementsMatch(t, GetSupportedProviders(), ProviderOrder)
	assert.Equal(t, ProviderGroq, ProviderOrder[0], "cheapest provider is tried first")
}

func TestDefaultModelFor(t *testing.T) {
	assert.Equal(t, "llama-3.1-8b-instant", DefaultModelFor(ProviderGroq))
	assert.Empty(t, DefaultModelFor("mistral"))
}
