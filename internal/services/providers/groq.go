package providers

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raakesh-m/autosendr-backend/internal/config"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter dispatches chat completions to Groq's OpenAI-compatible API
type GroqAdapter struct{}

func (a *GroqAdapter) Provider() string {
	return config.ProviderGroq
}

func (a *GroqAdapter) Generate(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32) (string, error) {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	client := openai.NewClientWithConfig(cfg)
	return chatCompletion(ctx, client, config.ProviderGroq, model, prompt, maxTokens, temperature)
}
