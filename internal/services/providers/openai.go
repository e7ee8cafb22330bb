package providers

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raakesh-m/autosendr-backend/internal/config"
)

// OpenAIAdapter dispatches chat completions to the OpenAI API
type OpenAIAdapter struct{}

func (a *OpenAIAdapter) Provider() string {
	return config.ProviderOpenAI
}

func (a *OpenAIAdapter) Generate(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32) (string, error) {
	client := openai.NewClient(apiKey)
	return chatCompletion(ctx, client, config.ProviderOpenAI, model, prompt, maxTokens, temperature)
}

// chatCompletion issues one OpenAI-protocol chat completion. Groq speaks the
// same protocol, so both adapters share this path.
func chatCompletion(ctx context.Context, client *openai.Client, provider, model, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapOpenAIError(provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", &VendorError{Provider: provider, Class: ErrClassUnknown, Message: "empty completion response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapOpenAIError normalizes go-openai errors into a VendorError
func wrapOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &VendorError{
			Provider:   provider,
			Class:      Classify(apiErr.HTTPStatusCode, apiErr.Message),
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}
	return &VendorError{
		Provider: provider,
		Class:    Classify(0, err.Error()),
		Message:  err.Error(),
	}
}
