package providers

import (
	"context"
	"errors"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/raakesh-m/autosendr-backend/internal/config"
)

// GoogleAdapter dispatches generation requests to the Gemini API
type GoogleAdapter struct{}

func (a *GoogleAdapter) Provider() string {
	return config.ProviderGoogle
}

func (a *GoogleAdapter) Generate(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", wrapGoogleError(err)
	}
	defer client.Close()

	m := client.GenerativeModel(model)
	m.SetMaxOutputTokens(int32(maxTokens))
	m.SetTemperature(temperature)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapGoogleError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &VendorError{Provider: config.ProviderGoogle, Class: ErrClassUnknown, Message: "no candidates in response"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", &VendorError{Provider: config.ProviderGoogle, Class: ErrClassUnknown, Message: "no text content in response"}
	}
	return sb.String(), nil
}

// wrapGoogleError normalizes Gemini SDK errors into a VendorError
func wrapGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &VendorError{
			Provider:   config.ProviderGoogle,
			Class:      Classify(apiErr.Code, apiErr.Message),
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
		}
	}
	return &VendorError{
		Provider: config.ProviderGoogle,
		Class:    Classify(0, err.Error()),
		Message:  err.Error(),
	}
}
