package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raakesh-m/autosendr-backend/internal/config"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicAdapter dispatches message requests to the Anthropic API
type AnthropicAdapter struct {
	// HTTPClient overrides the default client, used by tests
	HTTPClient *http.Client
}

func (a *AnthropicAdapter) Provider() string {
	return config.ProviderAnthropic
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *AnthropicAdapter) Generate(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32) (string, error) {
	requestBody := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", &VendorError{Provider: config.ProviderAnthropic, Class: ErrClassUnknown, Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", anthropicMessagesURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", &VendorError{Provider: config.ProviderAnthropic, Class: ErrClassUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	client := a.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &VendorError{Provider: config.ProviderAnthropic, Class: ErrClassNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &VendorError{Provider: config.ProviderAnthropic, Class: ErrClassNetwork, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &VendorError{
			Provider:   config.ProviderAnthropic,
			Class:      Classify(resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response: %s", string(body)),
		}
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		message := string(body)
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", &VendorError{
			Provider:   config.ProviderAnthropic,
			Class:      Classify(resp.StatusCode, message),
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &VendorError{Provider: config.ProviderAnthropic, Class: ErrClassUnknown, StatusCode: resp.StatusCode, Message: "no text content in response"}
}
