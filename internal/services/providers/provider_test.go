package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raakesh-m/autosendr-backend/internal/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		want       string
	}{
		{"http 429", 429, "Too Many Requests", ErrClassRateLimit},
		{"rate limit wording", 0, "Rate limit reached for model", ErrClassRateLimit},
		{"quota wording", 0, "You exceeded your current quota", ErrClassRateLimit},
		{"insufficient_quota is billing not rate limit", 429, "insufficient_quota: please check your plan", ErrClassBilling},
		{"http 402", 402, "Payment Required", ErrClassBilling},
		{"billing wording", 0, "billing hard limit reached", ErrClassBilling},
		{"http 401", 401, "Unauthorized", ErrClassAuth},
		{"http 403", 403, "Forbidden", ErrClassAuth},
		{"invalid key wording", 0, "Invalid API key provided", ErrClassAuth},
		{"google key wording", 400, "API key not valid. Please pass a valid API key.", ErrClassAuth},
		{"connection refused", 0, "dial tcp: connection refused", ErrClassNetwork},
		{"timeout", 0, "context deadline exceeded", ErrClassNetwork},
		{"unknown vendor error", 500, "internal server error", ErrClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.statusCode, tt.message))
		})
	}
}

func TestClassOf(t *testing.T) {
	err := &VendorError{Provider: config.ProviderGroq, Class: ErrClassRateLimit, StatusCode: 429, Message: "slow down"}
	assert.Equal(t, ErrClassRateLimit, ClassOf(err))
	assert.Equal(t, ErrClassUnknown, ClassOf(errors.New("plain error")))
}

func TestForProvider(t *testing.T) {
	for _, provider := range config.GetSupportedProviders() {
		adapter, err := ForProvider(provider)
		require.NoError(t, err)
		assert.Equal(t, provider, adapter.Provider())
	}

	_, err := ForProvider("mistral")
	assert.Error(t, err)
}

// roundTripFunc lets a test stand in for the Anthropic API
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func canned(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestAnthropicAdapterGenerate(t *testing.T) {
	var captured *http.Request
	adapter := &AnthropicAdapter{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			return canned(200, `{"content":[{"type":"text","text":"Hello from Claude"}]}`), nil
		})},
	}

	content, err := adapter.Generate(context.Background(), "sk-test", "claude-3-5-haiku-latest", "say hello", 100, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "Hello from Claude", content)

	require.NotNil(t, captured)
	assert.Equal(t, "sk-test", captured.Header.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", captured.Header.Get("anthropic-version"))
}

func TestAnthropicAdapterRateLimitError(t *testing.T) {
	adapter := &AnthropicAdapter{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return canned(429, `{"error":{"type":"rate_limit_error","message":"Number of requests has exceeded your rate limit"}}`), nil
		})},
	}

	_, err := adapter.Generate(context.Background(), "sk-test", "claude-3-5-haiku-latest", "p", 100, 0)
	require.Error(t, err)
	assert.Equal(t, ErrClassRateLimit, ClassOf(err))

	var vendorErr *VendorError
	require.ErrorAs(t, err, &vendorErr)
	assert.Equal(t, 429, vendorErr.StatusCode)
}

func TestAnthropicAdapterAuthError(t *testing.T) {
	adapter := &AnthropicAdapter{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return canned(401, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`), nil
		})},
	}

	_, err := adapter.Generate(context.Background(), "bad-key", "claude-3-5-haiku-latest", "p", 100, 0)
	require.Error(t, err)
	assert.Equal(t, ErrClassAuth, ClassOf(err))
}

func TestAnthropicAdapterNetworkError(t *testing.T) {
	adapter := &AnthropicAdapter{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		})},
	}

	_, err := adapter.Generate(context.Background(), "sk-test", "claude-3-5-haiku-latest", "p", 100, 0)
	require.Error(t, err)
	assert.Equal(t, ErrClassNetwork, ClassOf(err))
}
