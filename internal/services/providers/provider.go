package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raakesh-m/autosendr-backend/internal/config"
)

// Error classes shared by all adapters. Callers branch on these to decide
// whether to penalize the key (rate limit) or leave it untouched.
const (
	ErrClassRateLimit = "rate_limit"
	ErrClassAuth      = "auth"
	ErrClassBilling   = "billing"
	ErrClassNetwork   = "network"
	ErrClassUnknown   = "unknown"
)

// VendorError is the normalized error shape returned by every adapter
type VendorError struct {
	Provider   string
	Class      string
	StatusCode int
	Message    string
}

func (e *VendorError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ClassOf extracts the error class from an adapter error
func ClassOf(err error) string {
	var vendorErr *VendorError
	if errors.As(err, &vendorErr) {
		return vendorErr.Class
	}
	return ErrClassUnknown
}

// Classify maps a vendor status code and message to an error class.
// Detection is substring and status-code based: vendors disagree on error
// envelopes but are consistent about 429s and the words they use.
func Classify(statusCode int, message string) string {
	lower := strings.ToLower(message)

	// insufficient_quota is OpenAI-speak for an exhausted billing plan, not a
	// transient rate limit; check it before the generic quota match
	if statusCode == 402 ||
		strings.Contains(lower, "insufficient_quota") ||
		strings.Contains(lower, "billing") ||
		strings.Contains(lower, "payment") {
		return ErrClassBilling
	}
	if statusCode == 429 ||
		strings.Contains(lower, "429") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "quota") {
		return ErrClassRateLimit
	}
	if statusCode == 401 || statusCode == 403 ||
		strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "invalid x-api-key") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "api key not valid") {
		return ErrClassAuth
	}
	if statusCode == 0 &&
		(strings.Contains(lower, "connection") ||
			strings.Contains(lower, "timeout") ||
			strings.Contains(lower, "no such host") ||
			strings.Contains(lower, "context deadline exceeded")) {
		return ErrClassNetwork
	}
	return ErrClassUnknown
}

// Adapter wraps one vendor's chat/completion call. Adapters are stateless and
// never retry; fallback and penalization happen in the caller.
type Adapter interface {
	Provider() string
	Generate(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32) (string, error)
}

// ForProvider returns the adapter for a provider identifier
func ForProvider(provider string) (Adapter, error) {
	switch strings.ToLower(provider) {
	case config.ProviderOpenAI:
		return &OpenAIAdapter{}, nil
	case config.ProviderGroq:
		return &GroqAdapter{}, nil
	case config.ProviderAnthropic:
		return &AnthropicAdapter{}, nil
	case config.ProviderGoogle:
		return &GoogleAdapter{}, nil
	default:
		return nil, fmt.Errorf("no adapter for provider '%s'", provider)
	}
}
