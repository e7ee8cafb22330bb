package models

// GenerateOptions tunes a single AI generation request
type GenerateOptions struct {
	PreferredProvider string  `json:"preferred_provider,omitempty" example:"groq"`
	MaxTokens         int     `json:"max_tokens,omitempty" example:"1000"`
	Temperature       float32 `json:"temperature,omitempty" example:"0.7"`
}

// AI facade error codes surfaced to callers. The UI branches on these, so
// "no keys", "rate limited" and vendor failures must stay distinct.
const (
	AIErrorNoKeys      = "no_api_keys"
	AIErrorRateLimited = "rate_limited"
	AIErrorAuth        = "auth_invalid"
	AIErrorBilling     = "billing"
	AIErrorNetwork     = "network"
	AIErrorVendor      = "vendor_error"
)

// GenerateResult is the typed result of one AI generation attempt.
// Callers branch on Success; the facade never raises.
type GenerateResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"` // key came from a non-preferred provider
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// GenerateContentRequest represents a direct generation request from the API
type GenerateContentRequest struct {
	Prompt  string          `json:"prompt" binding:"required"`
	Options GenerateOptions `json:"options,omitempty"`
}
