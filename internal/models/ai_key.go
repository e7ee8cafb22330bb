package models

import (
	"time"
)

// AIApiKey represents an AI provider API key owned by a user.
// Usage counters reset daily; rate_limit_hit_at marks the moment the vendor
// returned a 429/quota error and keeps the key out of rotation until the
// provider's reset window elapses.
type AIApiKey struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   string `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_ai_keys_user_provider_name"`
	Provider string `json:"provider" gorm:"type:varchar(20);not null;index;uniqueIndex:idx_ai_keys_user_provider_name" example:"groq"` // openai, groq, anthropic, google
	KeyName  string `json:"key_name" gorm:"type:varchar(100);not null;uniqueIndex:idx_ai_keys_user_provider_name"`
	APIKey   string `json:"-" gorm:"type:varchar(500);not null"`

	PreferredModel string `json:"preferred_model" gorm:"type:varchar(100)"` // empty means provider default

	// No column defaults on the flags: gorm drops zero-valued fields carrying
	// a default tag from the INSERT, which would turn an explicit false back
	// into true. CreateKey always sets both.
	IsActive        bool `json:"is_active" gorm:"index"`
	RotationEnabled bool `json:"rotation_enabled"`

	UsageCount     int64      `json:"usage_count" gorm:"default:0"`
	DailyLimit     *int64     `json:"daily_limit,omitempty"` // advisory only, vendor 429s are authoritative
	LastUsedAt     *time.Time `json:"last_used_at"`
	DailyResetAt   time.Time  `json:"daily_reset_at" gorm:"type:date"`
	RateLimitHitAt *time.Time `json:"rate_limit_hit_at"`

	Notes string `json:"notes" gorm:"type:text"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the AIApiKey model
func (AIApiKey) TableName() string {
	return "ai_api_keys"
}

// MaskedKey returns the key material with all but the last four characters hidden
func (k *AIApiKey) MaskedKey() string {
	if len(k.APIKey) <= 4 {
		return "****"
	}
	return "****" + k.APIKey[len(k.APIKey)-4:]
}

// CreateAIKeyRequest represents the request to register a new AI API key
type CreateAIKeyRequest struct {
	Provider        string `json:"provider" binding:"required,oneof=openai groq anthropic google" example:"groq"`
	KeyName         string `json:"key_name" binding:"required,min=1,max=100" example:"groq-primary"`
	APIKey          string `json:"api_key" binding:"required" example:"gsk_..."`
	PreferredModel  string `json:"preferred_model,omitempty" example:"llama-3.1-8b-instant"`
	RotationEnabled *bool  `json:"rotation_enabled,omitempty"`
	DailyLimit      *int64 `json:"daily_limit,omitempty" example:"14400"`
	Notes           string `json:"notes,omitempty"`
}

// UpdateAIKeyRequest represents the request to update an AI API key
type UpdateAIKeyRequest struct {
	KeyName         *string `json:"key_name,omitempty"`
	APIKey          *string `json:"api_key,omitempty"`
	PreferredModel  *string `json:"preferred_model,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	RotationEnabled *bool   `json:"rotation_enabled,omitempty"`
	DailyLimit      *int64  `json:"daily_limit,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// AIKeyResponse represents the response for AI key operations
type AIKeyResponse struct {
	ID              uint       `json:"id"`
	Provider        string     `json:"provider" example:"groq"`
	KeyName         string     `json:"key_name" example:"groq-primary"`
	MaskedKey       string     `json:"masked_key" example:"****ab12"`
	PreferredModel  string     `json:"preferred_model,omitempty"`
	IsActive        bool       `json:"is_active"`
	RotationEnabled bool       `json:"rotation_enabled"`
	UsageCount      int64      `json:"usage_count"`
	DailyLimit      *int64     `json:"daily_limit,omitempty"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
	RateLimitHitAt  *time.Time `json:"rate_limit_hit_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}
