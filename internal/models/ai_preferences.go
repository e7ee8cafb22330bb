package models

import (
	"time"
)

// AIPreferences holds per-user AI routing settings. Exactly one row per user,
// created lazily with defaults on first read.
type AIPreferences struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Defaults live in GetOrCreate, not in column default tags: gorm would
	// drop a zero-valued flag carrying a default tag from the INSERT
	UserID               string `json:"user_id" gorm:"type:uuid;not null;unique;index"`
	EnableGlobalRotation bool   `json:"enable_global_rotation"`
	PreferredProvider    string `json:"preferred_provider" gorm:"type:varchar(20)" example:"groq"`
	FallbackEnabled      bool   `json:"fallback_enabled"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the AIPreferences model
func (AIPreferences) TableName() string {
	return "ai_preferences"
}

// UpdateAIPreferencesRequest represents the request to update AI preferences
type UpdateAIPreferencesRequest struct {
	EnableGlobalRotation *bool   `json:"enable_global_rotation,omitempty"`
	PreferredProvider    *string `json:"preferred_provider,omitempty" example:"openai"`
	FallbackEnabled      *bool   `json:"fallback_enabled,omitempty"`
}
