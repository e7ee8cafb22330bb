package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailTemplate represents a reusable outreach email template.
// Subject and body may contain {{recruiter}}, {{company}} and {{role}}
// placeholders that are filled in per contact at send time.
type EmailTemplate struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    string `json:"user_id" gorm:"type:uuid;not null;index"`
	Name      string `json:"name" gorm:"type:varchar(255);not null"`
	Subject   string `json:"subject" gorm:"type:text;not null"`
	Body      string `json:"body" gorm:"type:text;not null"`
	AIRules   string `json:"ai_rules" gorm:"type:text"` // free-text instructions appended to enhancement prompts
	IsDefault bool   `json:"is_default" gorm:"default:false;index"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the EmailTemplate model
func (EmailTemplate) TableName() string {
	return "email_templates"
}

// BeforeCreate assigns a UUID primary key when none is set
func (t *EmailTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// CreateTemplateRequest represents the request to create a template
type CreateTemplateRequest struct {
	Name      string `json:"name" binding:"required,max=255" example:"Default outreach"`
	Subject   string `json:"subject" binding:"required" example:"Application for {{role}} at {{company}}"`
	Body      string `json:"body" binding:"required"`
	AIRules   string `json:"ai_rules,omitempty"`
	IsDefault *bool  `json:"is_default,omitempty"`
}

// UpdateTemplateRequest represents the request to update a template
type UpdateTemplateRequest struct {
	Name      *string `json:"name,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	Body      *string `json:"body,omitempty"`
	AIRules   *string `json:"ai_rules,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}
