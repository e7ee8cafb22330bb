package models

import (
	"time"
)

// CampaignContact is one recipient within a bulk run. Campaigns accept either
// stored contact IDs or inline contact data from an uploaded list.
type CampaignContact struct {
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"name,omitempty"`
	Company       string `json:"company,omitempty"`
	Role          string `json:"role,omitempty"`
	RecruiterName string `json:"recruiter_name,omitempty"`
}

// RunCampaignRequest represents the request to start a bulk send
type RunCampaignRequest struct {
	TemplateID    string            `json:"template_id" binding:"required"`
	Contacts      []CampaignContact `json:"contacts" binding:"required,min=1,dive"`
	UseAI         bool              `json:"use_ai"`
	Provider      string            `json:"provider,omitempty" example:"groq"` // preferred AI provider for this run
	AttachmentIDs []string          `json:"attachment_ids,omitempty"`
}

// RunCampaignResponse is returned immediately after a campaign is accepted
type RunCampaignResponse struct {
	SessionID string `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Total     int    `json:"total"`
	Message   string `json:"message"`
}

// CampaignProgress is the ephemeral, process-lifetime progress record for a
// campaign session. sent+failed+skipped never decreases until completed.
type CampaignProgress struct {
	SessionID       string    `json:"session_id"`
	Percent         int       `json:"percent"`
	Total           int       `json:"total"`
	Processed       int       `json:"processed"`
	Sent            int       `json:"sent"`
	Failed          int       `json:"failed"`
	Skipped         int       `json:"skipped"`
	AIEnhanced      int       `json:"ai_enhanced"`
	CurrentActivity string    `json:"current_activity"`
	Logs            []string  `json:"logs"`
	ETA             string    `json:"eta,omitempty"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SendEmailRequest represents a single (non-bulk) send
type SendEmailRequest struct {
	TemplateID string          `json:"template_id" binding:"required"`
	Contact    CampaignContact `json:"contact" binding:"required"`
	UseAI      bool            `json:"use_ai"`
	Provider   string          `json:"provider,omitempty"`
}

// SendEmailResponse represents the result of a single send
type SendEmailResponse struct {
	Success    bool   `json:"success"`
	Subject    string `json:"subject,omitempty"`
	AIEnhanced bool   `json:"ai_enhanced"`
	Error      string `json:"error,omitempty"`
}
