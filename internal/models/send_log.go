package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Send outcome values recorded per contact
const (
	SendStatusSent    = "sent"
	SendStatusFailed  = "failed"
	SendStatusSkipped = "skipped"
)

// SendLog is the durable audit record for every attempted email send
type SendLog struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`

	UserID       string `json:"user_id" gorm:"type:uuid;not null;index"`
	SessionID    string `json:"session_id" gorm:"type:varchar(100);index"` // campaign session, empty for single sends
	ContactEmail string `json:"contact_email" gorm:"type:varchar(255);not null;index"`
	Subject      string `json:"subject" gorm:"type:text"`
	Status       string `json:"status" gorm:"type:varchar(20);not null;index" example:"sent"` // sent, failed, skipped
	ErrorMessage string `json:"error_message,omitempty" gorm:"type:text"`
	AIEnhanced   bool   `json:"ai_enhanced" gorm:"default:false"`
	AIProvider   string `json:"ai_provider,omitempty" gorm:"type:varchar(20)"`
	Metadata     JSON   `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the SendLog model
func (SendLog) TableName() string {
	return "send_logs"
}

// BeforeCreate assigns a UUID primary key when none is set
func (l *SendLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// SendLogResponse represents the response for send log listings
type SendLogResponse struct {
	ID           string `json:"id"`
	SessionID    string `json:"session_id,omitempty"`
	ContactEmail string `json:"contact_email"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	AIEnhanced   bool   `json:"ai_enhanced"`
	AIProvider   string `json:"ai_provider,omitempty"`
	CreatedAt    string `json:"created_at"`
}
