package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact represents a recipient uploaded by a user
type Contact struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID        string `json:"user_id" gorm:"type:uuid;not null;index"`
	Email         string `json:"email" gorm:"type:varchar(255);not null;index"`
	Name          string `json:"name" gorm:"type:varchar(255)"`
	Company       string `json:"company" gorm:"type:varchar(255)"`
	Role          string `json:"role" gorm:"type:varchar(255)"`
	RecruiterName string `json:"recruiter_name" gorm:"type:varchar(255)"`
	Notes         string `json:"notes" gorm:"type:text"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Contact model
func (Contact) TableName() string {
	return "contacts"
}

// BeforeCreate assigns a UUID primary key when none is set
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CreateContactRequest represents the request to create a contact
type CreateContactRequest struct {
	Email         string `json:"email" binding:"required,email" example:"recruiter@acme.com"`
	Name          string `json:"name,omitempty"`
	Company       string `json:"company,omitempty" example:"Acme Corp"`
	Role          string `json:"role,omitempty" example:"Backend Engineer"`
	RecruiterName string `json:"recruiter_name,omitempty" example:"Jane"`
	Notes         string `json:"notes,omitempty"`
}

// UpdateContactRequest represents the request to update a contact
type UpdateContactRequest struct {
	Email         *string `json:"email,omitempty"`
	Name          *string `json:"name,omitempty"`
	Company       *string `json:"company,omitempty"`
	Role          *string `json:"role,omitempty"`
	RecruiterName *string `json:"recruiter_name,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}
