package models

import (
	"time"
)

// SMTPConfig holds a user's outbound mail transport settings. One row per user.
type SMTPConfig struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    string `json:"user_id" gorm:"type:uuid;not null;unique;index"`
	Host      string `json:"host" gorm:"type:varchar(255);not null" example:"smtp.gmail.com"`
	Port      int    `json:"port" gorm:"default:587"`
	Username  string `json:"username" gorm:"type:varchar(255);not null"`
	Password  string `json:"-" gorm:"type:varchar(500);not null"`
	FromEmail string `json:"from_email" gorm:"type:varchar(255);not null"`
	FromName  string `json:"from_name" gorm:"type:varchar(255)"`
	UseTLS    bool   `json:"use_tls" gorm:"default:true"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the SMTPConfig model
func (SMTPConfig) TableName() string {
	return "smtp_configs"
}

// UpsertSMTPConfigRequest represents the request to create or replace SMTP settings
type UpsertSMTPConfigRequest struct {
	Host      string `json:"host" binding:"required" example:"smtp.gmail.com"`
	Port      int    `json:"port" binding:"required,min=1,max=65535" example:"587"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FromEmail string `json:"from_email" binding:"required,email"`
	FromName  string `json:"from_name,omitempty"`
	UseTLS    *bool  `json:"use_tls,omitempty"`
}
