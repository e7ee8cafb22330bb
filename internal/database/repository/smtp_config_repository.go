package repository

import (
	"github.com/raakesh-m/autosendr-backend/internal/models"

	"gorm.io/gorm"
)

type SMTPConfigRepository struct {
	db *gorm.DB
}

func NewSMTPConfigRepository(db *gorm.DB) *SMTPConfigRepository {
	return &SMTPConfigRepository{db: db}
}

// GetByUserID retrieves a user's SMTP configuration
func (r *SMTPConfigRepository) GetByUserID(userID string) (*models.SMTPConfig, error) {
	var cfg models.SMTPConfig
	err := r.db.Where("user_id = ?", userID).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert creates or replaces a user's SMTP configuration
func (r *SMTPConfigRepository) Upsert(cfg *models.SMTPConfig) error {
	var existing models.SMTPConfig
	err := r.db.Where("user_id = ?", cfg.UserID).First(&existing).Error
	if err == nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
		return r.db.Save(cfg).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.Create(cfg).Error
}

// Delete removes a user's SMTP configuration
func (r *SMTPConfigRepository) Delete(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.SMTPConfig{}).Error
}
