package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// SMTPConfigService manages a user's mail transport settings
type SMTPConfigService struct {
	smtpRepo *repository.SMTPConfigRepository
}

func NewSMTPConfigService(smtpRepo *repository.SMTPConfigRepository) *SMTPConfigService {
	return &SMTPConfigService{smtpRepo: smtpRepo}
}

// GetConfig returns the user's SMTP settings
func (s *SMTPConfigService) GetConfig(userID string) (*models.SMTPConfig, error) {
	cfg, err := s.smtpRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSMTPConfig
		}
		return nil, err
	}
	return cfg, nil
}

// UpsertConfig creates or replaces the user's SMTP settings
func (s *SMTPConfigService) UpsertConfig(userID string, req *models.UpsertSMTPConfigRequest) (*models.SMTPConfig, error) {
	useTLS := true
	if req.UseTLS != nil {
		useTLS = *req.UseTLS
	}

	cfg := &models.SMTPConfig{
		UserID:    userID,
		Host:      req.Host,
		Port:      req.Port,
		Username:  req.Username,
		Password:  req.Password,
		FromEmail: req.FromEmail,
		FromName:  req.FromName,
		UseTLS:    useTLS,
	}
	if err := s.smtpRepo.Upsert(cfg); err != nil {
		return nil, fmt.Errorf("failed to save SMTP settings: %w", err)
	}
	return cfg, nil
}

// DeleteConfig removes the user's SMTP settings
func (s *SMTPConfigService) DeleteConfig(userID string) error {
	return s.smtpRepo.Delete(userID)
}
