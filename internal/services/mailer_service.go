package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// ErrNoSMTPConfig is returned when a user tries to send without configuring
// mail transport settings
var ErrNoSMTPConfig = errors.New("SMTP settings are not configured")

// EmailAttachment references a staged local file to attach
type EmailAttachment struct {
	Name string
	Path string
}

// OutgoingEmail is one message handed to the mail transport
type OutgoingEmail struct {
	To          string
	Subject     string
	TextBody    string
	Attachments []EmailAttachment
}

// MailerService sends email through the user's configured SMTP server
type MailerService struct {
	smtpRepo *repository.SMTPConfigRepository
	// dial is swappable for tests; defaults to gomail DialAndSend
	dial func(cfg *models.SMTPConfig, msg *gomail.Message) error
}

func NewMailerService(smtpRepo *repository.SMTPConfigRepository) *MailerService {
	return &MailerService{
		smtpRepo: smtpRepo,
		dial:     dialAndSend,
	}
}

func dialAndSend(cfg *models.SMTPConfig, msg *gomail.Message) error {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Port == 465 {
		dialer.SSL = true
	}
	return dialer.DialAndSend(msg)
}

// SendEmail sends one message using the user's SMTP configuration
func (s *MailerService) SendEmail(userID string, email *OutgoingEmail) error {
	cfg, err := s.smtpRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSMTPConfig
		}
		return fmt.Errorf("failed to load SMTP settings: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", cfg.FromEmail, cfg.FromName)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.TextBody)
	for _, att := range email.Attachments {
		msg.Attach(att.Path, gomail.Rename(att.Name))
	}

	if err := s.dial(cfg, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}

	logrus.Infof("Email sent to %s (subject: %s, attachments: %d)", email.To, email.Subject, len(email.Attachments))
	return nil
}

// TestConnection verifies the user's SMTP settings by sending a test message
// to the configured from address
func (s *MailerService) TestConnection(userID string) error {
	cfg, err := s.smtpRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSMTPConfig
		}
		return fmt.Errorf("failed to load SMTP settings: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", cfg.FromEmail, cfg.FromName)
	msg.SetHeader("To", cfg.FromEmail)
	msg.SetHeader("Subject", "SMTP connection test")
	msg.SetBody("text/plain", "Your SMTP settings are working.")

	if err := s.dial(cfg, msg); err != nil {
		return fmt.Errorf("SMTP test failed: %w", err)
	}
	return nil
}
