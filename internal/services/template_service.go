package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// TemplateService manages a user's reusable email templates
type TemplateService struct {
	templateRepo *repository.TemplateRepository
}

func NewTemplateService(templateRepo *repository.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// CreateTemplate creates a new template for a user
func (s *TemplateService) CreateTemplate(userID string, req *models.CreateTemplateRequest) (*models.EmailTemplate, error) {
	isDefault := req.IsDefault != nil && *req.IsDefault
	if isDefault {
		if err := s.templateRepo.ClearDefault(userID); err != nil {
			return nil, fmt.Errorf("failed to clear default template: %w", err)
		}
	}

	template := &models.EmailTemplate{
		UserID:    userID,
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		AIRules:   req.AIRules,
		IsDefault: isDefault,
	}
	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

// GetTemplates returns all of a user's templates
func (s *TemplateService) GetTemplates(userID string) ([]models.EmailTemplate, error) {
	return s.templateRepo.GetByUserID(userID)
}

// GetTemplate returns one template, enforcing ownership
func (s *TemplateService) GetTemplate(id, userID string) (*models.EmailTemplate, error) {
	template, err := s.templateRepo.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, err
	}
	return template, nil
}

// UpdateTemplate applies a partial update to a user's template
func (s *TemplateService) UpdateTemplate(id, userID string, req *models.UpdateTemplateRequest) (*models.EmailTemplate, error) {
	template, err := s.GetTemplate(id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Subject != nil {
		template.Subject = *req.Subject
	}
	if req.Body != nil {
		template.Body = *req.Body
	}
	if req.AIRules != nil {
		template.AIRules = *req.AIRules
	}
	if req.IsDefault != nil {
		if *req.IsDefault {
			if err := s.templateRepo.ClearDefault(userID); err != nil {
				return nil, fmt.Errorf("failed to clear default template: %w", err)
			}
		}
		template.IsDefault = *req.IsDefault
	}

	if err := s.templateRepo.Update(template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

// DeleteTemplate removes a user's template
func (s *TemplateService) DeleteTemplate(id, userID string) error {
	if err := s.templateRepo.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("template not found")
		}
		return err
	}
	return nil
}
