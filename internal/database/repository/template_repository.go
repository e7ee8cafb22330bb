package repository

import (
	"github.com/raakesh-m/autosendr-backend/internal/models"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a new email template
func (r *TemplateRepository) Create(template *models.EmailTemplate) error {
	return r.db.Create(template).Error
}

// GetByID retrieves a template by ID scoped to its owner
func (r *TemplateRepository) GetByID(id, userID string) (*models.EmailTemplate, error) {
	var template models.EmailTemplate
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// GetByUserID retrieves all templates for a user
func (r *TemplateRepository) GetByUserID(userID string) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	err := r.db.Where("user_id = ?", userID).Order("is_default DESC, created_at DESC").Find(&templates).Error
	return templates, err
}

// Update updates a template
func (r *TemplateRepository) Update(template *models.EmailTemplate) error {
	return r.db.Save(template).Error
}

// Delete deletes a template scoped to its owner
func (r *TemplateRepository) Delete(id, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.EmailTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearDefault unsets the default flag on all of a user's templates
func (r *TemplateRepository) ClearDefault(userID string) error {
	return r.db.Model(&models.EmailTemplate{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}
