package repository

import (
	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/utils"

	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create creates a new contact
func (r *ContactRepository) Create(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

// CreateBatch inserts imported contacts in one transaction
func (r *ContactRepository) CreateBatch(contacts []models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	return r.db.CreateInBatches(contacts, 100).Error
}

// GetByID retrieves a contact by ID scoped to its owner
func (r *ContactRepository) GetByID(id, userID string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetByUserID retrieves contacts for a user with search and pagination
func (r *ContactRepository) GetByUserID(userID string, page, pageSize int, search string) ([]models.Contact, int64, error) {
	var contacts []models.Contact
	var total int64
	query := r.db.Model(&models.Contact{}).Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("email LIKE ? OR name LIKE ? OR company LIKE ?", pattern, pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset(utils.CalculateOffset(page, pageSize)).Limit(pageSize).
		Find(&contacts).Error
	return contacts, total, err
}

// GetByIDs retrieves multiple contacts by ID scoped to their owner
func (r *ContactRepository) GetByIDs(ids []string, userID string) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.Where("id IN ? AND user_id = ?", ids, userID).Find(&contacts).Error
	return contacts, err
}

// Update updates a contact
func (r *ContactRepository) Update(contact *models.Contact) error {
	return r.db.Save(contact).Error
}

// Delete deletes a contact scoped to its owner
func (r *ContactRepository) Delete(id, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
