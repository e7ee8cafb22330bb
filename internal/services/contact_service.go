package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/utils"
)

// ContactService manages a user's recipient list
type ContactService struct {
	contactRepo *repository.ContactRepository
}

func NewContactService(contactRepo *repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// CreateContact creates a new contact for a user
func (s *ContactService) CreateContact(userID string, req *models.CreateContactRequest) (*models.Contact, error) {
	contact := &models.Contact{
		UserID:        userID,
		Email:         req.Email,
		Name:          req.Name,
		Company:       req.Company,
		Role:          req.Role,
		RecruiterName: req.RecruiterName,
		Notes:         req.Notes,
	}
	if err := s.contactRepo.Create(contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

// ImportContacts inserts a batch of parsed contacts for a user
func (s *ContactService) ImportContacts(userID string, contacts []models.Contact) (int, error) {
	for i := range contacts {
		contacts[i].UserID = userID
	}
	if err := s.contactRepo.CreateBatch(contacts); err != nil {
		return 0, fmt.Errorf("failed to import contacts: %w", err)
	}
	return len(contacts), nil
}

// GetContacts returns a user's contacts with search and pagination
func (s *ContactService) GetContacts(userID string, page, pageSize int, search string) ([]models.Contact, int64, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)
	return s.contactRepo.GetByUserID(userID, page, pageSize, search)
}

// GetContact returns one contact, enforcing ownership
func (s *ContactService) GetContact(id, userID string) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("contact not found")
		}
		return nil, err
	}
	return contact, nil
}

// UpdateContact applies a partial update to a user's contact
func (s *ContactService) UpdateContact(id, userID string, req *models.UpdateContactRequest) (*models.Contact, error) {
	contact, err := s.GetContact(id, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Company != nil {
		contact.Company = *req.Company
	}
	if req.Role != nil {
		contact.Role = *req.Role
	}
	if req.RecruiterName != nil {
		contact.RecruiterName = *req.RecruiterName
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}

	if err := s.contactRepo.Update(contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

// DeleteContact removes a user's contact
func (s *ContactService) DeleteContact(id, userID string) error {
	if err := s.contactRepo.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("contact not found")
		}
		return err
	}
	return nil
}
