package repository

import (
	"errors"

	"github.com/raakesh-m/autosendr-backend/internal/config"
	"github.com/raakesh-m/autosendr-backend/internal/models"

	"gorm.io/gorm"
)

type AIPreferencesRepository struct {
	db *gorm.DB
}

func NewAIPreferencesRepository(db *gorm.DB) *AIPreferencesRepository {
	return &AIPreferencesRepository{db: db}
}

// GetOrCreate returns the user's AI preferences, creating the default row on
// first access. Exactly one row per user.
func (r *AIPreferencesRepository) GetOrCreate(userID string) (*models.AIPreferences, error) {
	var prefs models.AIPreferences
	err := r.db.Where("user_id = ?", userID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefs = models.AIPreferences{
		UserID:               userID,
		EnableGlobalRotation: false,
		PreferredProvider:    config.ProviderGroq,
		FallbackEnabled:      true,
	}
	if err := r.db.Create(&prefs).Error; err != nil {
		// Lost a create race with a concurrent request; re-read
		var existing models.AIPreferences
		if err2 := r.db.Where("user_id = ?", userID).First(&existing).Error; err2 == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &prefs, nil
}

// Update updates a user's AI preferences
func (r *AIPreferencesRepository) Update(prefs *models.AIPreferences) error {
	return r.db.Save(prefs).Error
}
