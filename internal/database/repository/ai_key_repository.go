package repository

import (
	"time"

	"github.com/raakesh-m/autosendr-backend/internal/models"

	"gorm.io/gorm"
)

type AIKeyRepository struct {
	db *gorm.DB
}

func NewAIKeyRepository(db *gorm.DB) *AIKeyRepository {
	return &AIKeyRepository{db: db}
}

// Create creates a new API key
func (r *AIKeyRepository) Create(key *models.AIApiKey) error {
	return r.db.Create(key).Error
}

// GetByID retrieves a key by ID scoped to its owner
func (r *AIKeyRepository) GetByID(id uint, userID string) (*models.AIApiKey, error) {
	var key models.AIApiKey
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// GetByUserID retrieves all keys for a user, optionally filtered by provider
func (r *AIKeyRepository) GetByUserID(userID string, provider string) ([]models.AIApiKey, error) {
	var keys []models.AIApiKey
	query := r.db.Where("user_id = ?", userID)
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}
	err := query.Order("provider ASC, key_name ASC").Find(&keys).Error
	return keys, err
}

// Update updates a key
func (r *AIKeyRepository) Update(key *models.AIApiKey) error {
	return r.db.Save(key).Error
}

// Delete deletes a key scoped to its owner
func (r *AIKeyRepository) Delete(id uint, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.AIApiKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RolloverStaleDaily zeroes usage and clears rate-limit stamps for a user's
// keys whose daily_reset_at predates today. Runs lazily before selection so
// counters stay correct even if the daily maintenance ticker missed a cycle.
func (r *AIKeyRepository) RolloverStaleDaily(userID string, today time.Time) error {
	return r.db.Model(&models.AIApiKey{}).
		Where("user_id = ? AND daily_reset_at < ?", userID, today).
		Updates(map[string]interface{}{
			"usage_count":       0,
			"rate_limit_hit_at": nil,
			"daily_reset_at":    today,
		}).Error
}

// GetCandidates returns the selectable keys for (user, provider): active,
// not rate-limited within the reset window (a stamp at exactly the cutoff is
// available again), ordered least-used first with never-used keys winning ties.
func (r *AIKeyRepository) GetCandidates(userID, provider string, rotationOnly bool, rateLimitCutoff time.Time) ([]models.AIApiKey, error) {
	var keys []models.AIApiKey
	query := r.db.Where("user_id = ? AND provider = ? AND is_active = ?", userID, provider, true).
		Where("rate_limit_hit_at IS NULL OR rate_limit_hit_at <= ?", rateLimitCutoff)
	if rotationOnly {
		query = query.Where("rotation_enabled = ?", true)
	}
	err := query.Order("usage_count ASC, last_used_at ASC NULLS FIRST").Find(&keys).Error
	return keys, err
}

// IncrementUsage atomically adds n usage units and stamps last_used_at
func (r *AIKeyRepository) IncrementUsage(id uint, n int64) error {
	return r.db.Model(&models.AIApiKey{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + ?", n),
			"last_used_at": time.Now(),
		}).Error
}

// MarkRateLimited stamps the key as rate-limited without touching usage
func (r *AIKeyRepository) MarkRateLimited(id uint) error {
	return r.db.Model(&models.AIApiKey{}).Where("id = ?", id).
		Update("rate_limit_hit_at", time.Now()).Error
}

// ResetDailyUsage performs the global daily rollover across all users.
// Idempotent: a second run on the same day matches no rows.
func (r *AIKeyRepository) ResetDailyUsage(today time.Time) (int64, error) {
	result := r.db.Model(&models.AIApiKey{}).
		Where("daily_reset_at < ?", today).
		Updates(map[string]interface{}{
			"usage_count":       0,
			"rate_limit_hit_at": nil,
			"daily_reset_at":    today,
		})
	return result.RowsAffected, result.Error
}

// CountActive counts a user's active keys across all providers
func (r *AIKeyRepository) CountActive(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.AIApiKey{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}
