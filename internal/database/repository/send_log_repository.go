package repository

import (
	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/utils"

	"gorm.io/gorm"
)

type SendLogRepository struct {
	db *gorm.DB
}

func NewSendLogRepository(db *gorm.DB) *SendLogRepository {
	return &SendLogRepository{db: db}
}

// Create records a send outcome
func (r *SendLogRepository) Create(log *models.SendLog) error {
	return r.db.Create(log).Error
}

// GetByUserID retrieves send logs for a user with optional filters and pagination
func (r *SendLogRepository) GetByUserID(userID string, page, pageSize int, sessionID, status string) ([]models.SendLog, int64, error) {
	var logs []models.SendLog
	var total int64
	query := r.db.Model(&models.SendLog{}).Where("user_id = ?", userID)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset(utils.CalculateOffset(page, pageSize)).Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
