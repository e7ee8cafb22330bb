package services

import (
	"time"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/utils"
)

// SendLogService exposes the durable send audit trail
type SendLogService struct {
	sendLogRepo *repository.SendLogRepository
}

func NewSendLogService(sendLogRepo *repository.SendLogRepository) *SendLogService {
	return &SendLogService{sendLogRepo: sendLogRepo}
}

// GetLogs returns a user's send logs with optional session/status filters
func (s *SendLogService) GetLogs(userID string, page, pageSize int, sessionID, status string) ([]models.SendLogResponse, int64, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	logs, total, err := s.sendLogRepo.GetByUserID(userID, page, pageSize, sessionID, status)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.SendLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = models.SendLogResponse{
			ID:           log.ID,
			SessionID:    log.SessionID,
			ContactEmail: log.ContactEmail,
			Subject:      log.Subject,
			Status:       log.Status,
			ErrorMessage: log.ErrorMessage,
			AIEnhanced:   log.AIEnhanced,
			AIProvider:   log.AIProvider,
			CreatedAt:    log.CreatedAt.Format(time.RFC3339),
		}
	}
	return responses, total, nil
}
