package handlers

import (
	"net/http"
	"strconv"

	"github.com/raakesh-m/autosendr-backend/internal/services"
	"github.com/raakesh-m/autosendr-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type SendLogHandler struct {
	sendLogService *services.SendLogService
}

func NewSendLogHandler(sendLogService *services.SendLogService) *SendLogHandler {
	return &SendLogHandler{sendLogService: sendLogService}
}

// GetLogs godoc
// @Summary List send logs
// @Description List the authenticated user's send history, optionally filtered by campaign session or status
// @Tags send-logs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param session_id query string false "Campaign session ID filter"
// @Param status query string false "Status filter" Enums(sent, failed, skipped)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/send-logs [get]
func (h *SendLogHandler) GetLogs(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	sessionID := c.Query("session_id")
	status := c.Query("status")

	logs, total, err := h.sendLogService.GetLogs(userID, page, pageSize, sessionID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list send logs", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": utils.CalculatePaginationInfo(int(total), page, pageSize),
	})
}
