package handlers

import (
	"errors"
	"net/http"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SMTPConfigHandler struct {
	smtpService *services.SMTPConfigService
	mailer      *services.MailerService
}

func NewSMTPConfigHandler(smtpService *services.SMTPConfigService, mailer *services.MailerService) *SMTPConfigHandler {
	return &SMTPConfigHandler{
		smtpService: smtpService,
		mailer:      mailer,
	}
}

// GetConfig godoc
// @Summary Get SMTP settings
// @Description Get the authenticated user's mail transport settings (password omitted)
// @Tags smtp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SMTPConfig
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/smtp [get]
func (h *SMTPConfigHandler) GetConfig(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	cfg, err := h.smtpService.GetConfig(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSMTPConfig) {
			c.JSON(http.StatusNotFound, gin.H{"error": "SMTP settings are not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get SMTP settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpsertConfig godoc
// @Summary Save SMTP settings
// @Description Create or replace the authenticated user's mail transport settings
// @Tags smtp
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpsertSMTPConfigRequest true "SMTP settings"
// @Success 200 {object} models.SMTPConfig
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/smtp [put]
func (h *SMTPConfigHandler) UpsertConfig(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.UpsertSMTPConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	cfg, err := h.smtpService.UpsertConfig(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save SMTP settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteConfig godoc
// @Summary Delete SMTP settings
// @Tags smtp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/smtp [delete]
func (h *SMTPConfigHandler) DeleteConfig(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	if err := h.smtpService.DeleteConfig(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete SMTP settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SMTP settings deleted"})
}

// TestConnection godoc
// @Summary Test SMTP settings
// @Description Send a test message to the configured from address to verify the settings
// @Tags smtp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/smtp/test [post]
func (h *SMTPConfigHandler) TestConnection(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	if err := h.mailer.TestConnection(userID); err != nil {
		if errors.Is(err, services.ErrNoSMTPConfig) {
			c.JSON(http.StatusNotFound, gin.H{"error": "SMTP settings are not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "SMTP test failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SMTP settings are working"})
}
