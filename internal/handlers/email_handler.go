package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	campaignService *services.CampaignService
	aiService       *services.AIService
}

func NewEmailHandler(campaignService *services.CampaignService, aiService *services.AIService) *EmailHandler {
	return &EmailHandler{
		campaignService: campaignService,
		aiService:       aiService,
	}
}

// SendEmail godoc
// @Summary Send a single email
// @Description Send one templated email synchronously, with optional AI enhancement
// @Tags emails
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SendEmailRequest true "Send request"
// @Success 200 {object} models.SendEmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 412 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/emails/send [post]
func (h *EmailHandler) SendEmail(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.campaignService.SendSingleEmail(c.Request.Context(), userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, services.ErrNoSMTPConfig) {
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "SMTP settings are not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GenerateContent godoc
// @Summary Generate AI content
// @Description Run a single AI generation request through the key rotation engine
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.GenerateContentRequest true "Generation request"
// @Success 200 {object} models.GenerateResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/ai/generate [post]
func (h *EmailHandler) GenerateContent(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	// The facade never errors at the transport level; failures come back as a
	// typed result the client branches on
	result := h.aiService.GenerateContent(c.Request.Context(), userID, req.Prompt, req.Options)
	c.JSON(http.StatusOK, result)
}
