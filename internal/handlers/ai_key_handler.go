package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raakesh-m/autosendr-backend/internal/config"
	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AIKeyHandler struct {
	keyService *services.AIKeyService
}

func NewAIKeyHandler(keyService *services.AIKeyService) *AIKeyHandler {
	return &AIKeyHandler{keyService: keyService}
}

// CreateKey godoc
// @Summary Register an AI API key
// @Description Add a new provider API key for the authenticated user
// @Tags ai-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateAIKeyRequest true "API key details"
// @Success 201 {object} models.AIKeyResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/ai-keys [post]
func (h *AIKeyHandler) CreateKey(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.CreateAIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	key, err := h.keyService.CreateKey(userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, gin.H{"error": "A key with this name already exists for this provider"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, keyToResponse(key))
}

// GetKeys godoc
// @Summary List AI API keys
// @Description List the authenticated user's API keys, optionally filtered by provider
// @Tags ai-keys
// @Produce json
// @Security BearerAuth
// @Param provider query string false "Provider filter" example:"groq"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/ai-keys [get]
func (h *AIKeyHandler) GetKeys(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	provider := c.Query("provider")

	keys, err := h.keyService.GetKeys(userID, provider)
	if err != nil {
		if strings.Contains(err.Error(), "not supported") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list API keys", "details": err.Error()})
		return
	}

	responses := make([]models.AIKeyResponse, len(keys))
	for i := range keys {
		responses[i] = keyToResponse(&keys[i])
	}
	c.JSON(http.StatusOK, gin.H{"keys": responses, "total": len(responses)})
}

// UpdateKey godoc
// @Summary Update an AI API key
// @Description Update a key's settings (name, model, active state, rotation)
// @Tags ai-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Key ID"
// @Param request body models.UpdateAIKeyRequest true "Fields to update"
// @Success 200 {object} models.AIKeyResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/ai-keys/{id} [put]
func (h *AIKeyHandler) UpdateKey(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	keyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key ID"})
		return
	}

	var req models.UpdateAIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	key, err := h.keyService.UpdateKey(userID, uint(keyID), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update API key", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, keyToResponse(key))
}

// DeleteKey godoc
// @Summary Delete an AI API key
// @Description Remove a key from the authenticated user's account
// @Tags ai-keys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Key ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/ai-keys/{id} [delete]
func (h *AIKeyHandler) DeleteKey(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	keyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key ID"})
		return
	}

	if err := h.keyService.DeleteKey(userID, uint(keyID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key deleted"})
}

// GetProviders godoc
// @Summary List supported AI providers
// @Description Get the static provider catalog (models, limits, reset windows)
// @Tags ai-keys
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/ai-keys/providers [get]
func (h *AIKeyHandler) GetProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": config.GetProviderConfigs(),
		"order":     config.ProviderOrder,
	})
}

// GetPreferences godoc
// @Summary Get AI preferences
// @Description Get the authenticated user's AI routing preferences
// @Tags ai-keys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AIPreferences
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/ai-keys/preferences [get]
func (h *AIKeyHandler) GetPreferences(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	prefs, err := h.keyService.GetPreferences(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get preferences", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences godoc
// @Summary Update AI preferences
// @Description Update rotation, preferred provider or fallback settings
// @Tags ai-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateAIPreferencesRequest true "Fields to update"
// @Success 200 {object} models.AIPreferences
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/ai-keys/preferences [put]
func (h *AIKeyHandler) UpdatePreferences(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.UpdateAIPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	prefs, err := h.keyService.UpdatePreferences(userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not supported") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func keyToResponse(key *models.AIApiKey) models.AIKeyResponse {
	return models.AIKeyResponse{
		ID:              key.ID,
		Provider:        key.Provider,
		KeyName:         key.KeyName,
		MaskedKey:       key.MaskedKey(),
		PreferredModel:  key.PreferredModel,
		IsActive:        key.IsActive,
		RotationEnabled: key.RotationEnabled,
		UsageCount:      key.UsageCount,
		DailyLimit:      key.DailyLimit,
		LastUsedAt:      key.LastUsedAt,
		RateLimitHitAt:  key.RateLimitHitAt,
		Notes:           key.Notes,
		CreatedAt:       key.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       key.UpdatedAt.Format(time.RFC3339),
	}
}
