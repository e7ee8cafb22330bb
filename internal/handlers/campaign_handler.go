package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// heartbeatInterval keeps intermediaries from closing idle SSE connections
// during the quiet stretches between contacts
const heartbeatInterval = 15 * time.Second

type CampaignHandler struct {
	campaignService *services.CampaignService
	tracker         *services.ProgressTracker
	hub             *services.ProgressHub
}

func NewCampaignHandler(campaignService *services.CampaignService, tracker *services.ProgressTracker, hub *services.ProgressHub) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		tracker:         tracker,
		hub:             hub,
	}
}

// RunCampaign godoc
// @Summary Start a bulk email campaign
// @Description Start a background campaign over a contact list and return the session ID for progress tracking
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RunCampaignRequest true "Campaign request"
// @Success 202 {object} models.RunCampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns/run [post]
func (h *CampaignHandler) RunCampaign(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.RunCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.campaignService.RunCampaign(userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, response)
}

// GetProgress godoc
// @Summary Get campaign progress
// @Description Get a point-in-time snapshot of a campaign's progress
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Campaign session ID"
// @Success 200 {object} models.CampaignProgress
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/campaigns/{session_id}/progress [get]
func (h *CampaignHandler) GetProgress(c *gin.Context) {
	sessionID := c.Param("session_id")

	progress, ok := h.tracker.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign session not found"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// StreamProgressSSE godoc
// @Summary Stream campaign progress via Server-Sent Events (SSE)
// @Description Stream real-time progress updates for a running campaign via SSE
// @Tags campaigns
// @Produce text/event-stream
// @Security BearerAuth
// @Param session_id path string true "Campaign session ID"
// @Success 200 "SSE stream"
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/campaigns/{session_id}/stream [get]
func (h *CampaignHandler) StreamProgressSSE(c *gin.Context) {
	sessionID := c.Param("session_id")

	if _, ok := h.tracker.Get(sessionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign session not found"})
		return
	}

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable buffering for nginx

	// Register before reading the replay snapshot: a terminal broadcast firing
	// between the two then lands either in the snapshot or on the channel,
	// never in a gap
	clientChan := h.hub.RegisterClient(sessionID)
	defer h.hub.UnregisterClient(sessionID, clientChan)

	// Send initial connection message
	c.SSEvent("connected", gin.H{
		"session_id": sessionID,
		"message":    "Connected to campaign progress stream",
	})
	c.Writer.Flush()

	// Replay the current state so late subscribers catch up immediately
	snapshot, ok := h.tracker.Get(sessionID)
	if !ok {
		// Torn down since the existence check; nothing more will ever arrive
		return
	}
	if snapshotJSON, err := json.Marshal(snapshot); err == nil {
		message := fmt.Sprintf("event: progress\ndata: %s\n\n", string(snapshotJSON))
		if _, err := c.Writer.Write([]byte(message)); err != nil {
			return
		}
		c.Writer.Flush()
	}
	if snapshot.Completed {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			logrus.Infof("SSE client disconnected from session %s", sessionID)
			return
		case <-heartbeat.C:
			h.hub.SendHeartbeat(clientChan)
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(message); err != nil {
				logrus.Errorf("Failed to write SSE message: %v", err)
				return
			}
			c.Writer.Flush()

			// The worker emits exactly one terminal event; close after it
			if strings.Contains(string(message), `"completed":true`) {
				return
			}
		}
	}
}
