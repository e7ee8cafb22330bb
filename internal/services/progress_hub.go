package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// ProgressHub manages Server-Sent Events connections for campaign progress
// streaming, keyed by session ID
type ProgressHub struct {
	clients map[string]map[chan []byte]bool
	mu      sync.RWMutex
}

// NewProgressHub creates a new progress hub
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		clients: make(map[string]map[chan []byte]bool),
	}
}

// RegisterClient registers a new SSE client for a campaign session
func (h *ProgressHub) RegisterClient(sessionID string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientChan := make(chan []byte, 10) // Buffer size 10

	if h.clients[sessionID] == nil {
		h.clients[sessionID] = make(map[chan []byte]bool)
	}
	h.clients[sessionID][clientChan] = true

	logrus.Infof("SSE client registered for session %s (total clients: %d)", sessionID, len(h.clients[sessionID]))
	return clientChan
}

// UnregisterClient unregisters an SSE client
func (h *ProgressHub) UnregisterClient(sessionID string, clientChan chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[sessionID] != nil {
		delete(h.clients[sessionID], clientChan)
		close(clientChan)

		// Clean up empty maps
		if len(h.clients[sessionID]) == 0 {
			delete(h.clients, sessionID)
		}
	}

	logrus.Infof("SSE client unregistered for session %s (remaining clients: %d)", sessionID, len(h.clients[sessionID]))
}

// Broadcast sends a progress update to all clients watching the session
func (h *ProgressHub) Broadcast(progress *models.CampaignProgress) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[progress.SessionID]
	if len(clients) == 0 {
		return
	}

	progressJSON, err := json.Marshal(progress)
	if err != nil {
		logrus.Errorf("Failed to marshal progress for SSE: %v", err)
		return
	}

	message := fmt.Sprintf("event: progress\ndata: %s\n\n", string(progressJSON))

	// Send to all clients (non-blocking)
	for clientChan := range clients {
		select {
		case clientChan <- []byte(message):
		default:
			// Channel is full, skip this client
			logrus.Warnf("SSE client channel full, skipping: %s", progress.SessionID)
		}
	}
}

// GetClientCount returns the number of clients for a session
func (h *ProgressHub) GetClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, exists := h.clients[sessionID]; exists {
		return len(clients)
	}
	return 0
}

// SendHeartbeat queues a heartbeat comment on one client's channel to keep
// its connection alive. Each connection runs its own heartbeat ticker, so the
// frame goes only to the caller, not to every viewer of the session.
func (h *ProgressHub) SendHeartbeat(clientChan chan []byte) {
	heartbeat := fmt.Sprintf(": heartbeat %s\n\n", time.Now().Format(time.RFC3339))
	select {
	case clientChan <- []byte(heartbeat):
	default:
		// Skip if channel is full
	}
}
