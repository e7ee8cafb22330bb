package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"
)

func newStreamContext(t *testing.T, sessionID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/campaigns/"+sessionID+"/stream", nil)
	c.Params = gin.Params{{Key: "session_id", Value: sessionID}}
	return c, w
}

func TestStreamProgressReplaysCompletedSessionAndCloses(t *testing.T) {
	tracker := services.NewProgressTracker()
	hub := services.NewProgressHub()
	h := NewCampaignHandler(nil, tracker, hub)

	tracker.Create("s1", 2)
	tracker.Update("s1", func(p *models.CampaignProgress) {
		p.Processed = 2
		p.Sent = 2
		p.Percent = 100
		p.Completed = true
	})

	c, w := newStreamContext(t, "s1")
	done := make(chan struct{})
	go func() {
		h.StreamProgressSSE(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after replaying a completed session")
	}

	body := w.Body.String()
	assert.Contains(t, body, "connected")
	assert.Contains(t, body, `"completed":true`)
	assert.Equal(t, 0, hub.GetClientCount("s1"), "client must unregister on close")
}

func TestStreamProgressDeliversTerminalEvent(t *testing.T) {
	tracker := services.NewProgressTracker()
	hub := services.NewProgressHub()
	h := NewCampaignHandler(nil, tracker, hub)

	tracker.Create("s1", 1)

	c, w := newStreamContext(t, "s1")
	done := make(chan struct{})
	go func() {
		h.StreamProgressSSE(c)
		close(done)
	}()

	// The stream registers with the hub before replaying its snapshot, so a
	// campaign finishing from this point on always reaches the client, either
	// in the replayed snapshot or as a broadcast frame
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount("s1") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, hub.GetClientCount("s1"))

	snap := tracker.Update("s1", func(p *models.CampaignProgress) {
		p.Processed = 1
		p.Sent = 1
		p.Percent = 100
		p.Completed = true
	})
	hub.Broadcast(snap)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after the terminal event")
	}

	assert.Equal(t, 1, strings.Count(w.Body.String(), `"completed":true`))
}

func TestStreamProgressUnknownSession(t *testing.T) {
	tracker := services.NewProgressTracker()
	hub := services.NewProgressHub()
	h := NewCampaignHandler(nil, tracker, hub)

	c, w := newStreamContext(t, "missing")
	h.StreamProgressSSE(c)

	assert.Equal(t, 404, w.Code)
}
