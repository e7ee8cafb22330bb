package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

func TestProgressTrackerUpdateReturnsSnapshot(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Create("s1", 10)

	snap := tracker.Update("s1", func(p *models.CampaignProgress) {
		p.Processed = 3
		p.Sent = 3
		p.Logs = append(p.Logs, "line one")
	})
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.Sent)

	// Mutating the snapshot must not leak back into the tracker
	snap.Sent = 99
	snap.Logs[0] = "tampered"

	current, ok := tracker.Get("s1")
	require.True(t, ok)
	assert.Equal(t, 3, current.Sent)
	assert.Equal(t, "line one", current.Logs[0])
}

func TestProgressTrackerUnknownSession(t *testing.T) {
	tracker := NewProgressTracker()

	assert.Nil(t, tracker.Update("missing", func(p *models.CampaignProgress) {}))
	_, ok := tracker.Get("missing")
	assert.False(t, ok)
}

func TestProgressTrackerCapsLogLines(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Create("s1", 1000)

	for i := 0; i < maxLogLines+50; i++ {
		tracker.Update("s1", func(p *models.CampaignProgress) {
			p.Logs = append(p.Logs, fmt.Sprintf("line %d", i))
		})
	}

	snap, ok := tracker.Get("s1")
	require.True(t, ok)
	assert.Len(t, snap.Logs, maxLogLines)
	assert.Equal(t, fmt.Sprintf("line %d", maxLogLines+49), snap.Logs[len(snap.Logs)-1])
}

func TestProgressHubBroadcast(t *testing.T) {
	hub := NewProgressHub()

	c1 := hub.RegisterClient("s1")
	c2 := hub.RegisterClient("s1")
	other := hub.RegisterClient("s2")
	defer hub.UnregisterClient("s2", other)

	assert.Equal(t, 2, hub.GetClientCount("s1"))

	hub.Broadcast(&models.CampaignProgress{SessionID: "s1", Sent: 4})

	for _, ch := range []chan []byte{c1, c2} {
		select {
		case frame := <-ch:
			assert.True(t, strings.HasPrefix(string(frame), "event: progress\ndata: "))
			assert.Contains(t, string(frame), `"sent":4`)
		default:
			t.Fatal("expected a broadcast frame")
		}
	}

	select {
	case <-other:
		t.Fatal("client of another session must not receive the frame")
	default:
	}

	hub.UnregisterClient("s1", c1)
	hub.UnregisterClient("s1", c2)
	assert.Equal(t, 0, hub.GetClientCount("s1"))
}

func TestProgressHubFullClientDropped(t *testing.T) {
	hub := NewProgressHub()
	ch := hub.RegisterClient("s1")
	defer hub.UnregisterClient("s1", ch)

	// Channel buffer is 10; a slow consumer loses frames instead of blocking
	// the campaign worker
	for i := 0; i < 15; i++ {
		hub.Broadcast(&models.CampaignProgress{SessionID: "s1", Processed: i})
	}

	assert.Len(t, ch, 10)
}

func TestProgressHubHeartbeat(t *testing.T) {
	hub := NewProgressHub()
	ch := hub.RegisterClient("s1")
	defer hub.UnregisterClient("s1", ch)
	other := hub.RegisterClient("s1")
	defer hub.UnregisterClient("s1", other)

	hub.SendHeartbeat(ch)

	select {
	case frame := <-ch:
		assert.True(t, strings.HasPrefix(string(frame), ": heartbeat"))
	default:
		t.Fatal("expected a heartbeat frame")
	}

	// Heartbeats are per connection; other viewers of the same session must
	// not receive them
	select {
	case <-other:
		t.Fatal("heartbeat leaked to another client")
	default:
	}
}
