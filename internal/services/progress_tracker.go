package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

const (
	// maxLogLines caps the append-only log per session so a huge campaign
	// cannot grow memory without bound
	maxLogLines = 200

	// completedGracePeriod is how long a finished session stays readable
	// before teardown, so a reconnecting client can still observe the
	// terminal state
	completedGracePeriod = 5 * time.Minute
)

// ProgressTracker holds the ephemeral, process-lifetime progress records for
// running campaigns, keyed by session ID
type ProgressTracker struct {
	mu       sync.RWMutex
	sessions map[string]*models.CampaignProgress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		sessions: make(map[string]*models.CampaignProgress),
	}
}

// Create seeds a fresh progress record for a new campaign session
func (t *ProgressTracker) Create(sessionID string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[sessionID] = &models.CampaignProgress{
		SessionID:       sessionID,
		Total:           total,
		CurrentActivity: "Initializing campaign...",
		Logs:            []string{},
		UpdatedAt:       time.Now(),
	}
}

// Update applies a mutation to a session's progress and returns a snapshot
// copy safe to hand to broadcasters
func (t *ProgressTracker) Update(sessionID string, mutate func(p *models.CampaignProgress)) *models.CampaignProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	progress, ok := t.sessions[sessionID]
	if !ok {
		return nil
	}
	mutate(progress)
	if len(progress.Logs) > maxLogLines {
		progress.Logs = progress.Logs[len(progress.Logs)-maxLogLines:]
	}
	progress.UpdatedAt = time.Now()

	if progress.Completed {
		t.scheduleTeardownLocked(sessionID)
	}
	return snapshot(progress)
}

// Get returns a snapshot of a session's progress
func (t *ProgressTracker) Get(sessionID string) (*models.CampaignProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	progress, ok := t.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return snapshot(progress), true
}

// scheduleTeardownLocked removes a completed session after the grace period
func (t *ProgressTracker) scheduleTeardownLocked(sessionID string) {
	time.AfterFunc(completedGracePeriod, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if progress, ok := t.sessions[sessionID]; ok && progress.Completed {
			delete(t.sessions, sessionID)
			logrus.Infof("Campaign session %s torn down after grace period", sessionID)
		}
	})
}

func snapshot(p *models.CampaignProgress) *models.CampaignProgress {
	copied := *p
	copied.Logs = append([]string(nil), p.Logs...)
	return &copied
}
