package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/raakesh-m/autosendr-backend/internal/config"
	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services/providers"
)

// fakeAdapter is a scriptable provider adapter
type fakeAdapter struct {
	mu       sync.Mutex
	calls    int
	generate func(prompt string) (string, error)
}

func (f *fakeAdapter) Provider() string { return config.ProviderGroq }

func (f *fakeAdapter) Generate(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.generate(prompt)
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type campaignFixture struct {
	db       *gorm.DB
	svc      *CampaignService
	tracker  *ProgressTracker
	hub      *ProgressHub
	adapter  *fakeAdapter
	sentTo   []string
	sendErr  func(to string) error
	template *models.EmailTemplate
}

func newCampaignFixture(t *testing.T) *campaignFixture {
	t.Helper()

	db := newTestDB(t,
		&models.EmailTemplate{},
		&models.SendLog{},
		&models.File{},
		&models.SMTPConfig{},
		&models.AIApiKey{},
		&models.AIPreferences{},
	)

	fx := &campaignFixture{db: db}

	fx.adapter = &fakeAdapter{generate: func(string) (string, error) {
		return "SUBJECT: Enhanced subject\nBODY: Enhanced body", nil
	}}

	keyService := NewAIKeyService(repository.NewAIKeyRepository(db), repository.NewAIPreferencesRepository(db))
	aiService := NewAIService(keyService)
	aiService.adapterFor = func(provider string) (providers.Adapter, error) {
		return fx.adapter, nil
	}

	smtpRepo := repository.NewSMTPConfigRepository(db)
	mailer := NewMailerService(smtpRepo)
	var mu sync.Mutex
	mailer.dial = func(cfg *models.SMTPConfig, msg *gomail.Message) error {
		to := msg.GetHeader("To")[0]
		if fx.sendErr != nil {
			if err := fx.sendErr(to); err != nil {
				return err
			}
		}
		mu.Lock()
		fx.sentTo = append(fx.sentTo, to)
		mu.Unlock()
		return nil
	}

	fx.tracker = NewProgressTracker()
	fx.hub = NewProgressHub()

	fx.svc = NewCampaignService(
		repository.NewTemplateRepository(db),
		repository.NewSendLogRepository(db),
		repository.NewFileRepository(db),
		NewEnhancementService(aiService),
		mailer,
		fx.tracker,
		fx.hub,
		nil,
	)
	fx.svc.contactDelay = 0

	require.NoError(t, db.Create(&models.SMTPConfig{
		UserID:    testUserID,
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "user",
		Password:  "pass",
		FromEmail: "me@example.com",
		FromName:  "Me",
	}).Error)

	fx.template = &models.EmailTemplate{
		UserID:  testUserID,
		Name:    "outreach",
		Subject: "Hello {{recruiter}}",
		Body:    "I am interested in the {{role}} role at {{company}}.",
	}
	require.NoError(t, db.Create(fx.template).Error)

	return fx
}

func (fx *campaignFixture) seedAIKey(t *testing.T) {
	t.Helper()
	require.NoError(t, fx.db.Create(&models.AIApiKey{
		UserID:          testUserID,
		Provider:        config.ProviderGroq,
		KeyName:         "primary",
		APIKey:          "gsk_test",
		IsActive:        true,
		RotationEnabled: true,
		DailyResetAt:    todayUTC(),
	}).Error)
}

func waitForCompletion(t *testing.T, tracker *ProgressTracker, sessionID string) *models.CampaignProgress {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if progress, ok := tracker.Get(sessionID); ok && progress.Completed {
			return progress
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("campaign did not complete in time")
	return nil
}

func contacts(emails ...string) []models.CampaignContact {
	out := make([]models.CampaignContact, len(emails))
	for i, email := range emails {
		out[i] = models.CampaignContact{Email: email, Company: "Acme", Role: "Engineer"}
	}
	return out
}

func TestRunCampaignSendsAllContacts(t *testing.T) {
	fx := newCampaignFixture(t)

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts:   contacts("a@x.com", "b@x.com", "c@x.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)

	progress := waitForCompletion(t, fx.tracker, resp.SessionID)
	assert.Equal(t, 3, progress.Sent)
	assert.Equal(t, 0, progress.Failed)
	assert.Equal(t, 0, progress.Skipped)
	assert.Equal(t, 100, progress.Percent)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com"}, fx.sentTo)

	var logs []models.SendLog
	require.NoError(t, fx.db.Where("session_id = ?", resp.SessionID).Find(&logs).Error)
	assert.Len(t, logs, 3)
	for _, log := range logs {
		assert.Equal(t, models.SendStatusSent, log.Status)
	}
}

func TestRunCampaignRecordsFailures(t *testing.T) {
	fx := newCampaignFixture(t)
	fx.sendErr = func(to string) error {
		if to == "b@x.com" {
			return errors.New("mailbox unavailable")
		}
		return nil
	}

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts:   contacts("a@x.com", "b@x.com", "c@x.com"),
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, fx.tracker, resp.SessionID)
	assert.Equal(t, 2, progress.Sent)
	assert.Equal(t, 1, progress.Failed)
	assert.True(t, progress.Completed)

	var failedLog models.SendLog
	require.NoError(t, fx.db.Where("session_id = ? AND status = ?", resp.SessionID, models.SendStatusFailed).First(&failedLog).Error)
	assert.Equal(t, "b@x.com", failedLog.ContactEmail)
	assert.Contains(t, failedLog.ErrorMessage, "mailbox unavailable")
}

func TestRunCampaignAIEnhancesContacts(t *testing.T) {
	fx := newCampaignFixture(t)
	fx.seedAIKey(t)

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts:   contacts("a@x.com", "b@x.com"),
		UseAI:      true,
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, fx.tracker, resp.SessionID)
	assert.Equal(t, 2, progress.Sent)
	assert.Equal(t, 2, progress.AIEnhanced)

	var logs []models.SendLog
	require.NoError(t, fx.db.Where("session_id = ?", resp.SessionID).Find(&logs).Error)
	for _, log := range logs {
		assert.True(t, log.AIEnhanced)
		assert.Equal(t, config.ProviderGroq, log.AIProvider)
		assert.Equal(t, "Enhanced subject", log.Subject)
		assert.Equal(t, "llama-3.1-8b-instant", log.Metadata["model"])
		assert.Equal(t, false, log.Metadata["fallback"])
	}
}

func TestRunCampaignSkipsContactWhenAIFails(t *testing.T) {
	fx := newCampaignFixture(t)
	fx.seedAIKey(t)
	fx.adapter.generate = func(string) (string, error) {
		return "", &providers.VendorError{Provider: config.ProviderGroq, Class: providers.ErrClassAuth, StatusCode: 401, Message: "invalid api key"}
	}

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts:   contacts("a@x.com"),
		UseAI:      true,
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, fx.tracker, resp.SessionID)
	assert.Equal(t, 0, progress.Sent)
	assert.Equal(t, 1, progress.Skipped)
	assert.Empty(t, fx.sentTo, "an email requested with AI must never go out un-enhanced")

	var log models.SendLog
	require.NoError(t, fx.db.Where("session_id = ?", resp.SessionID).First(&log).Error)
	assert.Equal(t, models.SendStatusSkipped, log.Status)
}

func TestRunCampaignSurvivesMidBatchAIFailure(t *testing.T) {
	fx := newCampaignFixture(t)
	fx.seedAIKey(t)

	var mu sync.Mutex
	call := 0
	fx.adapter.generate = func(string) (string, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 5 {
			return "", &providers.VendorError{Provider: config.ProviderGroq, Class: providers.ErrClassAuth, StatusCode: 401, Message: "invalid api key"}
		}
		return "SUBJECT: Enhanced subject\nBODY: Enhanced body", nil
	}

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts: contacts("c1@x.com", "c2@x.com", "c3@x.com", "c4@x.com", "c5@x.com",
			"c6@x.com", "c7@x.com", "c8@x.com", "c9@x.com", "c10@x.com"),
		UseAI: true,
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, fx.tracker, resp.SessionID)
	assert.Equal(t, 10, progress.Total)
	assert.Equal(t, 9, progress.Sent)
	assert.Equal(t, 1, progress.Skipped)
	assert.NotContains(t, fx.sentTo, "c5@x.com")

	var skipped models.SendLog
	require.NoError(t, fx.db.Where("session_id = ? AND status = ?", resp.SessionID, models.SendStatusSkipped).First(&skipped).Error)
	assert.Equal(t, "c5@x.com", skipped.ContactEmail)
}

func TestRunCampaignShortCircuitsWhenNoKeys(t *testing.T) {
	fx := newCampaignFixture(t)
	// No AI key seeded: the first contact discovers exhaustion, the rest must
	// not re-query

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts:   contacts("a@x.com", "b@x.com", "c@x.com"),
		UseAI:      true,
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, fx.tracker, resp.SessionID)
	assert.Equal(t, 3, progress.Skipped)
	assert.Equal(t, 0, progress.Sent)
	assert.Equal(t, 0, fx.adapter.callCount())
}

func TestRunCampaignEmitsSingleTerminalEvent(t *testing.T) {
	fx := newCampaignFixture(t)
	fx.svc.contactDelay = 50 * time.Millisecond

	resp, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: fx.template.ID,
		Contacts:   contacts("a@x.com", "b@x.com", "c@x.com"),
	})
	require.NoError(t, err)

	clientChan := fx.hub.RegisterClient(resp.SessionID)
	defer fx.hub.UnregisterClient(resp.SessionID, clientChan)

	waitForCompletion(t, fx.tracker, resp.SessionID)
	time.Sleep(50 * time.Millisecond)

	completedFrames := 0
	for {
		select {
		case frame := <-clientChan:
			if strings.Contains(string(frame), `"completed":true`) {
				completedFrames++
			}
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, completedFrames)
}

func TestRunCampaignTemplateNotFound(t *testing.T) {
	fx := newCampaignFixture(t)

	_, err := fx.svc.RunCampaign(testUserID, &models.RunCampaignRequest{
		TemplateID: "77777777-7777-7777-7777-777777777777",
		Contacts:   contacts("a@x.com"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestSendSingleEmail(t *testing.T) {
	fx := newCampaignFixture(t)

	resp, err := fx.svc.SendSingleEmail(context.Background(), testUserID, &models.SendEmailRequest{
		TemplateID: fx.template.ID,
		Contact:    models.CampaignContact{Email: "jane@acme.com", Name: "Jane", Company: "Acme", Role: "Engineer"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Hello Jane", resp.Subject)
	assert.Equal(t, []string{"jane@acme.com"}, fx.sentTo)
}

func TestSendSingleEmailSkipsOnAIFailure(t *testing.T) {
	fx := newCampaignFixture(t)
	// No AI key configured

	resp, err := fx.svc.SendSingleEmail(context.Background(), testUserID, &models.SendEmailRequest{
		TemplateID: fx.template.ID,
		Contact:    models.CampaignContact{Email: "jane@acme.com"},
		UseAI:      true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "AI enhancement failed")
	assert.Empty(t, fx.sentTo)
}

func TestEstimateRemaining(t *testing.T) {
	assert.Equal(t, "", estimateRemaining(time.Minute, 0, 10))
	assert.Equal(t, "", estimateRemaining(time.Minute, 10, 10))
	assert.Equal(t, "1m30s", estimateRemaining(time.Minute, 2, 5))
}

func TestOutcomeLogLine(t *testing.T) {
	assert.Equal(t, "[1/3] Sent to a@x.com", outcomeLogLine(1, 3, "a@x.com", models.SendStatusSent, ""))
	assert.Equal(t, "[2/3] Skipped b@x.com: no API keys available", outcomeLogLine(2, 3, "b@x.com", models.SendStatusSkipped, "no API keys available"))
	assert.Equal(t, "[3/3] Failed to send to c@x.com: boom", outcomeLogLine(3, 3, "c@x.com", models.SendStatusFailed, "boom"))
}
