package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// defaultContactDelay is the pause between processed contacts. It keeps the
// SMTP server from being hammered and makes progress updates observable.
const defaultContactDelay = 2 * time.Second

// CampaignService orchestrates bulk sends: one goroutine per campaign works
// through the contact list serially, emitting progress after every contact.
// Serial on purpose: parallel dispatch would burst shared rate-limited keys
// and break ordered progress reporting.
type CampaignService struct {
	templateRepo *repository.TemplateRepository
	sendLogRepo  *repository.SendLogRepository
	fileRepo     *repository.FileRepository
	enhancement  *EnhancementService
	mailer       *MailerService
	tracker      *ProgressTracker
	hub          *ProgressHub
	rabbit       *RabbitMQService // optional, nil when the broker is not configured
	contactDelay time.Duration
}

func NewCampaignService(
	templateRepo *repository.TemplateRepository,
	sendLogRepo *repository.SendLogRepository,
	fileRepo *repository.FileRepository,
	enhancement *EnhancementService,
	mailer *MailerService,
	tracker *ProgressTracker,
	hub *ProgressHub,
	rabbit *RabbitMQService,
) *CampaignService {
	return &CampaignService{
		templateRepo: templateRepo,
		sendLogRepo:  sendLogRepo,
		fileRepo:     fileRepo,
		enhancement:  enhancement,
		mailer:       mailer,
		tracker:      tracker,
		hub:          hub,
		rabbit:       rabbit,
		contactDelay: defaultContactDelay,
	}
}

// RunCampaign validates the request, seeds a progress record and starts the
// background worker. It returns immediately with the session ID the client
// uses to follow progress.
func (s *CampaignService) RunCampaign(userID string, req *models.RunCampaignRequest) (*models.RunCampaignResponse, error) {
	template, err := s.templateRepo.GetByID(req.TemplateID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	var attachments []*models.File
	if len(req.AttachmentIDs) > 0 {
		attachments, err = s.fileRepo.GetByIDs(req.AttachmentIDs, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load attachments: %w", err)
		}
		if len(attachments) != len(req.AttachmentIDs) {
			return nil, errors.New("one or more attachments not found")
		}
	}

	sessionID := uuid.New().String()
	s.tracker.Create(sessionID, len(req.Contacts))

	go s.processCampaign(userID, sessionID, template, req, attachments)

	logrus.Infof("Campaign %s started for user %s (%d contacts, ai=%t)", sessionID, userID, len(req.Contacts), req.UseAI)

	return &models.RunCampaignResponse{
		SessionID: sessionID,
		Total:     len(req.Contacts),
		Message:   "Campaign started",
	}, nil
}

// processCampaign is the campaign worker. Whatever happens inside the loop,
// the deferred block emits exactly one terminal completed=true event so the
// streaming consumer never hangs.
func (s *CampaignService) processCampaign(userID, sessionID string, template *models.EmailTemplate, req *models.RunCampaignRequest, attachments []*models.File) {
	ctx := context.Background()
	start := time.Now()
	total := len(req.Contacts)

	var sent, failed, skipped, aiEnhanced int

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Campaign %s worker panicked: %v", sessionID, r)
		}
		s.publish(sessionID, func(p *models.CampaignProgress) {
			p.Sent = sent
			p.Failed = failed
			p.Skipped = skipped
			p.AIEnhanced = aiEnhanced
			p.Percent = 100
			p.Completed = true
			p.ETA = ""
			p.CurrentActivity = "Campaign completed"
			p.Logs = append(p.Logs, fmt.Sprintf("Campaign completed: %d sent, %d failed, %d skipped (%s elapsed)",
				sent, failed, skipped, time.Since(start).Round(time.Second)))
		})
		logrus.Infof("Campaign %s finished: sent=%d failed=%d skipped=%d ai=%d", sessionID, sent, failed, skipped, aiEnhanced)
	}()

	staged, cleanup, err := s.stageAttachments(attachments)
	defer cleanup()
	if err != nil {
		logrus.Errorf("Campaign %s: failed to stage attachments: %v", sessionID, err)
		s.publish(sessionID, func(p *models.CampaignProgress) {
			p.Logs = append(p.Logs, "Warning: attachments could not be staged, sending without them")
		})
		staged = nil
	}

	// Once AI availability is exhausted there is no point re-querying a
	// known-dead resource for every remaining contact
	aiExhausted := false

	for i, contact := range req.Contacts {
		s.publish(sessionID, func(p *models.CampaignProgress) {
			p.CurrentActivity = fmt.Sprintf("Processing contact %d/%d: %s", i+1, total, contact.Email)
		})

		subject, body := s.enhancement.ApplyTemplate(template.Subject, template.Body, contact)

		var skipReason string
		var contactAIEnhanced bool
		var aiProvider string
		var aiMeta models.JSON

		if req.UseAI {
			if aiExhausted {
				skipReason = "AI quota exhausted"
			} else {
				enhanced, result := s.enhancement.EnhanceEmail(ctx, userID, template, contact, models.GenerateOptions{
					PreferredProvider: req.Provider,
				})
				switch {
				case result.Success:
					subject, body = enhanced.Subject, enhanced.Body
					contactAIEnhanced = true
					aiProvider = enhanced.Provider
					aiMeta = models.JSON{"model": result.Model, "fallback": result.Fallback}
				case result.ErrorCode == models.AIErrorNoKeys:
					skipReason = "no API keys available"
					aiExhausted = true
				default:
					// Enhancement is mandatory when requested; never send an
					// un-enhanced email silently
					skipReason = "AI enhancement failed: " + result.Error
					if result.Provider == "" && result.ErrorCode == models.AIErrorRateLimited {
						// Selection-level exhaustion, not a single key's 429
						aiExhausted = true
					}
				}
			}
		}

		status := models.SendStatusSent
		var errorMessage string

		if skipReason != "" {
			status = models.SendStatusSkipped
			errorMessage = skipReason
			skipped++
		} else {
			err := s.mailer.SendEmail(userID, &OutgoingEmail{
				To:          contact.Email,
				Subject:     subject,
				TextBody:    body,
				Attachments: staged,
			})
			if err != nil {
				status = models.SendStatusFailed
				errorMessage = err.Error()
				failed++
			} else {
				sent++
				if contactAIEnhanced {
					aiEnhanced++
				}
			}
		}

		s.recordSendLog(userID, sessionID, contact.Email, subject, status, errorMessage, contactAIEnhanced, aiProvider, aiMeta)

		done := i + 1
		eta := estimateRemaining(time.Since(start), done, total)
		logLine := outcomeLogLine(done, total, contact.Email, status, errorMessage)

		s.publish(sessionID, func(p *models.CampaignProgress) {
			p.Processed = done
			p.Sent = sent
			p.Failed = failed
			p.Skipped = skipped
			p.AIEnhanced = aiEnhanced
			p.Percent = done * 100 / total
			p.ETA = eta
			p.Logs = append(p.Logs, logLine)
		})

		if done < total {
			time.Sleep(s.contactDelay)
		}
	}
}

// SendSingleEmail handles the non-bulk send path synchronously
func (s *CampaignService) SendSingleEmail(ctx context.Context, userID string, req *models.SendEmailRequest) (*models.SendEmailResponse, error) {
	template, err := s.templateRepo.GetByID(req.TemplateID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	subject, body := s.enhancement.ApplyTemplate(template.Subject, template.Body, req.Contact)

	var contactAIEnhanced bool
	var aiProvider string
	var aiMeta models.JSON
	if req.UseAI {
		enhanced, result := s.enhancement.EnhanceEmail(ctx, userID, template, req.Contact, models.GenerateOptions{
			PreferredProvider: req.Provider,
		})
		if !result.Success {
			s.recordSendLog(userID, "", req.Contact.Email, subject, models.SendStatusSkipped, result.Error, false, "", nil)
			return &models.SendEmailResponse{
				Success: false,
				Error:   "AI enhancement failed: " + result.Error,
			}, nil
		}
		subject, body = enhanced.Subject, enhanced.Body
		contactAIEnhanced = true
		aiProvider = enhanced.Provider
		aiMeta = models.JSON{"model": result.Model, "fallback": result.Fallback}
	}

	if err := s.mailer.SendEmail(userID, &OutgoingEmail{To: req.Contact.Email, Subject: subject, TextBody: body}); err != nil {
		s.recordSendLog(userID, "", req.Contact.Email, subject, models.SendStatusFailed, err.Error(), contactAIEnhanced, aiProvider, aiMeta)
		return &models.SendEmailResponse{
			Success:    false,
			AIEnhanced: contactAIEnhanced,
			Error:      err.Error(),
		}, nil
	}

	s.recordSendLog(userID, "", req.Contact.Email, subject, models.SendStatusSent, "", contactAIEnhanced, aiProvider, aiMeta)
	return &models.SendEmailResponse{
		Success:    true,
		Subject:    subject,
		AIEnhanced: contactAIEnhanced,
	}, nil
}

// publish applies a tracker update and fans the snapshot out to the SSE hub
// and the optional message broker
func (s *CampaignService) publish(sessionID string, mutate func(p *models.CampaignProgress)) {
	snap := s.tracker.Update(sessionID, mutate)
	if snap == nil {
		return
	}
	s.hub.Broadcast(snap)
	if s.rabbit != nil {
		if err := s.rabbit.PublishProgress(snap); err != nil {
			logrus.Warnf("Failed to publish progress for session %s: %v", sessionID, err)
		}
	}
}

func (s *CampaignService) recordSendLog(userID, sessionID, contactEmail, subject, status, errorMessage string, aiEnhanced bool, aiProvider string, metadata models.JSON) {
	log := &models.SendLog{
		UserID:       userID,
		SessionID:    sessionID,
		ContactEmail: contactEmail,
		Subject:      subject,
		Status:       status,
		ErrorMessage: errorMessage,
		AIEnhanced:   aiEnhanced,
		AIProvider:   aiProvider,
		Metadata:     metadata,
	}
	if err := s.sendLogRepo.Create(log); err != nil {
		logrus.Errorf("Failed to record send log for %s: %v", contactEmail, err)
	}
}

// stageAttachments copies attachment files into a temp directory for the
// lifetime of the campaign. The returned cleanup always runs, success or not,
// so staged bytes never outlive the run.
func (s *CampaignService) stageAttachments(files []*models.File) ([]EmailAttachment, func(), error) {
	if len(files) == 0 {
		return nil, func() {}, nil
	}

	tempDir, err := os.MkdirTemp("", "campaign-attachments-")
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logrus.Warnf("Failed to clean up staging directory %s: %v", tempDir, err)
		}
	}

	staged := make([]EmailAttachment, 0, len(files))
	for _, file := range files {
		src, err := os.Open(file.FilePath)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to open attachment %s: %w", file.OriginalName, err)
		}
		dstPath := filepath.Join(tempDir, file.FileName)
		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to stage attachment %s: %w", file.OriginalName, err)
		}
		_, copyErr := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if copyErr != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to stage attachment %s: %w", file.OriginalName, copyErr)
		}
		staged = append(staged, EmailAttachment{Name: file.OriginalName, Path: dstPath})
	}
	return staged, cleanup, nil
}

// estimateRemaining projects time left from throughput so far
func estimateRemaining(elapsed time.Duration, done, total int) string {
	if done == 0 || done >= total {
		return ""
	}
	remaining := time.Duration(int64(elapsed) / int64(done) * int64(total-done))
	return remaining.Round(time.Second).String()
}

func outcomeLogLine(done, total int, email, status, errorMessage string) string {
	switch status {
	case models.SendStatusSent:
		return fmt.Sprintf("[%d/%d] Sent to %s", done, total, email)
	case models.SendStatusSkipped:
		return fmt.Sprintf("[%d/%d] Skipped %s: %s", done, total, email, errorMessage)
	default:
		return fmt.Sprintf("[%d/%d] Failed to send to %s: %s", done, total, email, errorMessage)
	}
}
