package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services/providers"
)

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// AIService is the single entry point for AI generation. One call maps to
// exactly one dispatch attempt: a failed key is penalized for future
// selections, never retried in-line. Bulk flows handle retry by moving on to
// the next contact.
type AIService struct {
	keyService *AIKeyService
	// adapterFor is swappable for tests; defaults to providers.ForProvider
	adapterFor func(provider string) (providers.Adapter, error)
}

func NewAIService(keyService *AIKeyService) *AIService {
	return &AIService{
		keyService: keyService,
		adapterFor: providers.ForProvider,
	}
}

// GenerateContent selects a key, dispatches one generation request and
// records the outcome. It always returns a typed result and never panics.
func (s *AIService) GenerateContent(ctx context.Context, userID, prompt string, opts models.GenerateOptions) (result *models.GenerateResult) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Recovered from panic in AI generation for user %s: %v", userID, r)
			result = &models.GenerateResult{
				Success:   false,
				Error:     fmt.Sprintf("internal error: %v", r),
				ErrorCode: models.AIErrorVendor,
			}
		}
	}()

	selection, err := s.keyService.GetBestAvailableKey(userID, opts.PreferredProvider)
	if err != nil {
		return selectionFailure(err)
	}

	adapter, err := s.adapterFor(selection.Provider)
	if err != nil {
		return &models.GenerateResult{
			Success:   false,
			Provider:  selection.Provider,
			Error:     err.Error(),
			ErrorCode: models.AIErrorVendor,
		}
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	content, err := adapter.Generate(ctx, selection.Key.APIKey, selection.Model, prompt, maxTokens, temperature)
	if err != nil {
		return s.dispatchFailure(selection, err)
	}

	if err := s.keyService.RecordKeyUsage(selection.Key.ID, true, 1, ""); err != nil {
		logrus.Warnf("Failed to record usage for key %d: %v", selection.Key.ID, err)
	}

	return &models.GenerateResult{
		Success:  true,
		Content:  content,
		Provider: selection.Provider,
		Model:    selection.Model,
		Fallback: selection.Fallback,
	}
}

func selectionFailure(err error) *models.GenerateResult {
	switch {
	case errors.Is(err, ErrNoActiveKeys):
		return &models.GenerateResult{
			Success:   false,
			Error:     "no active API keys configured; add a key to enable AI features",
			ErrorCode: models.AIErrorNoKeys,
		}
	case errors.Is(err, ErrAllKeysRateLimited):
		return &models.GenerateResult{
			Success:   false,
			Error:     "all API keys are currently rate-limited; try again later",
			ErrorCode: models.AIErrorRateLimited,
		}
	default:
		return &models.GenerateResult{
			Success:   false,
			Error:     err.Error(),
			ErrorCode: models.AIErrorVendor,
		}
	}
}

func (s *AIService) dispatchFailure(selection *KeySelection, err error) *models.GenerateResult {
	class := providers.ClassOf(err)
	errorCode := models.AIErrorVendor

	switch class {
	case providers.ErrClassRateLimit:
		errorCode = models.AIErrorRateLimited
		if recordErr := s.keyService.RecordKeyUsage(selection.Key.ID, false, 0, "rate_limit_exceeded"); recordErr != nil {
			logrus.Warnf("Failed to mark key %d rate-limited: %v", selection.Key.ID, recordErr)
		}
	case providers.ErrClassAuth:
		errorCode = models.AIErrorAuth
	case providers.ErrClassBilling:
		errorCode = models.AIErrorBilling
	case providers.ErrClassNetwork:
		errorCode = models.AIErrorNetwork
	}

	logrus.Warnf("AI dispatch failed (provider=%s model=%s class=%s): %v", selection.Provider, selection.Model, class, err)

	return &models.GenerateResult{
		Success:   false,
		Provider:  selection.Provider,
		Model:     selection.Model,
		Fallback:  selection.Fallback,
		Error:     err.Error(),
		ErrorCode: errorCode,
	}
}
