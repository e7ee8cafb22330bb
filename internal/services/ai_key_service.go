package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raakesh-m/autosendr-backend/internal/config"
	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// Selection failure modes. Callers present different guidance for each: "add
// a key" vs "wait for the rate-limit window to pass".
var (
	ErrNoActiveKeys       = errors.New("no active API keys configured")
	ErrAllKeysRateLimited = errors.New("all API keys are currently rate-limited")
)

// KeySelection is the outcome of one key pick
type KeySelection struct {
	Key      *models.AIApiKey
	Provider string
	Model    string // key's preferred model or the provider default
	Fallback bool   // key came from a non-preferred provider
}

const candidateCacheTTL = time.Minute

type candidateCacheEntry struct {
	keys      []models.AIApiKey
	expiresAt time.Time
}

type prefsCacheEntry struct {
	prefs     *models.AIPreferences
	expiresAt time.Time
}

// AIKeyService owns key selection, usage recording and key CRUD. Candidate
// lists and preferences are cached briefly so a bulk campaign loop does not
// hit the database for every single dispatch; any write clears the whole
// cache. The cache is advisory only, a stale read just means a slightly
// suboptimal pick.
type AIKeyService struct {
	keyRepo   *repository.AIKeyRepository
	prefsRepo *repository.AIPreferencesRepository

	cacheMu        sync.RWMutex
	candidateCache map[string]candidateCacheEntry
	prefsCache     map[string]prefsCacheEntry

	resetInterval time.Duration
	stopChan      chan bool
}

func NewAIKeyService(keyRepo *repository.AIKeyRepository, prefsRepo *repository.AIPreferencesRepository) *AIKeyService {
	return &AIKeyService{
		keyRepo:        keyRepo,
		prefsRepo:      prefsRepo,
		candidateCache: make(map[string]candidateCacheEntry),
		prefsCache:     make(map[string]prefsCacheEntry),
		resetInterval:  time.Hour,
		stopChan:       make(chan bool),
	}
}

// GetBestAvailableKey picks the best usable key for the user, preferring
// preferredProvider (or the user's configured provider when empty) and
// falling back across providers in catalog order when allowed.
func (s *AIKeyService) GetBestAvailableKey(userID, preferredProvider string) (*KeySelection, error) {
	prefs, err := s.getPreferences(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load AI preferences: %w", err)
	}

	targetProvider := preferredProvider
	if targetProvider == "" {
		targetProvider = prefs.PreferredProvider
	}
	if !config.IsProviderSupported(targetProvider) {
		return nil, fmt.Errorf("provider '%s' is not supported", targetProvider)
	}

	// Lazy rollover keeps counters correct even if the daily ticker missed
	if err := s.keyRepo.RolloverStaleDaily(userID, todayUTC()); err != nil {
		logrus.Warnf("Daily rollover failed for user %s: %v", userID, err)
	}

	if key, err := s.pickCandidate(userID, targetProvider, prefs.EnableGlobalRotation); err != nil {
		return nil, err
	} else if key != nil {
		return s.selection(key, false), nil
	}

	if prefs.FallbackEnabled {
		for _, provider := range config.ProviderOrder {
			if provider == targetProvider {
				continue
			}
			key, err := s.pickCandidate(userID, provider, prefs.EnableGlobalRotation)
			if err != nil {
				return nil, err
			}
			if key != nil {
				return s.selection(key, true), nil
			}
		}
	}

	// Nothing usable anywhere; distinguish "no keys" from "all rate-limited"
	activeCount, err := s.keyRepo.CountActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active keys: %w", err)
	}
	if activeCount == 0 {
		return nil, ErrNoActiveKeys
	}
	return nil, ErrAllKeysRateLimited
}

// pickCandidate returns the least-used usable key for (user, provider), or
// nil when none qualify
func (s *AIKeyService) pickCandidate(userID, provider string, rotationOnly bool) (*models.AIApiKey, error) {
	keys, err := s.candidatesFor(userID, provider, rotationOnly)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	key := keys[0]
	return &key, nil
}

func (s *AIKeyService) selection(key *models.AIApiKey, fallback bool) *KeySelection {
	model := key.PreferredModel
	if model == "" {
		model = config.DefaultModelFor(key.Provider)
	}
	return &KeySelection{Key: key, Provider: key.Provider, Model: model, Fallback: fallback}
}

func (s *AIKeyService) candidatesFor(userID, provider string, rotationOnly bool) ([]models.AIApiKey, error) {
	cacheKey := fmt.Sprintf("%s:%s:%t", userID, provider, rotationOnly)

	s.cacheMu.RLock()
	if entry, ok := s.candidateCache[cacheKey]; ok && time.Now().Before(entry.expiresAt) {
		keys := entry.keys
		s.cacheMu.RUnlock()
		return keys, nil
	}
	s.cacheMu.RUnlock()

	providerCfg, err := config.GetProviderConfig(provider)
	if err != nil {
		return nil, err
	}

	// A stamp at exactly the cutoff means the window has fully elapsed and
	// the key is available again
	cutoff := time.Now().Add(-time.Duration(providerCfg.RateLimitResetHours) * time.Hour)
	keys, err := s.keyRepo.GetCandidates(userID, provider, rotationOnly, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate keys: %w", err)
	}

	s.cacheMu.Lock()
	s.candidateCache[cacheKey] = candidateCacheEntry{keys: keys, expiresAt: time.Now().Add(candidateCacheTTL)}
	s.cacheMu.Unlock()
	return keys, nil
}

func (s *AIKeyService) getPreferences(userID string) (*models.AIPreferences, error) {
	s.cacheMu.RLock()
	if entry, ok := s.prefsCache[userID]; ok && time.Now().Before(entry.expiresAt) {
		prefs := entry.prefs
		s.cacheMu.RUnlock()
		return prefs, nil
	}
	s.cacheMu.RUnlock()

	prefs, err := s.prefsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.prefsCache[userID] = prefsCacheEntry{prefs: prefs, expiresAt: time.Now().Add(candidateCacheTTL)}
	s.cacheMu.Unlock()
	return prefs, nil
}

// InvalidateCache drops all cached candidate lists and preferences. Coarse
// on purpose: staleness only costs a suboptimal pick, never a wrong one.
func (s *AIKeyService) InvalidateCache() {
	s.cacheMu.Lock()
	s.candidateCache = make(map[string]candidateCacheEntry)
	s.prefsCache = make(map[string]prefsCacheEntry)
	s.cacheMu.Unlock()
}

// RecordKeyUsage updates key state after a dispatch attempt. Success adds
// usage units atomically; a rate-limit failure stamps the key out of rotation;
// any other failure leaves the key untouched so a transient error does not
// penalize future rotation.
func (s *AIKeyService) RecordKeyUsage(keyID uint, success bool, tokensUsed int64, errorType string) error {
	defer s.InvalidateCache()

	if success {
		if tokensUsed < 1 {
			tokensUsed = 1
		}
		return s.keyRepo.IncrementUsage(keyID, tokensUsed)
	}
	if errorType == "rate_limit_exceeded" {
		logrus.Warnf("Marking API key %d as rate-limited", keyID)
		return s.keyRepo.MarkRateLimited(keyID)
	}
	return nil
}

// ResetDailyUsage performs the global daily rollover. Idempotent and safe to
// run many times a day; exposed for an external cron as well as the ticker.
func (s *AIKeyService) ResetDailyUsage() error {
	affected, err := s.keyRepo.ResetDailyUsage(todayUTC())
	if err != nil {
		return fmt.Errorf("failed to reset daily usage: %w", err)
	}
	s.InvalidateCache()
	if affected > 0 {
		logrus.Infof("Daily usage reset completed: %d keys rolled over", affected)
	}
	return nil
}

// StartDailyResetScheduler runs ResetDailyUsage periodically in the background
func (s *AIKeyService) StartDailyResetScheduler() {
	go s.runResetLoop()
	logrus.Info("Daily usage reset scheduler started")
}

// StopDailyResetScheduler stops the background scheduler
func (s *AIKeyService) StopDailyResetScheduler() {
	s.stopChan <- true
	logrus.Info("Daily usage reset scheduler stopped")
}

func (s *AIKeyService) runResetLoop() {
	ticker := time.NewTicker(s.resetInterval)
	defer ticker.Stop()

	if err := s.ResetDailyUsage(); err != nil {
		logrus.Errorf("Initial daily usage reset failed: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.ResetDailyUsage(); err != nil {
				logrus.Errorf("Daily usage reset failed: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// CreateKey registers a new API key for a user
func (s *AIKeyService) CreateKey(userID string, req *models.CreateAIKeyRequest) (*models.AIApiKey, error) {
	if !config.IsProviderSupported(req.Provider) {
		return nil, fmt.Errorf("provider '%s' is not supported", req.Provider)
	}

	rotationEnabled := true
	if req.RotationEnabled != nil {
		rotationEnabled = *req.RotationEnabled
	}

	key := &models.AIApiKey{
		UserID:          userID,
		Provider:        req.Provider,
		KeyName:         req.KeyName,
		APIKey:          req.APIKey,
		PreferredModel:  req.PreferredModel,
		IsActive:        true,
		RotationEnabled: rotationEnabled,
		DailyLimit:      req.DailyLimit,
		DailyResetAt:    todayUTC(),
		Notes:           req.Notes,
	}
	if err := s.keyRepo.Create(key); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}
	s.InvalidateCache()
	return key, nil
}

// GetKeys returns all of a user's keys, optionally filtered by provider
func (s *AIKeyService) GetKeys(userID, provider string) ([]models.AIApiKey, error) {
	if provider != "" && !config.IsProviderSupported(provider) {
		return nil, fmt.Errorf("provider '%s' is not supported", provider)
	}
	return s.keyRepo.GetByUserID(userID, provider)
}

// UpdateKey applies a partial update to a user's key
func (s *AIKeyService) UpdateKey(userID string, keyID uint, req *models.UpdateAIKeyRequest) (*models.AIApiKey, error) {
	key, err := s.keyRepo.GetByID(keyID, userID)
	if err != nil {
		return nil, fmt.Errorf("API key not found: %w", err)
	}

	if req.KeyName != nil {
		key.KeyName = *req.KeyName
	}
	if req.APIKey != nil {
		key.APIKey = *req.APIKey
	}
	if req.PreferredModel != nil {
		key.PreferredModel = *req.PreferredModel
	}
	if req.IsActive != nil {
		key.IsActive = *req.IsActive
	}
	if req.RotationEnabled != nil {
		key.RotationEnabled = *req.RotationEnabled
	}
	if req.DailyLimit != nil {
		key.DailyLimit = req.DailyLimit
	}
	if req.Notes != nil {
		key.Notes = *req.Notes
	}

	if err := s.keyRepo.Update(key); err != nil {
		return nil, fmt.Errorf("failed to update API key: %w", err)
	}
	s.InvalidateCache()
	return key, nil
}

// DeleteKey removes a user's key
func (s *AIKeyService) DeleteKey(userID string, keyID uint) error {
	if err := s.keyRepo.Delete(keyID, userID); err != nil {
		return err
	}
	s.InvalidateCache()
	return nil
}

// GetPreferences returns the user's AI preferences, creating defaults on
// first access
func (s *AIKeyService) GetPreferences(userID string) (*models.AIPreferences, error) {
	return s.prefsRepo.GetOrCreate(userID)
}

// UpdatePreferences applies a partial update to the user's AI preferences
func (s *AIKeyService) UpdatePreferences(userID string, req *models.UpdateAIPreferencesRequest) (*models.AIPreferences, error) {
	prefs, err := s.prefsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if req.EnableGlobalRotation != nil {
		prefs.EnableGlobalRotation = *req.EnableGlobalRotation
	}
	if req.PreferredProvider != nil {
		if !config.IsProviderSupported(*req.PreferredProvider) {
			return nil, fmt.Errorf("provider '%s' is not supported", *req.PreferredProvider)
		}
		prefs.PreferredProvider = *req.PreferredProvider
	}
	if req.FallbackEnabled != nil {
		prefs.FallbackEnabled = *req.FallbackEnabled
	}

	if err := s.prefsRepo.Update(prefs); err != nil {
		return nil, fmt.Errorf("failed to update AI preferences: %w", err)
	}
	s.InvalidateCache()
	return prefs, nil
}

// todayUTC returns today's date at midnight UTC, the daily rollover boundary
func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
