package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raakesh-m/autosendr-backend/internal/config"
	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

const testUserID = "11111111-1111-1111-1111-111111111111"

func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// A pooled in-memory sqlite would hand each connection its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func newTestKeyService(t *testing.T) (*AIKeyService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t, &models.AIApiKey{}, &models.AIPreferences{})
	return NewAIKeyService(repository.NewAIKeyRepository(db), repository.NewAIPreferencesRepository(db)), db
}

func seedKey(t *testing.T, db *gorm.DB, key *models.AIApiKey) *models.AIApiKey {
	t.Helper()
	if key.UserID == "" {
		key.UserID = testUserID
	}
	if key.DailyResetAt.IsZero() {
		key.DailyResetAt = todayUTC()
	}
	key.IsActive = true
	require.NoError(t, db.Create(key).Error)
	return key
}

func TestGetBestAvailableKeyPicksLeastUsed(t *testing.T) {
	svc, db := newTestKeyService(t)

	used := time.Now().Add(-time.Hour)
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "busy", APIKey: "k1", RotationEnabled: true, UsageCount: 50, LastUsedAt: &used})
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "idle", APIKey: "k2", RotationEnabled: true, UsageCount: 3, LastUsedAt: &used})

	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, "idle", sel.Key.KeyName)
	assert.Equal(t, config.ProviderGroq, sel.Provider)
	assert.False(t, sel.Fallback)
}

func TestGetBestAvailableKeyNeverUsedWinsTie(t *testing.T) {
	svc, db := newTestKeyService(t)

	used := time.Now().Add(-time.Minute)
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "recent", APIKey: "k1", RotationEnabled: true, UsageCount: 0, LastUsedAt: &used})
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "fresh", APIKey: "k2", RotationEnabled: true, UsageCount: 0})

	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, "fresh", sel.Key.KeyName)
}

func TestGetBestAvailableKeyExcludesRateLimited(t *testing.T) {
	svc, db := newTestKeyService(t)

	// Groq's reset window is 24h: a fresh stamp excludes the key, a stamp
	// older than the window makes it available again
	recentHit := time.Now().Add(-time.Hour)
	staleHit := time.Now().Add(-25 * time.Hour)
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "limited", APIKey: "k1", RotationEnabled: true, UsageCount: 0, RateLimitHitAt: &recentHit})
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "recovered", APIKey: "k2", RotationEnabled: true, UsageCount: 99, RateLimitHitAt: &staleHit, DailyResetAt: todayUTC()})

	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, "recovered", sel.Key.KeyName)
}

func TestGetBestAvailableKeyFallsBackAcrossProviders(t *testing.T) {
	svc, db := newTestKeyService(t)

	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderOpenAI, KeyName: "backup", APIKey: "k1", RotationEnabled: true})

	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, sel.Provider)
	assert.True(t, sel.Fallback)
}

func TestDailyLimitIsAdvisory(t *testing.T) {
	svc, db := newTestKeyService(t)

	limit := int64(14400)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "near-limit", APIKey: "k1", RotationEnabled: true, UsageCount: 14399, DailyLimit: &limit})

	require.NoError(t, svc.RecordKeyUsage(key.ID, true, 1, ""))

	// Reaching the configured limit does not block selection; only a vendor
	// rate-limit stamp takes a key out of rotation
	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, "near-limit", sel.Key.KeyName)
	assert.Equal(t, int64(14400), sel.Key.UsageCount)
}

func TestGetBestAvailableKeyFallbackDisabled(t *testing.T) {
	svc, db := newTestKeyService(t)

	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderOpenAI, KeyName: "backup", APIKey: "k1", RotationEnabled: true})

	disabled := false
	_, err := svc.UpdatePreferences(testUserID, &models.UpdateAIPreferencesRequest{FallbackEnabled: &disabled})
	require.NoError(t, err)

	_, err = svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	assert.ErrorIs(t, err, ErrAllKeysRateLimited)
}

func TestGetBestAvailableKeyGlobalRotationFiltersKeys(t *testing.T) {
	svc, db := newTestKeyService(t)

	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "pinned", APIKey: "k1", RotationEnabled: false, UsageCount: 0})
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "rotating", APIKey: "k2", RotationEnabled: true, UsageCount: 10})

	enabled := true
	_, err := svc.UpdatePreferences(testUserID, &models.UpdateAIPreferencesRequest{EnableGlobalRotation: &enabled})
	require.NoError(t, err)

	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, "rotating", sel.Key.KeyName)
}

func TestGetBestAvailableKeyNoKeys(t *testing.T) {
	svc, _ := newTestKeyService(t)

	_, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	assert.ErrorIs(t, err, ErrNoActiveKeys)
}

func TestGetBestAvailableKeyAllRateLimited(t *testing.T) {
	svc, db := newTestKeyService(t)

	hit := time.Now()
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "limited", APIKey: "k1", RotationEnabled: true, RateLimitHitAt: &hit})

	_, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	assert.ErrorIs(t, err, ErrAllKeysRateLimited)
}

func TestGetBestAvailableKeyUnsupportedProvider(t *testing.T) {
	svc, _ := newTestKeyService(t)

	_, err := svc.GetBestAvailableKey(testUserID, "mistral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestGetBestAvailableKeyLazyDailyRollover(t *testing.T) {
	svc, db := newTestKeyService(t)

	hit := time.Now().Add(-time.Hour)
	yesterday := todayUTC().AddDate(0, 0, -1)
	seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "stale", APIKey: "k1", RotationEnabled: true, UsageCount: 500, RateLimitHitAt: &hit, DailyResetAt: yesterday})

	// Rollover runs lazily during selection: the stale counters and the
	// rate-limit stamp must not block today's traffic
	sel, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)
	assert.Equal(t, "stale", sel.Key.KeyName)

	var reloaded models.AIApiKey
	require.NoError(t, db.First(&reloaded, sel.Key.ID).Error)
	assert.EqualValues(t, 0, reloaded.UsageCount)
	assert.Nil(t, reloaded.RateLimitHitAt)
	assert.Equal(t, todayUTC().Format("2006-01-02"), reloaded.DailyResetAt.Format("2006-01-02"))
}

func TestRecordKeyUsageSuccess(t *testing.T) {
	svc, db := newTestKeyService(t)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "k", APIKey: "k1", RotationEnabled: true, UsageCount: 5})

	require.NoError(t, svc.RecordKeyUsage(key.ID, true, 3, ""))

	var reloaded models.AIApiKey
	require.NoError(t, db.First(&reloaded, key.ID).Error)
	assert.EqualValues(t, 8, reloaded.UsageCount)
	assert.NotNil(t, reloaded.LastUsedAt)
}

func TestRecordKeyUsageSuccessCountsAtLeastOne(t *testing.T) {
	svc, db := newTestKeyService(t)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "k", APIKey: "k1", RotationEnabled: true})

	require.NoError(t, svc.RecordKeyUsage(key.ID, true, 0, ""))

	var reloaded models.AIApiKey
	require.NoError(t, db.First(&reloaded, key.ID).Error)
	assert.EqualValues(t, 1, reloaded.UsageCount)
}

func TestRecordKeyUsageRateLimit(t *testing.T) {
	svc, db := newTestKeyService(t)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "k", APIKey: "k1", RotationEnabled: true, UsageCount: 5})

	require.NoError(t, svc.RecordKeyUsage(key.ID, false, 0, "rate_limit_exceeded"))

	var reloaded models.AIApiKey
	require.NoError(t, db.First(&reloaded, key.ID).Error)
	assert.NotNil(t, reloaded.RateLimitHitAt)
	assert.EqualValues(t, 5, reloaded.UsageCount, "a rate-limit hit must not consume usage")
}

func TestRecordKeyUsageOtherFailureLeavesKeyUntouched(t *testing.T) {
	svc, db := newTestKeyService(t)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "k", APIKey: "k1", RotationEnabled: true, UsageCount: 5})

	require.NoError(t, svc.RecordKeyUsage(key.ID, false, 0, "auth_invalid"))

	var reloaded models.AIApiKey
	require.NoError(t, db.First(&reloaded, key.ID).Error)
	assert.Nil(t, reloaded.RateLimitHitAt)
	assert.EqualValues(t, 5, reloaded.UsageCount)
	assert.Nil(t, reloaded.LastUsedAt)
}

func TestResetDailyUsageIsIdempotent(t *testing.T) {
	svc, db := newTestKeyService(t)

	hit := time.Now()
	yesterday := todayUTC().AddDate(0, 0, -1)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "k", APIKey: "k1", RotationEnabled: true, UsageCount: 42, RateLimitHitAt: &hit, DailyResetAt: yesterday})

	require.NoError(t, svc.ResetDailyUsage())
	require.NoError(t, svc.ResetDailyUsage())

	var reloaded models.AIApiKey
	require.NoError(t, db.First(&reloaded, key.ID).Error)
	assert.EqualValues(t, 0, reloaded.UsageCount)
	assert.Nil(t, reloaded.RateLimitHitAt)
}

func TestSelectionSeesWritesThroughCache(t *testing.T) {
	svc, db := newTestKeyService(t)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "only", APIKey: "k1", RotationEnabled: true})

	// Prime the candidate cache
	_, err := svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	require.NoError(t, err)

	// Deactivating through the service must invalidate the cached candidates
	inactive := false
	_, err = svc.UpdateKey(testUserID, key.ID, &models.UpdateAIKeyRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	assert.ErrorIs(t, err, ErrNoActiveKeys)
}

func TestCreateKeyPersistsDisabledRotation(t *testing.T) {
	svc, db := newTestKeyService(t)

	pinned := false
	created, err := svc.CreateKey(testUserID, &models.CreateAIKeyRequest{
		Provider:        config.ProviderGroq,
		KeyName:         "pinned",
		APIKey:          "gsk_pinned",
		RotationEnabled: &pinned,
	})
	require.NoError(t, err)
	assert.False(t, created.RotationEnabled)

	// The explicit false must survive the insert, not be replaced by a
	// column default
	var stored models.AIApiKey
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.False(t, stored.RotationEnabled)
	assert.True(t, stored.IsActive)

	// With global rotation on, the pinned key is not a candidate
	enabled := true
	_, err = svc.UpdatePreferences(testUserID, &models.UpdateAIPreferencesRequest{EnableGlobalRotation: &enabled})
	require.NoError(t, err)

	_, err = svc.GetBestAvailableKey(testUserID, config.ProviderGroq)
	assert.ErrorIs(t, err, ErrAllKeysRateLimited)
}

func TestCreateKeyDefaultsRotationEnabled(t *testing.T) {
	svc, db := newTestKeyService(t)

	created, err := svc.CreateKey(testUserID, &models.CreateAIKeyRequest{
		Provider: config.ProviderGroq,
		KeyName:  "primary",
		APIKey:   "gsk_primary",
	})
	require.NoError(t, err)

	var stored models.AIApiKey
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.True(t, stored.RotationEnabled)
	assert.True(t, stored.IsActive)
}

func TestCreateKeyRejectsUnknownProvider(t *testing.T) {
	svc, _ := newTestKeyService(t)

	_, err := svc.CreateKey(testUserID, &models.CreateAIKeyRequest{Provider: "mistral", KeyName: "k", APIKey: "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestDeleteKeyScopedToOwner(t *testing.T) {
	svc, db := newTestKeyService(t)
	key := seedKey(t, db, &models.AIApiKey{Provider: config.ProviderGroq, KeyName: "k", APIKey: "k1", RotationEnabled: true})

	err := svc.DeleteKey("22222222-2222-2222-2222-222222222222", key.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, svc.DeleteKey(testUserID, key.ID))
}
