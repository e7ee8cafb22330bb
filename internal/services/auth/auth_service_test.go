package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))
	return NewAuthService(db)
}

func register(t *testing.T, svc *AuthService) *models.AuthResponse {
	t.Helper()
	resp, err := svc.Register(&models.RegisterRequest{Username: "jane", Password: "secret123"})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)

	resp := register(t, svc)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	login, err := svc.Login(&models.LoginRequest{Username: "jane", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(&models.LoginRequest{Username: "jane", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService(t)
	register(t, svc)

	_, err := svc.Register(&models.RegisterRequest{Username: "jane", Password: "other456"})
	assert.EqualError(t, err, "username already exists")
}

func TestValidateToken(t *testing.T) {
	svc := newTestAuthService(t)
	resp := register(t, svc)

	info, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, info.UserID)
	assert.Equal(t, "jane", info.Username)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshTokenRotates(t *testing.T) {
	svc := newTestAuthService(t)
	resp := register(t, svc)

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The used refresh token is revoked and cannot be replayed
	_, err = svc.RefreshToken(resp.RefreshToken)
	assert.EqualError(t, err, "invalid refresh token")
}

func TestLogoutAllSessionsInvalidatesAccessTokens(t *testing.T) {
	svc := newTestAuthService(t)
	resp := register(t, svc)

	// Logout without a refresh token bumps the token version for every session
	require.NoError(t, svc.Logout("", resp.User.ID))

	_, err := svc.ValidateToken(resp.AccessToken)
	assert.EqualError(t, err, "token version mismatch")

	_, err = svc.RefreshToken(resp.RefreshToken)
	assert.EqualError(t, err, "invalid refresh token")
}

func TestCreateAdminUser(t *testing.T) {
	svc := newTestAuthService(t)

	// Without credentials in the environment nothing is created
	require.NoError(t, svc.CreateAdminUser())
	_, err := svc.Login(&models.LoginRequest{Username: "admin", Password: "bootpass1"})
	assert.Error(t, err)

	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "bootpass1")

	require.NoError(t, svc.CreateAdminUser())
	resp, err := svc.Login(&models.LoginRequest{Username: "admin", Password: "bootpass1"})
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)

	// Re-running the bootstrap is a no-op
	require.NoError(t, svc.CreateAdminUser())
}

func TestChangePassword(t *testing.T) {
	svc := newTestAuthService(t)
	resp := register(t, svc)

	err := svc.ChangePassword(resp.User.ID, "wrong", "newpass123")
	assert.EqualError(t, err, "current password is incorrect")

	require.NoError(t, svc.ChangePassword(resp.User.ID, "secret123", "newpass123"))

	// Old access tokens die with the version bump, the new password works
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.EqualError(t, err, "token version mismatch")

	_, err = svc.Login(&models.LoginRequest{Username: "jane", Password: "newpass123"})
	assert.NoError(t, err)
}
