package service

import (
	"context"
	"fmt"
	"testing"

	"catty_srv/internal/auth"
	"catty_srv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGoogleVerifier returns canned claims instead of calling Google.
type fakeGoogleVerifier struct {
	claims *auth.GoogleClaims
	err    error
}

func (f *fakeGoogleVerifier) Verify(ctx context.Context, token string) (*auth.GoogleClaims, error) {
	return f.claims, f.err
}

func testSigner(userID string) (string, error) {
	return "token-for-" + userID, nil
}

func setupAuthService(t *testing.T, google auth.GoogleVerifier) (*AuthService, *gorm.DB) {
	db := setupTestDB(t)
	return NewAuthService(db, testSigner, google, setupTestLogger()), db
}

func TestRegister(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	result, err := svc.Register(context.Background(), "  User@Example.COM ", "secret123", "Test User")
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", result.User.Email)
	assert.Equal(t, ProviderLocal, result.User.Provider)
	assert.Equal(t, "token-for-"+result.User.ID, result.Token)
	assert.NotEqual(t, "secret123", result.User.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	_, err := svc.Register(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "USER@example.com", "other456", "")
	assert.True(t, IsConflict(err))
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	_, err := svc.Register(context.Background(), "", "secret123", "")
	assert.True(t, IsValidation(err))

	_, err = svc.Register(context.Background(), "user@example.com", "", "")
	assert.True(t, IsValidation(err))
}

func TestLogin(t *testing.T) {
	svc, db := setupAuthService(t, nil)

	_, err := svc.Register(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "user@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotNil(t, result.User.LastLoginAt)

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "user@example.com").Error)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	_, err := svc.Register(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	// Unknown email and wrong password fail the same way.
	_, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.True(t, IsUnauthorized(err))

	_, err = svc.Login(context.Background(), "user@example.com", "wrong")
	assert.True(t, IsUnauthorized(err))
}

func TestLoginInactiveUser(t *testing.T) {
	svc, db := setupAuthService(t, nil)

	result, err := svc.Register(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", result.User.ID).Update("is_active", false).Error)

	_, err = svc.Login(context.Background(), "user@example.com", "secret123")
	assert.True(t, IsUnauthorized(err))
}

func TestGoogleLoginCreatesUser(t *testing.T) {
	verifier := &fakeGoogleVerifier{claims: &auth.GoogleClaims{
		Sub:     "google-sub-1",
		Email:   "guser@example.com",
		Name:    "G User",
		Picture: "https://example.com/p.png",
	}}
	svc, _ := setupAuthService(t, verifier)

	result, err := svc.GoogleLogin(context.Background(), "some-id-token")
	require.NoError(t, err)

	assert.Equal(t, "guser@example.com", result.User.Email)
	assert.Equal(t, ProviderGoogle, result.User.Provider)
	require.NotNil(t, result.User.GoogleSub)
	assert.Equal(t, "google-sub-1", *result.User.GoogleSub)
}

func TestGoogleLoginLinksLocalAccount(t *testing.T) {
	verifier := &fakeGoogleVerifier{claims: &auth.GoogleClaims{
		Sub:   "google-sub-2",
		Email: "user@example.com",
		Name:  "Linked User",
	}}
	svc, _ := setupAuthService(t, verifier)

	local, err := svc.Register(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	result, err := svc.GoogleLogin(context.Background(), "some-id-token")
	require.NoError(t, err)

	assert.Equal(t, local.User.ID, result.User.ID)
	assert.Equal(t, ProviderMixed, result.User.Provider)
	require.NotNil(t, result.User.GoogleSub)
	assert.Equal(t, "google-sub-2", *result.User.GoogleSub)
	assert.Equal(t, "Linked User", result.User.FullName)
}

func TestGoogleLoginInvalidToken(t *testing.T) {
	verifier := &fakeGoogleVerifier{err: fmt.Errorf("token expired")}
	svc, _ := setupAuthService(t, verifier)

	_, err := svc.GoogleLogin(context.Background(), "bad-token")
	assert.True(t, IsUnauthorized(err))
}

func TestGoogleLoginNotConfigured(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	_, err := svc.GoogleLogin(context.Background(), "some-id-token")
	assert.True(t, IsUnauthorized(err))
}

func TestGetUser(t *testing.T) {
	svc, db := setupAuthService(t, nil)

	result, err := svc.Register(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	user, err := svc.GetUser(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.Email, user.Email)

	_, err = svc.GetUser(context.Background(), "missing-id")
	assert.True(t, IsUnauthorized(err))

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", result.User.ID).Update("is_active", false).Error)
	_, err = svc.GetUser(context.Background(), result.User.ID)
	assert.True(t, IsUnauthorized(err))
}
