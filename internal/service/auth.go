package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catty_srv/internal/auth"
	"catty_srv/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Account providers
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderMixed  = "mixed"
)

// TokenSigner issues a bearer token for a user id.
type TokenSigner func(userID string) (string, error)

// AuthService handles registration, sign-in, and identity resolution.
type AuthService struct {
	db        *gorm.DB
	logger    *logrus.Logger
	signToken TokenSigner
	google    auth.GoogleVerifier
	now       func() time.Time
}

// AuthResult is a signed token plus the authenticated user.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewAuthService creates a new auth service. google may be nil when Google
// sign-in is not configured.
func NewAuthService(db *gorm.DB, signToken TokenSigner, google auth.GoogleVerifier, logger *logrus.Logger) *AuthService {
	return &AuthService{
		db:        db,
		logger:    logger,
		signToken: signToken,
		google:    google,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a local account. Duplicate emails are a conflict.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, NewValidationError("email and password are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, NewConflictError("email already in use")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Provider:     ProviderLocal,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return s.authResult(user)
}

// Login verifies a local credential pair. Invalid email, missing password
// hash, and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewUnauthorizedError("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.PasswordHash == "" || !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if !user.IsActive {
		return nil, NewUnauthorizedError("user inactive")
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	return s.authResult(&user)
}

// GoogleLogin verifies a Google ID token and signs the matching account in,
// creating it on first sight or linking the Google subject to an existing
// email account.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if idToken == "" {
		return nil, NewValidationError("id_token is required")
	}
	if s.google == nil {
		return nil, NewUnauthorizedError("google sign-in is not configured")
	}

	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.WithError(err).Warn("Google token verification failed")
		return nil, NewUnauthorizedError("invalid google token")
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Where("google_sub = ? OR email = ?", claims.Sub, claims.Email).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:     claims.Email,
			GoogleSub: &claims.Sub,
			FullName:  claims.Name,
			AvatarURL: claims.Picture,
			Provider:  ProviderGoogle,
			IsActive:  true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.WithField("user_id", user.ID).Info("User created via Google sign-in")
	case err != nil:
		return nil, fmt.Errorf("get user: %w", err)
	default:
		if user.GoogleSub == nil {
			sub := claims.Sub
			user.GoogleSub = &sub
		}
		if user.FullName == "" && claims.Name != "" {
			user.FullName = claims.Name
		}
		if user.AvatarURL == "" && claims.Picture != "" {
			user.AvatarURL = claims.Picture
		}
		if user.Provider == ProviderLocal {
			user.Provider = ProviderMixed
		}
		now := s.now()
		user.LastLoginAt = &now
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, fmt.Errorf("link google account: %w", err)
		}
	}

	if !user.IsActive {
		return nil, NewUnauthorizedError("user inactive")
	}

	return s.authResult(&user)
}

// GetUser resolves an authenticated subject to an active user.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewUnauthorizedError("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, NewUnauthorizedError("user inactive")
	}
	return &user, nil
}

func (s *AuthService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
