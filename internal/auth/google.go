package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleClaims are the identity fields the service uses from a verified
// Google ID token.
type GoogleClaims struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifies a Google ID token and extracts its claims.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleClaims, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier bound to the application's OAuth
// client id.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google token: %w", err)
	}

	claims := &GoogleClaims{
		Sub:     payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}
	if claims.Sub == "" || claims.Email == "" {
		return nil, fmt.Errorf("google token payload missing sub/email")
	}
	return claims, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
