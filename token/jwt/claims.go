package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when the access token carries no exp claim
var ErrNoExpiry = errors.New("token has no exp claim")

// TokenClaims is the subset of access token claims the dashboard reads.
// The dashboard never holds the backend signing key, so the claims are informational only.
type TokenClaims struct {
	Sub   string    `json:"sub,omitempty"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
	Iat   time.Time `json:"iat,omitempty"`
	Exp   time.Time `json:"exp,omitempty"`
}

// Inspect parses an access token without verifying its signature.
func Inspect(rawToken string) (*TokenClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("empty token")
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	tc := &TokenClaims{}
	tc.Sub, _ = claims.GetSubject()
	tc.Email, _ = claims["email"].(string)
	tc.Role, _ = claims["role"].(string)

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tc.Iat = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.Exp = exp.Time
	}
	return tc, nil
}

// ExpiryFromToken returns the exp claim of an access token. It is used when a refresh
// response omits expires_at.
func ExpiryFromToken(rawToken string) (time.Time, error) {
	claims, err := Inspect(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	if claims.Exp.IsZero() {
		return time.Time{}, ErrNoExpiry
	}
	return claims.Exp, nil
}
