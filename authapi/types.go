package authapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jrsteele09/gym-dashboard/users"
	"golang.org/x/oauth2"
)

// Backend auth endpoints, relative to the API base URL
const (
	RouteLogin     = "/auth/login"
	RouteRegister  = "/auth/register"
	RouteVerifyOTP = "/auth/verify-otp"
	RouteRefresh   = "/auth/refresh"
)

// EpochSeconds is an absolute expiry in Unix seconds. The backend sends it as a
// JSON number; a numeric string is accepted too.
type EpochSeconds int64

func (e *EpochSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*e = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid expires_at %q: %w", data, err)
	}
	*e = EpochSeconds(f)
	return nil
}

func (e EpochSeconds) Time() time.Time {
	if e == 0 {
		return time.Time{}
	}
	return time.Unix(int64(e), 0)
}

func (e EpochSeconds) String() string {
	return strconv.FormatInt(int64(e), 10)
}

// SessionTokens is the token triple found at data.session in login, OTP and refresh responses.
type SessionTokens struct {
	// AccessToken is sent as "Authorization: Bearer <access_token>" on authenticated calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged at /auth/refresh for a new pair. It rotates on every refresh.
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is when the access token stops being accepted. May be zero when
	// the backend omits it.
	ExpiresAt EpochSeconds `json:"expires_at"`
}

// Token converts the triple into an oauth2.Token so callers can use SetAuthHeader and Expiry.
func (s *SessionTokens) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt.Time(),
	}
}

// AuthResult is the data object returned by login and OTP verification.
type AuthResult struct {
	Session *SessionTokens `json:"session"`
	User    *users.User    `json:"user"`
}

type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
