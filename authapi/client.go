package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/gym-dashboard/internal/errors"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
	otpFailed          = "OTP verification failed"

	// HeaderRequestID correlates dashboard logs with backend logs
	HeaderRequestID = "X-Request-ID"
)

// Client talks to the unauthenticated /auth endpoints of the REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Login posts credentials to /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, RouteLogin, loginRequest{Email: email, Password: password}, loginFailed)
}

// VerifyOTP posts the one time password to /auth/verify-otp. A successful
// verification authenticates exactly like a login.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error) {
	return c.authenticate(ctx, RouteVerifyOTP, verifyOTPRequest{Email: email, OTP: otp}, otpFailed)
}

// Register posts an arbitrary registration payload and returns the raw response body.
// Registration never authenticates.
func (c *Client) Register(ctx context.Context, payload any) (json.RawMessage, error) {
	status, body, env, err := c.post(ctx, RouteRegister, payload)
	if err != nil {
		return nil, &errors.AuthError{Message: registrationFailed, Err: err}
	}
	if !isOK(status) {
		return nil, &errors.AuthError{Status: status, Message: messageOr(env.Message, registrationFailed)}
	}
	return body, nil
}

// Refresh exchanges a refresh token for a new token pair. Any non-OK status,
// a false success flag or a missing data.session is an error.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	status, _, env, err := c.post(ctx, RouteRefresh, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "refresh request: %v", err)
	}
	if !isOK(status) {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "refresh status %d: %s", status, env.Message)
	}
	if env.Success == nil || !*env.Success {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "refresh response not successful")
	}

	var data struct {
		Session *SessionTokens `json:"session"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "refresh data: %v", err)
	}
	if data.Session == nil || data.Session.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "refresh response has no session")
	}
	return data.Session, nil
}

func (c *Client) authenticate(ctx context.Context, route string, payload any, fallback string) (*AuthResult, error) {
	status, _, env, err := c.post(ctx, route, payload)
	if err != nil {
		return nil, &errors.AuthError{Message: fallback, Err: err}
	}
	if !isOK(status) {
		return nil, &errors.AuthError{Status: status, Message: messageOr(env.Message, fallback)}
	}

	var result AuthResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, &errors.AuthError{Status: status, Message: fallback, Err: errors.ErrMalformedResponse}
	}
	if result.Session == nil || result.Session.AccessToken == "" || result.User == nil {
		return nil, &errors.AuthError{Status: status, Message: fallback, Err: errors.ErrMalformedResponse}
	}
	return &result, nil
}

// post sends a JSON body and decodes the response envelope. A body that is not a JSON
// envelope leaves env empty; the raw bytes are still returned.
func (c *Client) post(ctx context.Context, route string, payload any) (int, []byte, envelope, error) {
	var env envelope

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, env, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, env, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, env, fmt.Errorf("%s request failed: %w", route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, env, fmt.Errorf("read response: %w", err)
	}
	_ = json.Unmarshal(body, &env)

	return resp.StatusCode, body, env, nil
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
