package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/gym-dashboard/authapi"
	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"github.com/jrsteele09/gym-dashboard/users"
	"github.com/stretchr/testify/require"
)

type backendFixture struct {
	server   *httptest.Server
	client   *authapi.Client
	requests map[string]map[string]any
	respond  map[string]func(w http.ResponseWriter)
}

func setupBackend(t *testing.T) *backendFixture {
	f := &backendFixture{
		requests: make(map[string]map[string]any),
		respond:  make(map[string]func(w http.ResponseWriter)),
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get(authapi.HeaderRequestID))

		body := make(map[string]any)
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.requests[r.URL.Path] = body

		respond, ok := f.respond[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respond(w)
	}))
	t.Cleanup(f.server.Close)

	f.client = authapi.NewClient(f.server.URL+"/", f.server.Client())
	return f
}

func writeJSON(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

const loginOK = `{
	"success": true,
	"data": {
		"session": {"access_token": "at-1", "refresh_token": "rt-1", "expires_at": 1760000000},
		"user": {"id": "u-1", "name": "Asha", "email": "asha@gym.test", "role": "staff",
			"country": "India", "staff": {"permissions": ["view_members"]}}
	}
}`

func TestLogin_Success(t *testing.T) {
	f := setupBackend(t)
	f.respond[authapi.RouteLogin] = writeJSON(http.StatusOK, loginOK)

	result, err := f.client.Login(context.Background(), "asha@gym.test", "pw")
	require.NoError(t, err)

	require.Equal(t, "at-1", result.Session.AccessToken)
	require.Equal(t, "rt-1", result.Session.RefreshToken)
	require.Equal(t, authapi.EpochSeconds(1760000000), result.Session.ExpiresAt)
	require.Equal(t, users.RoleStaff, result.User.Role)
	require.Equal(t, []string{"view_members"}, result.User.StaffPermissions())

	require.Equal(t, "asha@gym.test", f.requests[authapi.RouteLogin]["email"])
	require.Equal(t, "pw", f.requests[authapi.RouteLogin]["password"])
}

func TestLogin_ServerMessage(t *testing.T) {
	f := setupBackend(t)
	f.respond[authapi.RouteLogin] = writeJSON(http.StatusUnauthorized, `{"success":false,"message":"Invalid login credentials"}`)

	_, err := f.client.Login(context.Background(), "a@b.c", "bad")
	require.ErrorIs(t, err, errors.ErrAuthentication)
	require.EqualError(t, err, "Invalid login credentials")

	var authErr *errors.AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestLogin_FallbackMessage(t *testing.T) {
	f := setupBackend(t)
	f.respond[authapi.RouteLogin] = writeJSON(http.StatusInternalServerError, `not json`)

	_, err := f.client.Login(context.Background(), "a@b.c", "pw")
	require.EqualError(t, err, "Login failed")
}

func TestLogin_MissingSessionIsMalformed(t *testing.T) {
	f := setupBackend(t)
	f.respond[authapi.RouteLogin] = writeJSON(http.StatusOK, `{"success":true,"data":{"user":{"id":"u-1","role":"admin"}}}`)

	_, err := f.client.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, errors.ErrMalformedResponse)
	require.ErrorIs(t, err, errors.ErrAuthentication)
}

func TestVerifyOTP(t *testing.T) {
	f := setupBackend(t)
	f.respond[authapi.RouteVerifyOTP] = writeJSON(http.StatusOK, loginOK)

	result, err := f.client.VerifyOTP(context.Background(), "asha@gym.test", "123456")
	require.NoError(t, err)
	require.Equal(t, "at-1", result.Session.AccessToken)
	require.Equal(t, "123456", f.requests[authapi.RouteVerifyOTP]["otp"])

	f.respond[authapi.RouteVerifyOTP] = writeJSON(http.StatusBadRequest, `{}`)
	_, err = f.client.VerifyOTP(context.Background(), "asha@gym.test", "000000")
	require.EqualError(t, err, "OTP verification failed")
}

func TestRegister(t *testing.T) {
	f := setupBackend(t)
	f.respond[authapi.RouteRegister] = writeJSON(http.StatusCreated, `{"success":true,"message":"OTP sent"}`)

	raw, err := f.client.Register(context.Background(), map[string]any{"email": "new@gym.test", "gym_name": "Iron"})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"message":"OTP sent"}`, string(raw))
	require.Equal(t, "Iron", f.requests[authapi.RouteRegister]["gym_name"])

	f.respond[authapi.RouteRegister] = writeJSON(http.StatusConflict, `{"message":"Email already registered"}`)
	_, err = f.client.Register(context.Background(), map[string]any{"email": "new@gym.test"})
	require.EqualError(t, err, "Email already registered")

	f.respond[authapi.RouteRegister] = writeJSON(http.StatusBadGateway, ``)
	_, err = f.client.Register(context.Background(), map[string]any{})
	require.EqualError(t, err, "Registration failed")
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr error
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"success":true,"data":{"session":{"access_token":"at-2","refresh_token":"rt-2","expires_at":"1760000900"}}}`,
		},
		{
			name:      "http failure",
			status:    http.StatusUnauthorized,
			body:      `{"success":false,"message":"Refresh token expired"}`,
			expectErr: errors.ErrRefreshFailed,
		},
		{
			name:      "success flag false",
			status:    http.StatusOK,
			body:      `{"success":false,"data":{"session":{"access_token":"at-2"}}}`,
			expectErr: errors.ErrMalformedResponse,
		},
		{
			name:      "missing session",
			status:    http.StatusOK,
			body:      `{"success":true,"data":{}}`,
			expectErr: errors.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupBackend(t)
			f.respond[authapi.RouteRefresh] = writeJSON(tt.status, tt.body)

			tokens, err := f.client.Refresh(context.Background(), "rt-1")
			require.Equal(t, "rt-1", f.requests[authapi.RouteRefresh]["refresh_token"])
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				require.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "at-2", tokens.AccessToken)
			require.Equal(t, "rt-2", tokens.RefreshToken)
			require.Equal(t, int64(1760000900), tokens.ExpiresAt.Time().Unix())
			require.Equal(t, "Bearer", tokens.Token().TokenType)
		})
	}
}

func TestRefresh_NetworkError(t *testing.T) {
	client := authapi.NewClient("http://127.0.0.1:1", nil)
	_, err := client.Refresh(context.Background(), "rt-1")
	require.ErrorIs(t, err, errors.ErrRefreshFailed)
}
