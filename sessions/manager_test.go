package sessions_test

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/gym-dashboard/authapi"
	"github.com/jrsteele09/gym-dashboard/credentials"
	"github.com/jrsteele09/gym-dashboard/internal/config"
	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"github.com/jrsteele09/gym-dashboard/sessions"
	"github.com/jrsteele09/gym-dashboard/users"
	"github.com/stretchr/testify/require"
)

type fakeAuthAPI struct {
	mu           sync.Mutex
	result       *authapi.AuthResult
	authErr      error
	refreshed    *authapi.SessionTokens
	refreshErr   error
	refreshCalls int
	registered   any

	refreshEntered chan struct{}
	refreshRelease chan struct{}
}

func (f *fakeAuthAPI) Login(_ context.Context, email, password string) (*authapi.AuthResult, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.result, nil
}

func (f *fakeAuthAPI) VerifyOTP(_ context.Context, email, otp string) (*authapi.AuthResult, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.result, nil
}

func (f *fakeAuthAPI) Register(_ context.Context, payload any) (json.RawMessage, error) {
	f.registered = payload
	if f.authErr != nil {
		return nil, f.authErr
	}
	return json.RawMessage(`{"success":true,"message":"OTP sent"}`), nil
}

func (f *fakeAuthAPI) Refresh(_ context.Context, refreshToken string) (*authapi.SessionTokens, error) {
	if f.refreshEntered != nil {
		f.refreshEntered <- struct{}{}
		<-f.refreshRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshed, nil
}

func (f *fakeAuthAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

var testUser = &users.User{
	ID:      "u-1",
	Name:    "Asha",
	Email:   "asha@gym.test",
	Role:    users.RoleStaff,
	Country: "India",
	GymID:   "g-1",
	Staff:   &users.StaffProfile{Permissions: []string{"view_members"}},
}

func epoch(d time.Duration) authapi.EpochSeconds {
	return authapi.EpochSeconds(time.Now().Add(d).Unix())
}

type managerFixture struct {
	api     *fakeAuthAPI
	repo    *credentials.InMemoryRepo
	manager *sessions.Manager
}

func setupManager(t *testing.T, repo *credentials.InMemoryRepo) *managerFixture {
	if repo == nil {
		repo = credentials.NewInMemoryRepo()
	}
	f := &managerFixture{
		api: &fakeAuthAPI{
			result: &authapi.AuthResult{
				Session: &authapi.SessionTokens{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresAt: epoch(time.Hour)},
				User:    testUser,
			},
			refreshed: &authapi.SessionTokens{AccessToken: "at-2", RefreshToken: "rt-2", ExpiresAt: epoch(time.Hour)},
		},
		repo: repo,
	}
	f.manager = sessions.NewManager(f.api, repo, config.Session{})
	t.Cleanup(f.manager.Close)
	return f
}

func storeSession(t *testing.T, repo credentials.Repo, expiresIn time.Duration) {
	userJSON, err := json.Marshal(testUser)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), credentials.Entry{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    strconv.FormatInt(time.Now().Add(expiresIn).Unix(), 10),
		User:         string(userJSON),
	}))
}

func TestInit_EmptyStore(t *testing.T) {
	f := setupManager(t, nil)
	require.True(t, f.manager.IsLoading())

	f.manager.Init(context.Background())

	snap := f.manager.Snapshot()
	require.Nil(t, snap.User)
	require.Nil(t, snap.Token)
	require.False(t, snap.Loading)
	require.False(t, snap.IsAuthenticated())
}

func TestInit_RestoresWithoutRefresh(t *testing.T) {
	repo := credentials.NewInMemoryRepo()
	storeSession(t, repo, 10*time.Minute)
	f := setupManager(t, repo)

	f.manager.Init(context.Background())

	require.Equal(t, 0, f.api.calls())
	require.Equal(t, testUser, f.manager.User())
	require.Equal(t, "at-1", f.manager.AccessToken())
	require.False(t, f.manager.IsLoading())
}

func TestInit_NearExpiryRefreshes(t *testing.T) {
	repo := credentials.NewInMemoryRepo()
	storeSession(t, repo, 2*time.Minute)
	f := setupManager(t, repo)

	f.manager.Init(context.Background())

	require.Equal(t, 1, f.api.calls())
	require.Equal(t, "at-2", f.manager.AccessToken())
	require.Equal(t, testUser, f.manager.User())

	entry, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "at-2", entry.AccessToken)
	require.Equal(t, "rt-2", entry.RefreshToken)
	require.NotEmpty(t, entry.User)
}

func TestInit_NearExpiryRefreshFailsLogsOut(t *testing.T) {
	repo := credentials.NewInMemoryRepo()
	storeSession(t, repo, 2*time.Minute)
	f := setupManager(t, repo)
	f.api.refreshErr = errors.ErrRefreshFailed

	f.manager.Init(context.Background())

	require.Equal(t, 1, f.api.calls())
	require.False(t, f.manager.Snapshot().IsAuthenticated())
	require.Equal(t, 0, repo.Len())
}

func TestInit_PartialStoreIsNotRestored(t *testing.T) {
	repo := credentials.NewInMemoryRepo()
	storeSession(t, repo, time.Hour)
	require.NoError(t, repo.Remove(context.Background(), credentials.KeyRefreshToken))
	f := setupManager(t, repo)

	f.manager.Init(context.Background())

	require.False(t, f.manager.Snapshot().IsAuthenticated())
	require.False(t, f.manager.IsLoading())
}

func TestInit_RunsOnce(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())

	storeSession(t, f.repo, time.Hour)
	f.manager.Init(context.Background())

	require.False(t, f.manager.Snapshot().IsAuthenticated())
}

func TestLogin_RoundTripsThroughStore(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())

	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))
	after := f.manager.Snapshot()
	require.True(t, after.IsAuthenticated())
	require.False(t, after.Loading)
	require.Empty(t, after.Token.RefreshToken)

	entry, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "rt-1", entry.RefreshToken)

	restarted := setupManager(t, f.repo)
	restarted.manager.Init(context.Background())
	restored := restarted.manager.Snapshot()

	require.Equal(t, after.User, restored.User)
	require.Equal(t, after.AccessToken(), restored.AccessToken())
	require.True(t, after.Token.Expiry.Equal(restored.Token.Expiry))
}

func TestLogin_ReplacesStaleStoreEntries(t *testing.T) {
	repo := credentials.NewInMemoryRepo()
	require.NoError(t, repo.Save(context.Background(), credentials.Entry{AccessToken: "old-at", RefreshToken: "stale-rt"}))
	f := setupManager(t, repo)
	f.manager.Init(context.Background())
	require.False(t, f.manager.Snapshot().IsAuthenticated())

	f.api.result = &authapi.AuthResult{
		Session: &authapi.SessionTokens{AccessToken: "new-at", ExpiresAt: epoch(time.Hour)},
		User:    testUser,
	}
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))

	entry, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "new-at", entry.AccessToken)
	require.Empty(t, entry.RefreshToken)
	require.NotEmpty(t, entry.User)

	restarted := setupManager(t, repo)
	restarted.manager.Init(context.Background())
	require.False(t, restarted.manager.Snapshot().IsAuthenticated())
}

func TestLogin_FailureLeavesSessionUnchanged(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())
	f.api.authErr = &errors.AuthError{Status: 401, Message: "Invalid login credentials"}

	err := f.manager.Login(context.Background(), "asha@gym.test", "bad")
	require.EqualError(t, err, "Invalid login credentials")
	require.ErrorIs(t, err, errors.ErrAuthentication)

	snap := f.manager.Snapshot()
	require.False(t, snap.IsAuthenticated())
	require.False(t, snap.Loading)
	require.Equal(t, 0, f.repo.Len())
}

func TestVerifyOTP_Authenticates(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())

	require.NoError(t, f.manager.VerifyOTP(context.Background(), "asha@gym.test", "123456"))
	require.Equal(t, "at-1", f.manager.AccessToken())
	require.Equal(t, 4, f.repo.Len())
}

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())

	raw, err := f.manager.Register(context.Background(), map[string]any{"email": "new@gym.test"})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"message":"OTP sent"}`, string(raw))
	require.Equal(t, map[string]any{"email": "new@gym.test"}, f.api.registered)
	require.False(t, f.manager.Snapshot().IsAuthenticated())
	require.False(t, f.manager.IsLoading())
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))

	f.manager.Logout(context.Background())
	once := f.manager.Snapshot()
	onceLen := f.repo.Len()

	f.manager.Logout(context.Background())
	require.Equal(t, once, f.manager.Snapshot())
	require.Equal(t, onceLen, f.repo.Len())
	require.Equal(t, 0, f.repo.Len())
	require.False(t, once.IsAuthenticated())
}

func TestUpdateTokens_RejectedAfterLogout(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))

	gen := f.manager.Generation()
	f.manager.Logout(context.Background())

	require.False(t, f.manager.UpdateTokens(context.Background(), gen, f.api.refreshed.Token()))
	require.False(t, f.manager.Snapshot().IsAuthenticated())
	require.Equal(t, 0, f.repo.Len())
}

func TestExpireSession_IgnoresReplacedSession(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))

	f.api.refreshEntered = make(chan struct{})
	f.api.refreshRelease = make(chan struct{})
	gen := f.manager.Generation()

	type outcome struct{ refreshed, expired bool }
	done := make(chan outcome)
	go func() {
		refreshed := f.manager.Refresh(context.Background())
		done <- outcome{refreshed: refreshed, expired: f.manager.ExpireSession(context.Background(), gen)}
	}()

	<-f.api.refreshEntered
	f.manager.Logout(context.Background())
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))
	close(f.api.refreshRelease)

	result := <-done
	require.False(t, result.refreshed)
	require.False(t, result.expired)

	require.True(t, f.manager.Snapshot().IsAuthenticated())
	require.Equal(t, "at-1", f.manager.AccessToken())
	require.Equal(t, 4, f.repo.Len())
}

func TestExpireSession_CurrentSession(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))

	require.True(t, f.manager.ExpireSession(context.Background(), f.manager.Generation()))
	require.False(t, f.manager.Snapshot().IsAuthenticated())
	require.Equal(t, 0, f.repo.Len())
}

func TestGetCurrencySymbol(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())
	require.Equal(t, "$", f.manager.GetCurrencySymbol())

	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))
	require.Equal(t, "₹", f.manager.GetCurrencySymbol())
}

func TestSubscribe(t *testing.T) {
	f := setupManager(t, nil)
	f.manager.Init(context.Background())

	var mu sync.Mutex
	var seen []bool
	unsubscribe := f.manager.Subscribe(func(s sessions.Session) {
		mu.Lock()
		defer mu.Unlock()
		if !s.Loading {
			seen = append(seen, s.IsAuthenticated())
		}
	})

	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))
	f.manager.Logout(context.Background())
	unsubscribe()
	require.NoError(t, f.manager.Login(context.Background(), "asha@gym.test", "pw"))

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, seen, true)
	require.Equal(t, false, seen[len(seen)-1])
}
