package sessions

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/gym-dashboard/authapi"
	"github.com/jrsteele09/gym-dashboard/credentials"
	"github.com/jrsteele09/gym-dashboard/internal/config"
	"github.com/jrsteele09/gym-dashboard/token/jwt"
	"github.com/jrsteele09/gym-dashboard/token/refresh"
	"github.com/jrsteele09/gym-dashboard/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// AuthAPI is the backend surface the manager needs
type AuthAPI interface {
	refresh.API
	Login(ctx context.Context, email, password string) (*authapi.AuthResult, error)
	VerifyOTP(ctx context.Context, email, otp string) (*authapi.AuthResult, error)
	Register(ctx context.Context, payload any) (json.RawMessage, error)
}

var _ refresh.Session = (*Manager)(nil)

// Manager owns the in-memory session and is the only writer of the credential store.
// Every consumer holds the same *Manager, so changes are visible everywhere at once.
type Manager struct {
	api    AuthAPI
	repo   credentials.Repo
	engine *refresh.Engine

	mu         sync.RWMutex
	user       *users.User
	token      *oauth2.Token
	loading    bool
	gen        uint64
	stopExpiry context.CancelFunc

	initOnce sync.Once

	subsMu  sync.Mutex
	subs    map[int]func(Session)
	nextSub int
}

// NewManager returns a manager in the loading state. Init must be called once to
// restore any persisted session.
func NewManager(api AuthAPI, repo credentials.Repo, cfg config.SessionConfig) *Manager {
	m := &Manager{
		api:     api,
		repo:    repo,
		loading: true,
		subs:    make(map[int]func(Session)),
	}
	m.engine = refresh.NewEngine(api, repo, m, m.ExpireSession, cfg)
	return m
}

// Init restores the persisted session when the access token, refresh token and user
// are all present, then checks the expiry. It runs once; later calls are no-ops.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		defer m.setLoading(false)

		entry, err := m.repo.Load(ctx)
		if err != nil {
			log.Err(err).Msg("[Manager.Init] loading stored credentials")
			return
		}
		if entry.AccessToken == "" || entry.RefreshToken == "" || entry.User == "" {
			log.Debug().Msg("[Manager.Init] no stored session")
			return
		}

		var user users.User
		if err := json.Unmarshal([]byte(entry.User), &user); err != nil {
			log.Warn().Err(err).Msg("[Manager.Init] stored user is unreadable")
			return
		}

		m.mu.Lock()
		m.gen++
		m.user = &user
		m.token = &oauth2.Token{
			AccessToken: entry.AccessToken,
			TokenType:   "Bearer",
			Expiry:      parseExpiry(entry.ExpiresAt),
		}
		m.startExpiryLoopLocked()
		snap := m.snapshotLocked()
		m.mu.Unlock()

		log.Info().Str("user", user.Email).Msg("session restored")
		m.notify(snap)

		m.engine.CheckExpiration(ctx)
	})
}

// Login authenticates with email and password. On failure the session is left unchanged and
// the error is an *errors.AuthError carrying the backend message or "Login failed".
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, func(ctx context.Context) (*authapi.AuthResult, error) {
		return m.api.Login(ctx, email, password)
	})
}

// VerifyOTP completes registration. It has the same effects as Login.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) error {
	return m.authenticate(ctx, func(ctx context.Context) (*authapi.AuthResult, error) {
		return m.api.VerifyOTP(ctx, email, otp)
	})
}

// Register creates an account and returns the backend response untouched.
// It never authenticates; the caller continues with VerifyOTP.
func (m *Manager) Register(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	raw, err := m.api.Register(ctx, payload)
	if err != nil {
		log.Warn().Err(err).Msg("[Manager.Register] registration rejected")
		return nil, err
	}
	return raw, nil
}

func (m *Manager) authenticate(ctx context.Context, call func(context.Context) (*authapi.AuthResult, error)) error {
	m.setLoading(true)
	defer m.setLoading(false)

	result, err := call(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("[Manager.authenticate] authentication rejected")
		return err
	}

	userJSON, err := json.Marshal(result.User)
	if err != nil {
		return err
	}
	tok := result.Session.Token()
	if tok.Expiry.IsZero() {
		tok.Expiry, _ = jwt.ExpiryFromToken(tok.AccessToken)
	}

	m.mu.Lock()
	entry := entryFromToken(tok)
	entry.User = string(userJSON)
	m.persistLocked(ctx, entry)
	m.gen++
	m.user = result.User
	m.token = memoryToken(tok)
	m.startExpiryLoopLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	log.Info().Str("user", result.User.Email).Str("role", string(result.User.Role)).Msg("logged in")
	m.notify(snap)
	return nil
}

// Logout clears the session, removes every stored key and stops the expiry loop.
// Calling it when already logged out is harmless.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	wasAuthenticated := m.endSessionLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if wasAuthenticated {
		log.Info().Msg("logged out")
	}
	m.notify(snap)
}

// ExpireSession logs out only while gen is still the current generation. Work started
// against an earlier session, such as a 401 seen before a logout and a new login,
// must not end the session that replaced it.
func (m *Manager) ExpireSession(ctx context.Context, gen uint64) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		log.Debug().Uint64("gen", gen).Msg("[Manager.ExpireSession] session already replaced")
		return false
	}
	wasAuthenticated := m.endSessionLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if wasAuthenticated {
		log.Info().Msg("session expired")
	}
	m.notify(snap)
	return true
}

func (m *Manager) endSessionLocked(ctx context.Context) bool {
	wasAuthenticated := m.user != nil
	m.stopExpiryLoopLocked()
	m.gen++
	m.user = nil
	m.token = nil
	if err := m.repo.Remove(ctx, credentials.AllKeys...); err != nil {
		log.Err(err).Msg("[Manager] removing stored credentials")
	}
	return wasAuthenticated
}

// Close stops the expiry loop without touching the session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopExpiryLoopLocked()
}

// Refresh runs the shared single-flight token refresh.
func (m *Manager) Refresh(ctx context.Context) bool {
	return m.engine.Refresh(ctx)
}

// CheckExpiration refreshes or logs out depending on the stored expiry.
func (m *Manager) CheckExpiration(ctx context.Context) {
	m.engine.CheckExpiration(ctx)
}

func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// UpdateTokens stores a refreshed token pair. The user is left untouched. It is rejected
// when the session generation moved on, so a late refresh cannot revive a logged out session.
func (m *Manager) UpdateTokens(ctx context.Context, gen uint64, tok *oauth2.Token) bool {
	m.mu.Lock()
	if gen != m.gen || m.user == nil {
		m.mu.Unlock()
		return false
	}
	entry := entryFromToken(tok)
	if userJSON, err := json.Marshal(m.user); err == nil {
		entry.User = string(userJSON)
	}
	m.persistLocked(ctx, entry)
	m.token = memoryToken(tok)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return true
}

func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) User() *users.User {
	return m.Snapshot().User
}

func (m *Manager) AccessToken() string {
	return m.Snapshot().AccessToken()
}

func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// GetCurrencySymbol looks up the user's country, defaulting to "$".
func (m *Manager) GetCurrencySymbol() string {
	user := m.User()
	if user == nil {
		return users.DefaultCurrencySymbol
	}
	return users.CurrencySymbol(user.Country)
}

// Subscribe registers fn to receive a snapshot after every session change.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify(snap Session) {
	m.subsMu.Lock()
	fns := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
}

func (m *Manager) snapshotLocked() Session {
	var tok *oauth2.Token
	if m.token != nil {
		copied := *m.token
		tok = &copied
	}
	return Session{User: m.user, Token: tok, Loading: m.loading}
}

// persistLocked replaces the whole stored entry, so no field of an earlier session
// survives next to the new one.
func (m *Manager) persistLocked(ctx context.Context, entry credentials.Entry) {
	if err := m.repo.Replace(ctx, entry); err != nil {
		log.Err(err).Msg("[Manager] persisting credentials")
	}
}

func (m *Manager) startExpiryLoopLocked() {
	m.stopExpiryLoopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.stopExpiry = cancel
	go m.engine.Run(ctx)
}

func (m *Manager) stopExpiryLoopLocked() {
	if m.stopExpiry != nil {
		m.stopExpiry()
		m.stopExpiry = nil
	}
}

// memoryToken drops the refresh token, which is only kept in the store.
func memoryToken(tok *oauth2.Token) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		Expiry:      tok.Expiry,
	}
}

func entryFromToken(tok *oauth2.Token) credentials.Entry {
	entry := credentials.Entry{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		entry.ExpiresAt = strconv.FormatInt(tok.Expiry.Unix(), 10)
	}
	return entry
}

func parseExpiry(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
