package refresh

import (
	"context"
	"strconv"
	"time"

	"github.com/jrsteele09/gym-dashboard/authapi"
	"github.com/jrsteele09/gym-dashboard/credentials"
	"github.com/jrsteele09/gym-dashboard/internal/config"
	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"github.com/jrsteele09/gym-dashboard/internal/obs"
	"github.com/jrsteele09/gym-dashboard/token/jwt"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// API exchanges a refresh token for a new token pair
type API interface {
	Refresh(ctx context.Context, refreshToken string) (*authapi.SessionTokens, error)
}

// Session is the live session the engine updates. UpdateTokens persists tok and
// replaces the in-memory tokens only while gen is still the current generation; it
// reports false when the session was logged out or replaced in the meantime.
type Session interface {
	Generation() uint64
	UpdateTokens(ctx context.Context, gen uint64, tok *oauth2.Token) bool
}

// ExpireFunc ends the session of generation gen. It does nothing and reports false
// when that session has already been replaced.
type ExpireFunc func(ctx context.Context, gen uint64) bool

// Engine refreshes the access token on demand, from the 401 path of the gateway, and
// proactively when the persisted expiry gets close.
type Engine struct {
	api     API
	repo    credentials.Repo
	session Session
	expire  ExpireFunc
	config  config.SessionConfig
	flight  singleflight.Group
}

func NewEngine(api API, repo credentials.Repo, session Session, expire ExpireFunc, cfg config.SessionConfig) *Engine {
	return &Engine{
		api:     api,
		repo:    repo,
		session: session,
		expire:  expire,
		config:  cfg,
	}
}

// Refresh exchanges the stored refresh token for a new pair. Concurrent callers share one
// in-flight exchange and its outcome. On failure nothing is mutated.
func (e *Engine) Refresh(ctx context.Context) bool {
	ok, _, _ := e.flight.Do("refresh", func() (interface{}, error) {
		// the shared exchange must not be cut short by whichever caller started it
		return e.refresh(context.WithoutCancel(ctx)), nil
	})
	return ok.(bool)
}

func (e *Engine) refresh(ctx context.Context) bool {
	gen := e.session.Generation()

	refreshToken, err := e.repo.Get(ctx, credentials.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			log.Err(err).Msg("[Engine.Refresh] reading refresh token")
		} else {
			log.Debug().Err(errors.ErrRefreshTokenMissing).Msg("[Engine.Refresh] skipped")
		}
		obs.TokenRefreshes.WithLabelValues("skipped").Inc()
		return false
	}

	tokens, err := e.api.Refresh(ctx, refreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("[Engine.Refresh] refresh rejected")
		obs.TokenRefreshes.WithLabelValues("failure").Inc()
		return false
	}

	tok := tokens.Token()
	if tok.RefreshToken == "" {
		// the backend did not rotate it
		tok.RefreshToken = refreshToken
	}
	if tok.Expiry.IsZero() {
		if exp, err := jwt.ExpiryFromToken(tok.AccessToken); err == nil {
			tok.Expiry = exp
		}
	}

	if !e.session.UpdateTokens(ctx, gen, tok) {
		log.Info().Msg("[Engine.Refresh] session ended during refresh, discarding tokens")
		obs.TokenRefreshes.WithLabelValues("discarded").Inc()
		return false
	}

	obs.TokenRefreshes.WithLabelValues("success").Inc()
	log.Debug().Time("expires_at", tok.Expiry).Msg("[Engine.Refresh] access token refreshed")
	return true
}

// CheckExpiration refreshes when the persisted expiry is less than the refresh threshold
// away, and logs out if that refresh fails. A missing or unreadable expiry is ignored.
// A session that was replaced while the refresh ran is left alone.
func (e *Engine) CheckExpiration(ctx context.Context) {
	gen := e.session.Generation()

	raw, err := e.repo.Get(ctx, credentials.KeyExpiresAt)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			log.Err(err).Msg("[Engine.CheckExpiration] reading expiry")
		}
		return
	}

	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn().Str("expires_at", raw).Msg("[Engine.CheckExpiration] unreadable expiry")
		return
	}

	remaining := time.Unix(expiresAt, 0).Sub(NowTimeFunc())
	if remaining >= e.config.GetRefreshThreshold() {
		return
	}

	log.Debug().Dur("remaining", remaining).Msg("[Engine.CheckExpiration] access token close to expiry")
	if e.Refresh(ctx) {
		return
	}

	if e.expire(ctx, gen) {
		log.Warn().Msg("[Engine.CheckExpiration] refresh failed, logged out")
		obs.ForcedLogouts.WithLabelValues("expiry_check").Inc()
	}
}

// Run calls CheckExpiration on every check interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.config.GetExpiryCheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.CheckExpiration(ctx)
		}
	}
}
