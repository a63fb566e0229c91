package server

import (
	"net/http"

	"github.com/jrsteele09/gym-dashboard/auth"
	"github.com/rs/zerolog/log"
)

// retryAfterSeconds is how long a client should wait while the session is being restored
const retryAfterSeconds = "1"

// RequireSession guards a dashboard view. While the session is restoring the loading page
// is served, a missing session redirects to /login and a missing permission redirects
// to /not-authorized.
func (s *Server) RequireSession(permission string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.apply(w, r, s.guard.Protected(permission), next)
		}
	}
}

// PublicOnly guards the login, register and OTP pages.
func (s *Server) PublicOnly() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.apply(w, r, s.guard.PublicOnly(), next)
		}
	}
}

// RequireAPISession guards the JSON proxy. It answers with status codes instead of redirects.
func (s *Server) RequireAPISession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch decision := s.guard.Protected(""); decision.State {
			case auth.StateLoading:
				w.Header().Set("Retry-After", retryAfterSeconds)
				writeJSONMessage(w, http.StatusServiceUnavailable, "Loading...")
			case auth.StateAuthorized:
				next(w, r)
			default:
				writeJSONMessage(w, http.StatusUnauthorized, "Please login again.")
			}
		}
	}
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, decision auth.Decision, next http.HandlerFunc) {
	switch decision.Action {
	case auth.ActionWait:
		s.renderLoading(w)
	case auth.ActionRedirect:
		log.Debug().
			Str("path", r.URL.Path).
			Str("state", decision.State.String()).
			Str("redirect", decision.RedirectTo).
			Msg("guard redirect")
		redirectSuccess(w, r, decision.RedirectTo)
	default:
		next(w, r)
	}
}

func (s *Server) renderLoading(w http.ResponseWriter) {
	w.Header().Set("Retry-After", retryAfterSeconds)
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := s.pages.loading.Execute(w, nil); err != nil {
		log.Err(err).Msg("Failed to render loading template")
	}
}
