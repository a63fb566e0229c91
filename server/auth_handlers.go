package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// registrationFields are the form fields forwarded to the backend on registration
var registrationFields = []string{"name", "email", "phone", "password", "gym_name", "country"}

// publicPageData is the model for the login, register and OTP pages
type publicPageData struct {
	AppName string
	Title   string
	Error   string
	Message string
	Email   string
}

func (s *Server) publicPage(r *http.Request, title string) publicPageData {
	query := r.URL.Query()
	return publicPageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Error:   query.Get("error"),
		Message: query.Get("message"),
		Email:   query.Get("email"),
	}
}

// IndexHandler sends the root to the login page, which forwards signed in users on.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteLogin)
	}
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, s.pages.login, http.StatusOK, s.publicPage(r, "Sign In"))
	}
}

// LoginSubmissionHandler processes the login form (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		if err := s.sessions.Login(r.Context(), email, password); err != nil {
			redirectWithError(w, r, RouteLogin, err.Error(), url.Values{"email": {email}})
			return
		}
		redirectSuccess(w, r, RouteDashboard)
	}
}

// RegisterPageHandler displays the registration page (GET /register)
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, s.pages.register, http.StatusOK, s.publicPage(r, "Register"))
	}
}

// RegisterSubmissionHandler forwards the registration form and continues to OTP verification.
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		payload := make(map[string]any, len(registrationFields))
		for _, field := range registrationFields {
			if value := strings.TrimSpace(r.FormValue(field)); value != "" {
				payload[field] = value
			}
		}
		email, _ := payload["email"].(string)

		if _, err := s.sessions.Register(r.Context(), payload); err != nil {
			redirectWithError(w, r, RouteRegister, err.Error(), url.Values{"email": {email}})
			return
		}

		log.Info().Str("email", email).Msg("registration accepted, awaiting OTP")
		query := url.Values{"email": {email}, "message": {"Registration successful! Please check your email for the OTP."}}
		redirectSuccess(w, r, RouteVerifyOTP+"?"+query.Encode())
	}
}

// VerifyOTPPageHandler displays the OTP page (GET /verify-otp?email=...)
func (s *Server) VerifyOTPPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.publicPage(r, "Verify OTP")
		if data.Email == "" {
			redirectWithError(w, r, RouteRegister, "Email not found. Please register again.", nil)
			return
		}
		render(w, s.pages.verifyOTP, http.StatusOK, data)
	}
}

// VerifyOTPSubmissionHandler verifies the OTP, which signs the new account in.
func (s *Server) VerifyOTPSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		if email == "" {
			redirectWithError(w, r, RouteRegister, "Email not found. Please register again.", nil)
			return
		}

		if err := s.sessions.VerifyOTP(r.Context(), email, strings.TrimSpace(r.FormValue("otp"))); err != nil {
			redirectWithError(w, r, RouteVerifyOTP, err.Error(), url.Values{"email": {email}})
			return
		}
		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler ends the session (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout(r.Context())
		redirectSuccess(w, r, RouteLogin)
	}
}
