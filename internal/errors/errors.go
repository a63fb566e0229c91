package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard session core
var (
	// Authentication errors
	ErrAuthentication = errors.New("authentication failed")
	ErrSessionExpired = errors.New("session expired")

	// Token errors
	ErrRefreshTokenMissing = errors.New("refresh token missing")
	ErrRefreshFailed       = errors.New("token refresh failed")

	// Backend errors
	ErrAPI               = errors.New("api error")
	ErrMalformedResponse = errors.New("malformed response")

	// Storage errors
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// AuthError is returned when the backend rejects a login, OTP verification or registration.
// Message is the backend-provided message or a fixed fallback for the operation.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAuthentication, e.Err}
	}
	return []error{ErrAuthentication}
}

// APIError is a non-OK response from an authenticated backend call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// StatusMessage is the generic message used when the backend supplies none.
func StatusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
