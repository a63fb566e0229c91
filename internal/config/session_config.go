package config

import "time"

type SessionConfig interface {
	GetRefreshThreshold() time.Duration
	GetExpiryCheckInterval() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshThreshold is the remaining token lifetime below which a proactive refresh is made.
func (Session) GetRefreshThreshold() time.Duration {
	return 5 * time.Minute
}

func (Session) GetExpiryCheckInterval() time.Duration {
	return 5 * time.Minute
}
