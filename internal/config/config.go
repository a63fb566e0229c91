package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Store
}

// New loads an optional .env file and returns the environment backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
