package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	apiBaseURLVar     = "API_BASE_URL"
	httpTimeoutEnvVar = "HTTP_TIMEOUT"

	defaultAPIBaseURL = "https://gymbackend-eight.vercel.app/api"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Gym Dashboard")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetAPIBaseURL returns the REST backend base address, without a trailing slash.
// Relative gateway endpoints are appended to it.
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, defaultAPIBaseURL), "/")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return GetDuration(httpTimeoutEnvVar, 30*time.Second)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses a Go duration ("30s") or a plain number of seconds.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func GetInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
