package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/gym-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("HTTP_TIMEOUT", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "https://gymbackend-eight.vercel.app/api", c.GetAPIBaseURL())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, 5*time.Minute, c.GetRefreshThreshold())
	require.Equal(t, 5*time.Minute, c.GetExpiryCheckInterval())
}

func TestEnvVars_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("API_BASE_URL", "http://localhost:4000/api/")
	t.Setenv("HTTP_TIMEOUT", "15")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "http://localhost:4000/api", c.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, c.GetHTTPTimeout())
}

func TestStore_Backend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	require.Equal(t, config.StoreBackendRedis, config.New().GetStoreBackend())

	t.Setenv("STORE_BACKEND", "sqlite")
	require.Equal(t, config.StoreBackendFile, config.New().GetStoreBackend())
}

func TestCors_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
}
