package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/", cfg.HTTP.LandingPath)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, "mesauth:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "USER_PASSWORD_AUTH", cfg.Auth.Cognito.AuthFlow)
	// Without an issuer endpoint the default mode falls back to basic.
	assert.Equal(t, AuthModeBasic, cfg.Auth.Mode)
}

func TestAuthModeFromEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "cognito")
	t.Setenv("COGNITO_ENDPOINT", "https://cognito-idp.us-east-1.amazonaws.com/")
	t.Setenv("COGNITO_CLIENT_ID", "client-1")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeCognito, cfg.Auth.Mode)
	assert.True(t, cfg.Auth.Cognito.Enabled())
}

func TestAuthModeRejectsUnknownValue(t *testing.T) {
	t.Setenv("AUTH_MODE", "ldap")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestAzureModeFallsBackWhenUnconfigured(t *testing.T) {
	t.Setenv("AUTH_MODE", "azure")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeBasic, cfg.Auth.Mode)
}

func TestDetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestLandingPathSanitized(t *testing.T) {
	t.Setenv("APP_LANDING_PATH", "dashboard")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "/dashboard", cfg.HTTP.LandingPath)
}
