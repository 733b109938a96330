package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDemoModeDefaults(t *testing.T) {
	t.Setenv("DEMO_MODE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 30, cfg.RateLimitMaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, int64(1), cfg.FreeGenerationQuota)
	assert.Equal(t, int64(1), cfg.CreditsPerGeneration)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "5000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("FREE_GENERATION_QUOTA", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.RateLimitWindow())
	assert.Equal(t, 5, cfg.RateLimitMaxRequests)
	assert.Equal(t, int64(3), cfg.FreeGenerationQuota)
}

func TestLoadConfigProductionRequiresCredentials(t *testing.T) {
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

func TestLoadConfigProductionRequiresProviderKey(t *testing.T) {
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("FIREBASE_PROJECT_ID", "pixelforge-test")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cfg := &Config{
		DemoMode:             true,
		RateLimitWindowMS:    0,
		RateLimitMaxRequests: 30,
		FreeGenerationQuota:  1,
		CreditsPerGeneration: 1,
	}
	require.Error(t, cfg.Validate())

	cfg.RateLimitWindowMS = 60000
	cfg.CreditsPerGeneration = 0
	require.Error(t, cfg.Validate())

	cfg.CreditsPerGeneration = 1
	require.NoError(t, cfg.Validate())
}
