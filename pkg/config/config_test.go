package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("MINIO_DEFAULT_BUCKET", "")
	t.Setenv("LOG_ENCODING", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.OpenRouter.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "file", cfg.Storage.Bucket)
	assert.Equal(t, 24*time.Hour, cfg.Storage.ReadTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Storage.UploadTTL)
	assert.Equal(t, "json", cfg.Logger.Encoding)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gigachat")
	t.Setenv("EXTRACTION_TIMEOUT_SECONDS", "15")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gigachat", cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Storage.UseSSL)
}

func TestLoad_RejectsBadExtractionSettings(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"temperature not a number", "LLM_TEMPERATURE", "low"},
		{"negative temperature", "LLM_TEMPERATURE", "-0.5"},
		{"timeout not a number", "EXTRACTION_TIMEOUT_SECONDS", "1m"},
		{"zero timeout", "EXTRACTION_TIMEOUT_SECONDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LLM_TEMPERATURE", "")
			t.Setenv("EXTRACTION_TIMEOUT_SECONDS", "")
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
