package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "DB_PORT", "CACHE_TTL", "SESSION_TTL", "OPENAI_MODEL", "RATE_LIMIT_MAX", "LOG_STDOUT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "3004", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.False(t, cfg.LogStdout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_PORT", "10501")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("SESSION_COOKIE", "sid")
	t.Setenv("LOG_STDOUT", "true")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 10501, cfg.DBPort)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "sid", cfg.SessionCookie)
	assert.True(t, cfg.LogStdout)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("REDIS_PORT", "not-a-port")
	t.Setenv("OPENAI_TIMEOUT", "-5s")

	cfg := LoadConfig()

	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout)
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()

	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "  s3cr3t-value ")
	cfg = LoadConfig()

	assert.Equal(t, "s3cr3t-value", cfg.JWTSecret)
	assert.NoError(t, cfg.Validate())
}

func TestValidateAllowsTestModeWithoutJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()

	assert.Equal(t, "test", cfg.Env)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NoError(t, cfg.Validate())
}
