package config_test

import (
	"testing"
	"time"

	"teamkanban/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CACHE_LIST_TTL", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg := config.Load()

	assert.Equal(t, 900*time.Second, cfg.Cache.ListTTL)
	assert.Equal(t, 1800*time.Second, cfg.Cache.BoardTTL)
	assert.Equal(t, 86400*time.Second, cfg.Cache.IndexTTL)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_LIST_TTL", "60")
	t.Setenv("CACHE_BOARD_TTL", "2m")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("JWT_EXPIRY_HOURS", "2")

	cfg := config.Load()

	assert.Equal(t, time.Minute, cfg.Cache.ListTTL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.BoardTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Contains(t, cfg.DSN(), "password=s3cret")
	assert.NotContains(t, cfg.MaskedDSN(), "s3cret")
}

// В каталоге пакета нет .env, об этом пишется предупреждение
func TestLoad_MissingEnvFileWarns(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	config.Load()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, ".env")
}
