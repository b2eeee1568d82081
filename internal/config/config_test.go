package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.Equal(t, LockBackendMemory, cfg.LockBackend)
	assert.Equal(t, 3*time.Second, cfg.LockTimeout)
	assert.Equal(t, 30, cfg.MaxStayNights)
	assert.Equal(t, 365, cfg.MaxLeadDays)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("BOOKING_TIMEZONE", "UTC")
	t.Setenv("BOOKING_LOCK_BACKEND", "Redis")
	t.Setenv("BOOKING_LOCK_TIMEOUT", "500ms")
	t.Setenv("BOOKING_MAX_STAY_NIGHTS", "14")
	t.Setenv("BOOKING_REDIS_ADDR", "cache:6379")
	t.Setenv("BOOKING_DB_NAME", "bookings")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, LockBackendRedis, cfg.LockBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, 14, cfg.MaxStayNights)
	assert.Equal(t, "cache:6379", cfg.RedisConfig.Addr)
	assert.Equal(t, "bookings", cfg.DBConfig.DBName)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("BOOKING_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("lock backend", func(t *testing.T) {
		t.Setenv("BOOKING_LOCK_BACKEND", "zookeeper")
		_, err := Load()
		assert.Error(t, err)
	})
}
