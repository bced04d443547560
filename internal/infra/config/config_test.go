package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "STORAGE_DRIVER", "MONGO_URI", "DATABASE_URL", "LOCK_DRIVER",
		"REDIS_URL", "LOCK_WAIT_TIMEOUT", "LOCK_TTL", "KAFKA_BROKERS", "RETRY_BACKOFF",
		"BLOCKS_CHECK_BOOKINGS", "S3_ENDPOINT", "S3_PUBLIC_ENDPOINT", "IDEMP_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, DriverMemory, cfg.LockDriver)
	assert.Equal(t, 5*time.Second, cfg.LockWaitTimeout)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.BlocksCheckBookings)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.S3Enabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/bookings")
	t.Setenv("LOCK_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("BLOCKS_CHECK_BOOKINGS", "yes")
	t.Setenv("LOCK_WAIT_TIMEOUT", "250ms")
	t.Setenv("S3_ENDPOINT", "localhost:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.BlocksCheckBookings)
	assert.Equal(t, 250*time.Millisecond, cfg.LockWaitTimeout)
	assert.Equal(t, "localhost:9000", cfg.S3PublicEndpoint)
	assert.True(t, cfg.S3Enabled())
}

func TestWarningsFlagProcessLocalLockOnSharedStorage(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/bookings")

	cfg, err := Load()
	require.NoError(t, err)
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "LOCK_DRIVER=redis")

	cfg.LockDriver = DriverRedis
	assert.Empty(t, cfg.Warnings())

	cfg = Config{StorageDriver: DriverMemory, LockDriver: DriverMemory}
	assert.Empty(t, cfg.Warnings())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri":    {"STORAGE_DRIVER": "mongo"},
		"postgres without dsn": {"STORAGE_DRIVER": "postgres"},
		"unknown driver":       {"STORAGE_DRIVER": "sqlite"},
		"redis without url":    {"LOCK_DRIVER": "redis"},
		"bad duration":         {"LOCK_WAIT_TIMEOUT": "soon"},
		"bad bool":             {"BLOCKS_CHECK_BOOKINGS": "maybe"},
		"bad backoff":          {"RETRY_BACKOFF": "1s,later"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
