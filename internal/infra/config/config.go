package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	StorageDriver string
	MongoURI      string
	MongoDB       string
	DatabaseURL   string

	LockDriver      string
	RedisURL        string
	LockWaitTimeout time.Duration
	LockTTL         time.Duration

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaPropertyTopic string
	KafkaConsumerGroup string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	IdempotencyTTL      time.Duration
	RateLimit           string
	BlocksCheckBookings bool

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	LogFile          string
	PropertyFixtures string
}

// Load parses configuration from the current environment. A .env file in the
// working directory is applied first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "bookings"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LockDriver:         strings.ToLower(getEnv("LOCK_DRIVER", DriverMemory)),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaPropertyTopic: getEnv("KAFKA_PROPERTY_TOPIC", "property.events.v1"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "bookingcore"),
		RateLimit:          os.Getenv("RATE_LIMIT"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint:   os.Getenv("S3_PUBLIC_ENDPOINT"),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           getEnv("S3_BUCKET", "calendars"),
		LogFile:            os.Getenv("LOG_FILE"),
		PropertyFixtures:   os.Getenv("PROPERTY_FIXTURES"),
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	var err error
	if cfg.LockWaitTimeout, err = parseDurationEnv("LOCK_WAIT_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LockTTL, err = parseDurationEnv("LOCK_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.BlocksCheckBookings, err = parseBoolEnv("BLOCKS_CHECK_BOOKINGS", false); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.LockDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for LOCK_DRIVER=%s", c.LockDriver)
		}
	default:
		return fmt.Errorf("unsupported LOCK_DRIVER %q", c.LockDriver)
	}
	if c.LockWaitTimeout <= 0 {
		return fmt.Errorf("LOCK_WAIT_TIMEOUT must be positive")
	}
	return nil
}

// Warnings lists accepted settings that are unsafe for some deployments.
func (c Config) Warnings() []string {
	var out []string
	if c.StorageDriver != DriverMemory && c.LockDriver == DriverMemory {
		out = append(out, fmt.Sprintf("LOCK_DRIVER=memory with STORAGE_DRIVER=%s only serialises reservations within one instance; use LOCK_DRIVER=redis when running replicas", c.StorageDriver))
	}
	return out
}

// S3Enabled reports whether calendar export has somewhere to write.
func (c Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

// KafkaEnabled reports whether the outbox relay and property consumer should run.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
