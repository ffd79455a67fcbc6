package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName          = "Verinova"
	defaultAppEnv           = "development"
	defaultPort             = "4000"
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultAPIBaseURL       = "http://localhost:4000"
	defaultRequestTimeout   = 15 * time.Second
	defaultStorageBackend   = BackendFile
	defaultStorageNamespace = "device"
	defaultUploadURLTTL     = 15 * time.Minute
	defaultLoginRateLimit   = 5
	defaultShutdownDelay    = 10 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	devUploadSecret         = "verinova-dev-upload-secret"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config captures runtime configuration for both the device client and the
// development auth API, loaded from the environment (and an optional .env file).
type Config struct {
	AppName   string
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	APIBaseURL     string
	RequestTimeout time.Duration

	StorageBackend   string
	StorageDir       string
	StorageNamespace string
	DatabaseURL      string
	RedisURL         string

	PublicURL      string
	UploadSecret   string
	UploadURLTTL   time.Duration
	LoginRateLimit int
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBaseURL), "/"),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", defaultStorageBackend)),
		StorageDir:       os.Getenv("STORAGE_DIR"),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", defaultStorageNamespace),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		PublicURL:        strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),
		UploadSecret:     os.Getenv("UPLOAD_SECRET"),
		LoginRateLimit:   defaultLoginRateLimit,
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT_SECONDS", "REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.UploadURLTTL, err = durationEnv("UPLOAD_URL_TTL_SECONDS", "UPLOAD_URL_TTL", defaultUploadURLTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL_SECONDS", "IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %q", v)
		}
		cfg.LoginRateLimit = n
	}

	if cfg.StorageDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.StorageDir = filepath.Join(dir, "verinova")
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost" + cfg.Address()
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when STORAGE_BACKEND=%s", BackendRedis)
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when STORAGE_BACKEND=%s", BackendPostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("request timeout must be positive")
	}

	return cfg, nil
}

// ValidateServer checks the settings only the auth API needs. Outside
// development an explicit upload secret is mandatory.
func (c *Config) ValidateServer() error {
	if c.UploadSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("UPLOAD_SECRET must be set when APP_ENV=%s", c.AppEnv)
		}
		c.UploadSecret = devUploadSecret
	}
	if c.UploadURLTTL <= 0 {
		return fmt.Errorf("upload url ttl must be positive")
	}
	return nil
}

// IsDev reports whether the app runs in a development-like environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// durationEnv prefers an integer seconds variable and falls back to a Go
// duration string.
func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}
