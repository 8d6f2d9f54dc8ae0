package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Upload    UploadConfig
	Retention RetentionConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                 string
	Env                  string
	Host                 string
	Port                 string
	Version              string
	ShutdownGraceSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// UploadConfig bounds ticket photo attachments.
type UploadConfig struct {
	MaxBytes int64
}

// RetentionConfig drives the optional periodic sweep of old tickets.
// A MaxAgeHours of zero disables the sweep entirely.
type RetentionConfig struct {
	MaxAgeHours int
	Schedule    string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	maxBytes := int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024))
	if maxBytes <= 0 {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: must be positive")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                 getEnv("APP_NAME", "ticket-store-service"),
			Env:                  getEnv("APP_ENV", "development"),
			Host:                 getEnv("APP_HOST", "0.0.0.0"),
			Port:                 getEnv("APP_PORT", "4000"),
			Version:              getEnv("APP_VERSION", "dev"),
			ShutdownGraceSeconds: getEnvAsInt("SHUTDOWN_GRACE_SECONDS", 5),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Upload: UploadConfig{
			MaxBytes: maxBytes,
		},
		Retention: RetentionConfig{
			MaxAgeHours: getEnvAsInt("RETENTION_MAX_AGE_HOURS", 0),
			Schedule:    getEnv("RETENTION_SWEEP_SCHEDULE", "@hourly"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// ShutdownGrace returns the period in-flight requests get to finish.
func (a AppConfig) ShutdownGrace() time.Duration {
	if a.ShutdownGraceSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.ShutdownGraceSeconds) * time.Second
}

// Enabled reports whether the retention sweep should run.
func (r RetentionConfig) Enabled() bool {
	return r.MaxAgeHours > 0
}

// MaxAge returns the retention window as a duration.
func (r RetentionConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
