package sessiongate

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/coursedesk/sessiongate/logger"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "SESSIONGATE_"

// StoreBackend selects the persistence backend built by Builder when no Store is given.
type StoreBackend string

const (
	BackendMemory StoreBackend = "memory"
	BackendFile   StoreBackend = "file"
	BackendRedis  StoreBackend = "redis"
)

// Config is the full manager configuration. Sections map to SESSIONGATE_<SECTION>_<KEY>
// environment variables.
type Config struct {
	Auth    AuthConfig    `envPrefix:"AUTH_"`
	Store   StoreConfig   `envPrefix:"STORE_"`
	Session SessionConfig `envPrefix:"SESSION_"`
	Log     LogConfig     `envPrefix:"LOG_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

// AuthConfig points at the authentication collaborator.
type AuthConfig struct {
	BaseURL    string        `env:"BASE_URL"`
	LoginPath  string        `env:"LOGIN_PATH"`
	Timeout    time.Duration `env:"TIMEOUT"`
	RetryCount int           `env:"RETRY_COUNT"`
	RetryWait  time.Duration `env:"RETRY_WAIT"`
}

// StoreConfig selects and configures the persisted snapshot backend.
type StoreConfig struct {
	Backend       StoreBackend `env:"BACKEND"`
	FilePath      string       `env:"FILE_PATH"`
	RedisAddr     string       `env:"REDIS_ADDR"`
	RedisPassword string       `env:"REDIS_PASSWORD"`
	RedisDB       int          `env:"REDIS_DB"`
	Prefix        string       `env:"PREFIX"`
}

// SessionConfig tunes session transitions.
type SessionConfig struct {
	// RejectExpired collapses restored sessions and refuses logins whose token exp has
	// passed.
	RejectExpired bool          `env:"REJECT_EXPIRED"`
	ExpiryLeeway  time.Duration `env:"EXPIRY_LEEWAY"`
	// LoginTimeout bounds the collaborator call. Zero disables it.
	LoginTimeout    time.Duration `env:"LOGIN_TIMEOUT"`
	NavigateOnLogin bool          `env:"NAVIGATE_ON_LOGIN"`
}

type LogConfig struct {
	Level logger.LogLevel `env:"LEVEL"`
	JSON  bool            `env:"JSON"`
}

type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

// DefaultConfig returns a configuration usable for an in-memory manager.
func DefaultConfig() Config {
	return Config{
		Auth: AuthConfig{
			BaseURL:    "http://127.0.0.1:8081",
			LoginPath:  "/auth/login",
			Timeout:    10 * time.Second,
			RetryCount: 2,
			RetryWait:  200 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend:   BackendMemory,
			FilePath:  defaultSessionFile(),
			RedisAddr: "127.0.0.1:6379",
			Prefix:    "sessiongate",
		},
		Session: SessionConfig{
			RejectExpired:   true,
			ExpiryLeeway:    30 * time.Second,
			LoginTimeout:    30 * time.Second,
			NavigateOnLogin: true,
		},
		Log: LogConfig{
			Level: logger.InfoLevel,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".sessiongate", "session.json")
	}
	return filepath.Join(dir, "sessiongate", "session.json")
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	// Auth
	if c.Auth.BaseURL != "" {
		u, err := url.Parse(c.Auth.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("Auth BaseURL %q is not an absolute URL", c.Auth.BaseURL)
		}
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") {
		return errors.New("Auth LoginPath must start with /")
	}
	if c.Auth.Timeout < 0 {
		return errors.New("Auth Timeout must be >= 0")
	}
	if c.Auth.RetryCount < 0 {
		return errors.New("Auth RetryCount must be >= 0")
	}

	// Store
	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.FilePath == "" {
			return errors.New("Store FilePath required for file backend")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("Store RedisAddr required for redis backend")
		}
		if c.Store.RedisDB < 0 {
			return errors.New("Store RedisDB must be >= 0")
		}
	default:
		return fmt.Errorf("unsupported Store Backend %q", c.Store.Backend)
	}

	// Session
	if c.Session.ExpiryLeeway < 0 {
		return errors.New("Session ExpiryLeeway must be >= 0")
	}
	if c.Session.LoginTimeout < 0 {
		return errors.New("Session LoginTimeout must be >= 0")
	}

	if !c.Log.Level.Valid() {
		return fmt.Errorf("unsupported Log Level %q", c.Log.Level)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics LatencyHistograms requires Metrics Enabled")
	}
	return nil
}

// LoadConfig starts from DefaultConfig, loads the given dotenv files (or ./.env when it
// exists and none are given) and overlays SESSIONGATE_* environment variables.
// Variables already set in the process environment win over dotenv values.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
