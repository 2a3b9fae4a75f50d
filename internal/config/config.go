// Package config reads server settings from an optional YAML file and the
// MEMO_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr        string        `yaml:"listen_addr"`
	DataPath          string        `yaml:"data_path"`
	DBDriver          string        `yaml:"db_driver"`
	DatabaseDSN       string        `yaml:"database_dsn"`
	AuthSecret        string        `yaml:"-"`
	AuthFile          string        `yaml:"auth_file"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	PageSize          int           `yaml:"page_size"`
	Timezone          string        `yaml:"timezone"`
	BusyTimeout       time.Duration `yaml:"busy_timeout"`
	LockTimeout       time.Duration `yaml:"lock_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MetricsEnabled    bool          `yaml:"metrics"`
	BreakerEnabled    bool          `yaml:"breaker"`
	AllowRegistration bool          `yaml:"allow_registration"`
	CORSOrigins       []string      `yaml:"cors_origins"`
	SecureCookies     bool          `yaml:"secure_cookies"`
}

func defaults() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8080",
		DataPath:          ".data",
		DBDriver:          "sqlite",
		SessionTTL:        14 * 24 * time.Hour,
		PageSize:          10,
		Timezone:          "Local",
		BusyTimeout:       5 * time.Second,
		LockTimeout:       2 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MetricsEnabled:    true,
		BreakerEnabled:    true,
		AllowRegistration: true,
	}
}

// Load bootstraps .env, applies MEMO_CONFIG_FILE when set, then the
// environment.
func Load() (Config, error) {
	initEnvFile()
	cfg := defaults()
	if path := os.Getenv("MEMO_CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.ListenAddr = envOr("MEMO_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataPath = envOr("MEMO_DATA_PATH", cfg.DataPath)
	cfg.DBDriver = strings.ToLower(envOr("MEMO_DB_DRIVER", cfg.DBDriver))
	cfg.DatabaseDSN = envOr("MEMO_DATABASE_DSN", cfg.DatabaseDSN)
	cfg.AuthSecret = os.Getenv("MEMO_AUTH_SECRET")
	cfg.AuthFile = envOr("MEMO_AUTH_FILE", cfg.AuthFile)
	cfg.Timezone = envOr("MEMO_TIMEZONE", cfg.Timezone)
	cfg.SessionTTL = parseDurationOr("MEMO_SESSION_TTL", cfg.SessionTTL)
	cfg.BusyTimeout = parseDurationOr("MEMO_SQLITE_BUSY_TIMEOUT", cfg.BusyTimeout)
	cfg.LockTimeout = parseDurationOr("MEMO_SQLITE_LOCK_TIMEOUT", cfg.LockTimeout)
	cfg.ShutdownTimeout = parseDurationOr("MEMO_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.PageSize = parseIntOr("MEMO_PAGE_SIZE", cfg.PageSize)
	cfg.MetricsEnabled = parseBoolOr("MEMO_METRICS", cfg.MetricsEnabled)
	cfg.BreakerEnabled = parseBoolOr("MEMO_BREAKER", cfg.BreakerEnabled)
	cfg.AllowRegistration = parseBoolOr("MEMO_ALLOW_REGISTRATION", cfg.AllowRegistration)
	cfg.SecureCookies = parseBoolOr("MEMO_SECURE_COOKIES", cfg.SecureCookies)
	if v := os.Getenv("MEMO_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	return cfg, cfg.Validate()
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite":
		if c.DataPath == "" {
			errs = append(errs, errors.New("MEMO_DATA_PATH is required for sqlite"))
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("MEMO_DATABASE_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MEMO_DB_DRIVER %q", c.DBDriver))
	}
	if len(c.AuthSecret) < 16 {
		errs = append(errs, errors.New("MEMO_AUTH_SECRET must be at least 16 characters"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("MEMO_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to time.Local.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SQLitePath is the database file inside DataPath.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataPath, "memo.sqlite")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func parseBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
